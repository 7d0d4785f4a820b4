// Package permission defines the authorization contract. A user must hold a
// grant for a service before any account is provisioned there.
package permission

// Enforcer answers authorization questions and manages grants. Subjects are
// user IDs; service access is modelled as a per-user policy on the service
// resource.
type Enforcer interface {
	Enforce(userID uint, resource string, action string) (bool, error)

	CanUseService(userID uint, service string) (bool, error)
	GrantServiceAccess(userID uint, service string) error
	RevokeServiceAccess(userID uint, service string) error

	AddRoleForUser(userID uint, role string) error
	DeleteRoleForUser(userID uint, role string) error
	GetRolesForUser(userID uint) ([]string, error)

	LoadPolicy() error
}
