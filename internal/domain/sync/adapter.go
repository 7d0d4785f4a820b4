// Package sync contains the service-agnostic reconciliation core: the
// adapter capability contract every external community service implements,
// the generic desired-versus-remote diff engine, and the persisted link
// between a local user and their remote account.
package sync

import "context"

// AccountProfile is what an adapter needs to provision a remote account.
type AccountProfile struct {
	UserID   uint
	Username string
	Email    string
}

// Credentials are returned by adapters that generate a password on account
// creation; nil when the remote service handles authentication itself.
type Credentials struct {
	Username string
	Password string
}

// Adapter is the boundary interface to one external identity/community
// service. Every call may fail with a transient or permanent error kind (see
// errors.go); implementations tag their errors so the dispatcher can decide
// between retry and escalation.
type Adapter interface {
	// Name identifies the service ("chat", "forum", ...). Must be stable:
	// it keys ServiceAccountLinks and the dispatcher's in-flight map.
	Name() string

	CreateAccount(ctx context.Context, profile AccountProfile) (remoteID string, creds *Credentials, err error)
	DisableAccount(ctx context.Context, remoteID string) error

	// FetchGroups returns the remote group/role identifiers currently held
	// by the account.
	FetchGroups(ctx context.Context, remoteID string) ([]string, error)

	// EnsureGroup creates the group on the remote service if it does not
	// exist yet. Called by the engine before the first AddToGroup.
	EnsureGroup(ctx context.Context, name string) error

	AddToGroup(ctx context.Context, remoteID, name string) error
	RemoveFromGroup(ctx context.Context, remoteID, name string) error

	// SanitizeGroupName maps an internal group name into the service's
	// accepted character set. The engine compares sanitized names on both
	// sides, so a lossy mapping here must be stable.
	SanitizeGroupName(name string) string
}

// Registry is the explicit set of configured service adapters, constructed at
// startup and passed by reference; there is no ambient global registration.
type Registry interface {
	Get(service string) (Adapter, bool)
	Names() []string
}
