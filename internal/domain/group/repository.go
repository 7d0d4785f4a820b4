package group

import "context"

// Repository persists groups. CreateAuto must fail with ErrNameTaken when the
// name is already held by a group generated for a different source, which is
// the guard against two organizations collapsing into one remote group after
// name sanitization.
type Repository interface {
	Create(ctx context.Context, g *Group) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Group, error)
	GetByName(ctx context.Context, name string) (*Group, error)
	ListByRule(ctx context.Context, ruleID uint) ([]*Group, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*Group, error)
}

// BindingRepository persists the fixed state-to-group bindings.
type BindingRepository interface {
	Bind(ctx context.Context, stateID, groupID uint) error
	Unbind(ctx context.Context, stateID, groupID uint) error
	ListGroupIDsByState(ctx context.Context, stateID uint) ([]uint, error)
}

// MembershipRepository persists direct (manually assigned) user-group
// memberships.
type MembershipRepository interface {
	AddMember(ctx context.Context, groupID, userID uint) error
	RemoveMember(ctx context.Context, groupID, userID uint) error
	ListGroupIDsByUser(ctx context.Context, userID uint) ([]uint, error)
	ListUserIDsByGroup(ctx context.Context, groupID uint) ([]uint, error)
}

// AutoGroupRuleRepository persists auto-group rules.
type AutoGroupRuleRepository interface {
	Create(ctx context.Context, r *AutoGroupRule) error
	Update(ctx context.Context, r *AutoGroupRule) error
	GetByID(ctx context.Context, id uint) (*AutoGroupRule, error)
	ListAll(ctx context.Context) ([]*AutoGroupRule, error)
}
