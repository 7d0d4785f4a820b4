package character

import "context"

// Repository persists characters.
type Repository interface {
	Create(ctx context.Context, c *Character) error
	Update(ctx context.Context, c *Character) error
	GetByCharacterID(ctx context.Context, characterID int64) (*Character, error)
	ListByOrganization(ctx context.Context, organizationID int64) ([]*Character, error)
}

// OwnershipRepository persists the character-ownership history. History rows
// are never deleted; transfers supersede the previous row.
type OwnershipRepository interface {
	Create(ctx context.Context, o *Ownership) error
	Update(ctx context.Context, o *Ownership) error
	GetActiveByCharacterID(ctx context.Context, characterID int64) (*Ownership, error)
	ListActiveByUserID(ctx context.Context, userID uint) ([]*Ownership, error)
	ListHistoryByCharacterID(ctx context.Context, characterID int64) ([]*Ownership, error)
}

// OrganizationRepository persists organization reference data.
type OrganizationRepository interface {
	Upsert(ctx context.Context, o *Organization) error
	GetByOrganizationID(ctx context.Context, organizationID int64) (*Organization, error)
}

// AllianceRepository persists alliance reference data.
type AllianceRepository interface {
	Upsert(ctx context.Context, a *Alliance) error
	GetByAllianceID(ctx context.Context, allianceID int64) (*Alliance, error)
}
