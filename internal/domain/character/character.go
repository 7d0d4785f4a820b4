// Package character holds the game-world identity reference data: characters,
// the organizations and alliances they belong to, and the ownership relation
// that ties a character to a local user account.
package character

import (
	"fmt"
	"strings"
	"time"

	"aegis/internal/domain/shared/events"
)

// Character represents a game-world persona. The external character ID is
// stable and globally unique; affiliation fields are refreshed from the
// affiliation provider and never mutated by the reconciliation engine.
// A character with no current ownership remains a valid read-only record.
type Character struct {
	id             uint
	characterID    int64
	name           string
	organizationID int64
	allianceID     int64 // zero when the organization has no parent alliance
	updatedAt      time.Time
	domainEvents   []events.DomainEvent
}

// NewCharacter creates a character record from provider data.
func NewCharacter(characterID int64, name string, organizationID, allianceID int64) (*Character, error) {
	if characterID == 0 {
		return nil, fmt.Errorf("character ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("character name is required")
	}

	return &Character{
		characterID:    characterID,
		name:           name,
		organizationID: organizationID,
		allianceID:     allianceID,
		updatedAt:      time.Now().UTC(),
		domainEvents:   []events.DomainEvent{},
	}, nil
}

// ReconstructCharacter rebuilds a character from persistence.
func ReconstructCharacter(id uint, characterID int64, name string, organizationID, allianceID int64, updatedAt time.Time) (*Character, error) {
	if id == 0 {
		return nil, fmt.Errorf("character record ID cannot be zero")
	}
	if characterID == 0 {
		return nil, fmt.Errorf("character ID is required")
	}

	return &Character{
		id:             id,
		characterID:    characterID,
		name:           name,
		organizationID: organizationID,
		allianceID:     allianceID,
		updatedAt:      updatedAt,
		domainEvents:   []events.DomainEvent{},
	}, nil
}

func (c *Character) ID() uint              { return c.id }
func (c *Character) CharacterID() int64    { return c.characterID }
func (c *Character) Name() string          { return c.name }
func (c *Character) OrganizationID() int64 { return c.organizationID }
func (c *Character) AllianceID() int64     { return c.allianceID }
func (c *Character) UpdatedAt() time.Time  { return c.updatedAt }

// SetID sets the record ID after insert (persistence layer use only).
func (c *Character) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("character ID already set")
	}
	c.id = id
	return nil
}

// UpdateAffiliation applies a refreshed affiliation snapshot. An event is
// recorded only when the organization or alliance actually changed.
func (c *Character) UpdateAffiliation(organizationID, allianceID int64) {
	if c.organizationID == organizationID && c.allianceID == allianceID {
		return
	}

	old := c.organizationID
	c.organizationID = organizationID
	c.allianceID = allianceID
	c.updatedAt = time.Now().UTC()

	c.recordEvent(NewAffiliationChangedEvent(c.characterID, old, organizationID, allianceID))
}

// Rename applies a provider-side display name change.
func (c *Character) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("character name is required")
	}
	c.name = name
	c.updatedAt = time.Now().UTC()
	return nil
}

func (c *Character) recordEvent(event events.DomainEvent) {
	c.domainEvents = append(c.domainEvents, event)
}

// GetEvents returns the recorded domain events.
func (c *Character) GetEvents() []events.DomainEvent {
	return c.domainEvents
}

// ClearEvents clears recorded events after they have been published.
func (c *Character) ClearEvents() {
	c.domainEvents = []events.DomainEvent{}
}

// Affiliation is the snapshot the state resolver consumes. CharacterID is nil
// when a user has no main character; OrganizationID is zero when the
// character's organization record is unknown locally.
type Affiliation struct {
	CharacterID    *int64
	OrganizationID int64
	AllianceID     int64
}
