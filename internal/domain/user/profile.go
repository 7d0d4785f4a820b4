package user

import (
	"fmt"
	"time"

	"aegis/internal/domain/shared/events"
)

// Profile holds a user's chosen main character. MainCharacterID is nil while
// the user owns no characters. The invariant that the main character is
// currently owned by this user is enforced at assignment time by the caller
// checking the ownership relation before calling SetMainCharacter.
type Profile struct {
	id              uint
	userID          uint
	mainCharacterID *int64
	updatedAt       time.Time
	domainEvents    []events.DomainEvent
}

func NewProfile(userID uint) (*Profile, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	return &Profile{
		userID:       userID,
		updatedAt:    time.Now().UTC(),
		domainEvents: []events.DomainEvent{},
	}, nil
}

func ReconstructProfile(id, userID uint, mainCharacterID *int64, updatedAt time.Time) (*Profile, error) {
	if id == 0 {
		return nil, fmt.Errorf("profile ID cannot be zero")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	return &Profile{
		id:              id,
		userID:          userID,
		mainCharacterID: mainCharacterID,
		updatedAt:       updatedAt,
		domainEvents:    []events.DomainEvent{},
	}, nil
}

func (p *Profile) ID() uint                { return p.id }
func (p *Profile) UserID() uint            { return p.userID }
func (p *Profile) MainCharacterID() *int64 { return p.mainCharacterID }
func (p *Profile) UpdatedAt() time.Time    { return p.updatedAt }

// SetID sets the profile ID after insert (persistence layer use only).
func (p *Profile) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("profile ID already set")
	}
	p.id = id
	return nil
}

// SetMainCharacter changes the main character and records the event driving
// state re-resolution. Passing the current main character is a no-op.
func (p *Profile) SetMainCharacter(characterID int64) {
	if p.mainCharacterID != nil && *p.mainCharacterID == characterID {
		return
	}
	var old *int64
	if p.mainCharacterID != nil {
		v := *p.mainCharacterID
		old = &v
	}
	p.mainCharacterID = &characterID
	p.updatedAt = time.Now().UTC()
	p.recordEvent(NewMainCharacterChangedEvent(p.userID, old, characterID))
}

// ClearMainCharacter removes the main character, e.g. after an ownership
// transfer away from this user.
func (p *Profile) ClearMainCharacter() {
	if p.mainCharacterID == nil {
		return
	}
	old := *p.mainCharacterID
	p.mainCharacterID = nil
	p.updatedAt = time.Now().UTC()
	p.recordEvent(NewMainCharacterChangedEvent(p.userID, &old, 0))
}

func (p *Profile) recordEvent(event events.DomainEvent) {
	p.domainEvents = append(p.domainEvents, event)
}

func (p *Profile) GetEvents() []events.DomainEvent { return p.domainEvents }

func (p *Profile) ClearEvents() { p.domainEvents = []events.DomainEvent{} }
