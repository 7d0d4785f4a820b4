// Package user contains the user aggregate and the profile that anchors a
// user's chosen main character.
package user

import (
	"fmt"
	"strings"
	"time"

	"aegis/internal/domain/shared/events"
)

// Status is the user account lifecycle status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusDisabled:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// User is the identity anchor. Service account links and the profile are
// owned exclusively by the user and removed with it.
type User struct {
	id           uint
	email        string
	name         string
	status       Status
	createdAt    time.Time
	updatedAt    time.Time
	version      int
	domainEvents []events.DomainEvent
}

// NewUser creates a user in pending status.
func NewUser(email, name string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("valid email is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name is required")
	}

	now := time.Now().UTC()
	return &User{
		email:        email,
		name:         name,
		status:       StatusPending,
		createdAt:    now,
		updatedAt:    now,
		version:      1,
		domainEvents: []events.DomainEvent{},
	}, nil
}

// ReconstructUser rebuilds a user from persistence.
func ReconstructUser(id uint, email, name string, status Status, createdAt, updatedAt time.Time, version int) (*User, error) {
	if id == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid user status: %s", status)
	}

	return &User{
		id:           id,
		email:        email,
		name:         name,
		status:       status,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		version:      version,
		domainEvents: []events.DomainEvent{},
	}, nil
}

func (u *User) ID() uint             { return u.id }
func (u *User) Email() string        { return u.email }
func (u *User) Name() string         { return u.name }
func (u *User) Status() Status       { return u.status }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
func (u *User) Version() int         { return u.version }

// IsActive reports whether the account may hold service accounts.
func (u *User) IsActive() bool { return u.status == StatusActive }

// SetID sets the user ID after insert (persistence layer use only).
func (u *User) SetID(id uint) error {
	if u.id != 0 {
		return fmt.Errorf("user ID already set")
	}
	u.id = id
	return nil
}

// Activate moves the account to active status.
func (u *User) Activate() error {
	if u.status == StatusActive {
		return nil
	}
	old := u.status
	u.status = StatusActive
	u.touch()
	u.recordEvent(NewUserActivatedEvent(u.id, old.String()))
	return nil
}

// Deactivate disables the account. Every linked service account must be
// deprovisioned in response to the recorded event.
func (u *User) Deactivate() error {
	if u.status == StatusDisabled {
		return nil
	}
	old := u.status
	u.status = StatusDisabled
	u.touch()
	u.recordEvent(NewUserDeactivatedEvent(u.id, old.String()))
	return nil
}

func (u *User) touch() {
	u.updatedAt = time.Now().UTC()
	u.version++
}

func (u *User) recordEvent(event events.DomainEvent) {
	u.domainEvents = append(u.domainEvents, event)
}

func (u *User) GetEvents() []events.DomainEvent { return u.domainEvents }

func (u *User) ClearEvents() { u.domainEvents = []events.DomainEvent{} }
