package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// LinkStatus is the lifecycle status of a service account link.
type LinkStatus string

const (
	// LinkStatusPending is set when activation has been accepted but the
	// remote account has not been provisioned yet.
	LinkStatusPending LinkStatus = "pending"
	LinkStatusActive  LinkStatus = "active"
)

// AccountLink ties a local user to a remote account on one external service.
// Created on provisioning, updated on every successful reconciliation and
// deleted on deprovisioning or unrecoverable remote failure, so a dangling
// inconsistent link is never left behind.
type AccountLink struct {
	id           uint
	userID       uint
	service      string
	remoteID     string
	remoteName   string
	status       LinkStatus
	failCount    int
	createdAt    time.Time
	lastSyncedAt *time.Time
}

func NewAccountLink(userID uint, service string) (*AccountLink, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if strings.TrimSpace(service) == "" {
		return nil, fmt.Errorf("service name is required")
	}

	return &AccountLink{
		userID:    userID,
		service:   service,
		status:    LinkStatusPending,
		createdAt: time.Now().UTC(),
	}, nil
}

func ReconstructAccountLink(id, userID uint, service, remoteID, remoteName string, status LinkStatus, failCount int, createdAt time.Time, lastSyncedAt *time.Time) (*AccountLink, error) {
	if id == 0 {
		return nil, fmt.Errorf("link ID cannot be zero")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}

	return &AccountLink{
		id:           id,
		userID:       userID,
		service:      service,
		remoteID:     remoteID,
		remoteName:   remoteName,
		status:       status,
		failCount:    failCount,
		createdAt:    createdAt,
		lastSyncedAt: lastSyncedAt,
	}, nil
}

func (l *AccountLink) ID() uint                 { return l.id }
func (l *AccountLink) UserID() uint             { return l.userID }
func (l *AccountLink) Service() string          { return l.service }
func (l *AccountLink) RemoteID() string         { return l.remoteID }
func (l *AccountLink) RemoteName() string       { return l.remoteName }
func (l *AccountLink) Status() LinkStatus       { return l.status }
func (l *AccountLink) FailCount() int           { return l.failCount }
func (l *AccountLink) CreatedAt() time.Time     { return l.createdAt }
func (l *AccountLink) LastSyncedAt() *time.Time { return l.lastSyncedAt }

// IsProvisioned reports whether a remote account exists for this link.
func (l *AccountLink) IsProvisioned() bool {
	return l.status == LinkStatusActive && l.remoteID != ""
}

// SetID sets the link ID after insert (persistence layer use only).
func (l *AccountLink) SetID(id uint) error {
	if l.id != 0 {
		return fmt.Errorf("link ID already set")
	}
	l.id = id
	return nil
}

// Provisioned records the remote account created by the adapter.
func (l *AccountLink) Provisioned(remoteID, remoteName string) error {
	if remoteID == "" {
		return fmt.Errorf("remote ID is required")
	}
	l.remoteID = remoteID
	l.remoteName = remoteName
	l.status = LinkStatusActive
	return nil
}

// MarkSynced records a successful reconciliation and clears the failure
// streak.
func (l *AccountLink) MarkSynced() {
	now := time.Now().UTC()
	l.lastSyncedAt = &now
	l.failCount = 0
}

// RecordFailure increments and returns the consecutive failure count.
func (l *AccountLink) RecordFailure() int {
	l.failCount++
	return l.failCount
}

// LinkRepository persists service account links.
type LinkRepository interface {
	Create(ctx context.Context, l *AccountLink) error
	Update(ctx context.Context, l *AccountLink) error
	Delete(ctx context.Context, id uint) error
	GetByUserAndService(ctx context.Context, userID uint, service string) (*AccountLink, error)
	ListByUser(ctx context.Context, userID uint) ([]*AccountLink, error)
	ListByService(ctx context.Context, service string) ([]*AccountLink, error)
}

// ErrLinkNotFound is returned when no link exists for a (user, service) key.
var ErrLinkNotFound = errors.New("service account link not found")
