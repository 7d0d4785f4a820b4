package character

import (
	"context"
	"errors"
	"fmt"

	"aegis/internal/domain/shared/events"
)

// ClaimService transfers character ownership when a user presents proof of
// control. A stronger (or equally strong) proof supersedes the current owner;
// a weaker one is rejected.
type ClaimService struct {
	ownerships OwnershipRepository
	publisher  events.EventPublisher
}

func NewClaimService(ownerships OwnershipRepository, publisher events.EventPublisher) *ClaimService {
	return &ClaimService{ownerships: ownerships, publisher: publisher}
}

// Claim records userID as the owner of characterID. Returns the new active
// ownership row. Re-claiming a character the user already owns is a no-op.
func (s *ClaimService) Claim(ctx context.Context, characterID int64, userID uint, proof OwnershipProof) (*Ownership, error) {
	current, err := s.ownerships.GetActiveByCharacterID(ctx, characterID)
	if err != nil && !errors.Is(err, ErrOwnershipNotFound) {
		return nil, fmt.Errorf("failed to load current ownership: %w", err)
	}

	if current != nil {
		if current.UserID() == userID {
			return current, nil
		}
		if !current.CanBeSupersededBy(proof) {
			return nil, ErrWeakerProof
		}
		if err := current.Supersede(); err != nil {
			return nil, err
		}
		if err := s.ownerships.Update(ctx, current); err != nil {
			return nil, fmt.Errorf("failed to supersede ownership: %w", err)
		}
	}

	next, err := NewOwnership(characterID, userID, proof)
	if err != nil {
		return nil, err
	}
	if err := s.ownerships.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to create ownership: %w", err)
	}

	if current != nil && s.publisher != nil {
		_ = s.publisher.Publish(NewOwnershipTransferredEvent(characterID, current.UserID(), userID))
	}

	return next, nil
}
