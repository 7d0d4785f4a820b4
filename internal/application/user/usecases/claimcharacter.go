package usecases

import (
	"context"
	"errors"
	"fmt"

	"aegis/internal/domain/character"
	"aegis/internal/domain/shared/events"
	domainUser "aegis/internal/domain/user"
	"aegis/internal/shared/logger"
)

// ClaimCharacterUseCase records a user as owner of a character after they
// presented proof of control. The first claimed character automatically
// becomes the user's main character. When the claim transfers the character
// away from another user, that user's profile drops it as main so their state
// never resolves from a character they no longer own.
type ClaimCharacterUseCase struct {
	claims     *character.ClaimService
	profiles   domainUser.ProfileRepository
	ownerships character.OwnershipRepository
	publisher  events.EventPublisher
	logger     logger.Interface
}

func NewClaimCharacterUseCase(
	claims *character.ClaimService,
	profiles domainUser.ProfileRepository,
	ownerships character.OwnershipRepository,
	publisher events.EventPublisher,
	log logger.Interface,
) *ClaimCharacterUseCase {
	return &ClaimCharacterUseCase{
		claims:     claims,
		profiles:   profiles,
		ownerships: ownerships,
		publisher:  publisher,
		logger:     log.Named("claim_character"),
	}
}

func (uc *ClaimCharacterUseCase) Execute(ctx context.Context, userID uint, characterID int64, proof character.OwnershipProof) (*character.Ownership, error) {
	previous, err := uc.ownerships.GetActiveByCharacterID(ctx, characterID)
	if err != nil && !errors.Is(err, character.ErrOwnershipNotFound) {
		return nil, fmt.Errorf("failed to load current ownership: %w", err)
	}

	ownership, err := uc.claims.Claim(ctx, characterID, userID, proof)
	if err != nil {
		if errors.Is(err, character.ErrWeakerProof) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to claim character %d: %w", characterID, err)
	}

	uc.logger.Infow("character claimed",
		"user_id", userID,
		"character_id", characterID,
		"proof", proof,
	)

	if previous != nil && previous.UserID() != userID {
		if err := uc.clearFormerOwnerMain(ctx, previous.UserID(), characterID); err != nil {
			return nil, err
		}
	}

	profile, err := uc.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.MainCharacterID() == nil {
		profile.SetMainCharacter(characterID)
		if err := uc.profiles.Update(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to set main character: %w", err)
		}
		if uc.publisher != nil {
			_ = uc.publisher.PublishAll(profile.GetEvents())
		}
		profile.ClearEvents()
	}

	return ownership, nil
}

// clearFormerOwnerMain drops the transferred character from the previous
// owner's profile if it was their main.
func (uc *ClaimCharacterUseCase) clearFormerOwnerMain(ctx context.Context, previousOwnerID uint, characterID int64) error {
	profile, err := uc.profiles.GetByUserID(ctx, previousOwnerID)
	if err != nil {
		if errors.Is(err, domainUser.ErrProfileNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load previous owner's profile: %w", err)
	}
	if profile.MainCharacterID() == nil || *profile.MainCharacterID() != characterID {
		return nil
	}

	profile.ClearMainCharacter()
	if err := uc.profiles.Update(ctx, profile); err != nil {
		return fmt.Errorf("failed to clear previous owner's main character: %w", err)
	}
	if uc.publisher != nil {
		_ = uc.publisher.PublishAll(profile.GetEvents())
	}
	profile.ClearEvents()

	uc.logger.Infow("main character cleared after ownership transfer",
		"user_id", previousOwnerID,
		"character_id", characterID,
	)
	return nil
}
