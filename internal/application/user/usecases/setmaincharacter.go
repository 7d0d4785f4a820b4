package usecases

import (
	"context"
	"fmt"

	"aegis/internal/domain/character"
	"aegis/internal/domain/shared/events"
	domainUser "aegis/internal/domain/user"
	"aegis/internal/shared/logger"
)

// SetMainCharacterUseCase changes which owned character anchors the user's
// state resolution. Assigning a character the user does not currently own is
// rejected.
type SetMainCharacterUseCase struct {
	profiles   domainUser.ProfileRepository
	ownerships character.OwnershipRepository
	publisher  events.EventPublisher
	logger     logger.Interface
}

func NewSetMainCharacterUseCase(
	profiles domainUser.ProfileRepository,
	ownerships character.OwnershipRepository,
	publisher events.EventPublisher,
	log logger.Interface,
) *SetMainCharacterUseCase {
	return &SetMainCharacterUseCase{
		profiles:   profiles,
		ownerships: ownerships,
		publisher:  publisher,
		logger:     log.Named("set_main_character"),
	}
}

func (uc *SetMainCharacterUseCase) Execute(ctx context.Context, userID uint, characterID int64) error {
	ownership, err := uc.ownerships.GetActiveByCharacterID(ctx, characterID)
	if err != nil {
		return fmt.Errorf("failed to load ownership for character %d: %w", characterID, err)
	}
	if ownership.UserID() != userID {
		return domainUser.ErrNotOwned
	}

	profile, err := uc.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	profile.SetMainCharacter(characterID)
	if err := uc.profiles.Update(ctx, profile); err != nil {
		return fmt.Errorf("failed to persist main character: %w", err)
	}

	if uc.publisher != nil {
		_ = uc.publisher.PublishAll(profile.GetEvents())
	}
	profile.ClearEvents()

	uc.logger.Infow("main character changed", "user_id", userID, "character_id", characterID)
	return nil
}
