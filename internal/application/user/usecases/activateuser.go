package usecases

import (
	"context"
	"fmt"

	"aegis/internal/domain/shared/events"
	domainUser "aegis/internal/domain/user"
	"aegis/internal/shared/logger"
)

// ActivateUserUseCase moves an account to active status. The recorded
// activation event triggers provisioning of any pending service links.
type ActivateUserUseCase struct {
	users     domainUser.Repository
	publisher events.EventPublisher
	logger    logger.Interface
}

func NewActivateUserUseCase(
	users domainUser.Repository,
	publisher events.EventPublisher,
	log logger.Interface,
) *ActivateUserUseCase {
	return &ActivateUserUseCase{
		users:     users,
		publisher: publisher,
		logger:    log.Named("activate_user"),
	}
}

func (uc *ActivateUserUseCase) Execute(ctx context.Context, userID uint) error {
	account, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := account.Activate(); err != nil {
		return err
	}
	if err := uc.users.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to persist activation: %w", err)
	}

	if uc.publisher != nil {
		_ = uc.publisher.PublishAll(account.GetEvents())
	}
	account.ClearEvents()

	uc.logger.Infow("user activated", "user_id", userID)
	return nil
}
