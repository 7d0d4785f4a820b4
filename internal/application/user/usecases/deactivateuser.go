package usecases

import (
	"context"
	"fmt"

	"aegis/internal/domain/shared/events"
	domainUser "aegis/internal/domain/user"
	"aegis/internal/shared/logger"
)

// DeactivateUserUseCase disables an account. The recorded event drives
// deprovisioning of every linked service account.
type DeactivateUserUseCase struct {
	users     domainUser.Repository
	publisher events.EventPublisher
	logger    logger.Interface
}

func NewDeactivateUserUseCase(
	users domainUser.Repository,
	publisher events.EventPublisher,
	log logger.Interface,
) *DeactivateUserUseCase {
	return &DeactivateUserUseCase{
		users:     users,
		publisher: publisher,
		logger:    log.Named("deactivate_user"),
	}
}

func (uc *DeactivateUserUseCase) Execute(ctx context.Context, userID uint) error {
	account, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := account.Deactivate(); err != nil {
		return err
	}
	if err := uc.users.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to persist deactivation: %w", err)
	}

	if uc.publisher != nil {
		_ = uc.publisher.PublishAll(account.GetEvents())
	}
	account.ClearEvents()

	uc.logger.Infow("user deactivated", "user_id", userID)
	return nil
}
