package provisioning

import (
	"context"
	"errors"
	"fmt"

	"aegis/internal/domain/sync"
	"aegis/internal/infrastructure/notify"
	"aegis/internal/shared/logger"
)

// DeactivateServiceUseCase removes a user's account on one external service
// at their own request. The remote account is disabled synchronously; the
// link only disappears once the remote side confirmed.
type DeactivateServiceUseCase struct {
	links    sync.LinkRepository
	registry sync.Registry
	notifier notify.Notifier
	logger   logger.Interface
}

func NewDeactivateServiceUseCase(
	links sync.LinkRepository,
	registry sync.Registry,
	notifier notify.Notifier,
	log logger.Interface,
) *DeactivateServiceUseCase {
	return &DeactivateServiceUseCase{
		links:    links,
		registry: registry,
		notifier: notifier,
		logger:   log.Named("deactivate_service"),
	}
}

func (uc *DeactivateServiceUseCase) Execute(ctx context.Context, userID uint, service string) error {
	adapter, ok := uc.registry.Get(service)
	if !ok {
		return ErrServiceUnknown
	}

	link, err := uc.links.GetByUserAndService(ctx, userID, service)
	if err != nil {
		if errors.Is(err, sync.ErrLinkNotFound) {
			return ErrServiceNotEnabled
		}
		return fmt.Errorf("failed to load account link: %w", err)
	}

	if link.IsProvisioned() {
		// A remote account that is already gone is fine; anything else must
		// succeed before the link may be removed.
		if err := adapter.DisableAccount(ctx, link.RemoteID()); err != nil && sync.KindOf(err) != sync.KindIdentityMismatch {
			return fmt.Errorf("failed to disable remote account: %w", err)
		}
	}

	if err := uc.links.Delete(ctx, link.ID()); err != nil {
		return fmt.Errorf("failed to delete account link: %w", err)
	}

	uc.logger.Infow("service deactivated", "user_id", userID, "service", service)

	if uc.notifier != nil {
		if err := uc.notifier.Notify(ctx, userID,
			fmt.Sprintf("Your %s account was deactivated", service),
			fmt.Sprintf("Your account on **%s** has been deactivated as requested.", service),
		); err != nil {
			uc.logger.Warnw("failed to notify about deactivation",
				"user_id", userID, "service", service, "error", err)
		}
	}
	return nil
}
