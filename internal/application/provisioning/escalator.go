package provisioning

import (
	"context"
	"errors"
	"fmt"

	"aegis/internal/domain/sync"
	"aegis/internal/infrastructure/notify"
	"aegis/internal/shared/logger"
)

// LinkEscalator handles (user, service) pairs whose reconciliation failed
// permanently: the local link is deleted so no inconsistent binding survives,
// the user is told their account is gone, and the failure is logged for
// operators. Re-activation later starts from a clean slate.
type LinkEscalator struct {
	links    sync.LinkRepository
	notifier notify.Notifier
	logger   logger.Interface
}

func NewLinkEscalator(links sync.LinkRepository, notifier notify.Notifier, log logger.Interface) *LinkEscalator {
	return &LinkEscalator{
		links:    links,
		notifier: notifier,
		logger:   log.Named("escalation"),
	}
}

func (e *LinkEscalator) Escalate(ctx context.Context, userID uint, service string, cause error) {
	e.logger.Errorw("service account escalated",
		"user_id", userID,
		"service", service,
		"kind", sync.KindOf(cause),
		"error", cause,
	)

	link, err := e.links.GetByUserAndService(ctx, userID, service)
	if err != nil {
		if !errors.Is(err, sync.ErrLinkNotFound) {
			e.logger.Errorw("failed to load link during escalation",
				"user_id", userID, "service", service, "error", err)
		}
		return
	}

	if err := e.links.Delete(ctx, link.ID()); err != nil {
		e.logger.Errorw("failed to delete link during escalation",
			"user_id", userID, "service", service, "error", err)
		return
	}

	if e.notifier != nil {
		subject := fmt.Sprintf("Your %s account link was removed", service)
		body := fmt.Sprintf(
			"Synchronization with **%s** failed repeatedly and the link to your "+
				"account there has been removed. You can request access again at "+
				"any time; if the problem persists, contact an administrator.",
			service)
		if err := e.notifier.Notify(ctx, userID, subject, body); err != nil {
			e.logger.Warnw("failed to notify user about escalation",
				"user_id", userID, "service", service, "error", err)
		}
	}
}
