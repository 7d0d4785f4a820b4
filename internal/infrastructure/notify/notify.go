// Package notify delivers user-facing notifications about service account
// lifecycle events: provisioned credentials, deprovisioning, escalations.
package notify

import (
	"context"

	"aegis/internal/shared/logger"
)

// Notifier delivers one notification to a user. Implementations must be
// best-effort: a failed delivery is logged by the caller and never aborts
// the action that triggered it.
type Notifier interface {
	Notify(ctx context.Context, userID uint, subject, bodyMarkdown string) error
}

// MultiNotifier fans one notification out to every channel. Individual
// channel failures are logged and swallowed: as long as one channel is
// likely to reach the user the action must proceed.
type MultiNotifier struct {
	channels []Notifier
	logger   logger.Interface
}

func NewMultiNotifier(log logger.Interface, channels ...Notifier) *MultiNotifier {
	return &MultiNotifier{channels: channels, logger: log.Named("notify")}
}

func (m *MultiNotifier) Notify(ctx context.Context, userID uint, subject, bodyMarkdown string) error {
	for _, ch := range m.channels {
		if err := ch.Notify(ctx, userID, subject, bodyMarkdown); err != nil {
			m.logger.Warnw("notification channel failed",
				"user_id", userID,
				"subject", subject,
				"error", err,
			)
		}
	}
	return nil
}
