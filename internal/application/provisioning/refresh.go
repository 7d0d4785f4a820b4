package provisioning

import (
	"context"
	"fmt"

	"aegis/internal/domain/character"
	"aegis/internal/domain/user"
	"aegis/internal/shared/constants"
	"aegis/internal/shared/logger"
)

// sweepPageSize bounds each page of the user listing; the repository clamps
// page sizes to constants.MaxPageSize, so use that bound directly.
const sweepPageSize = constants.MaxPageSize

// CharacterRefresher pulls a character's current affiliation from the
// external provider and persists it locally.
type CharacterRefresher interface {
	RefreshCharacter(ctx context.Context, characterID int64) (*character.Character, error)
}

// AffiliationRefresh periodically refreshes the affiliation of every
// character owned by an active user. Downstream state changes are picked up
// through the events the refresher publishes.
type AffiliationRefresh struct {
	users      user.Repository
	ownerships character.OwnershipRepository
	refresher  CharacterRefresher
	logger     logger.Interface
}

func NewAffiliationRefresh(
	users user.Repository,
	ownerships character.OwnershipRepository,
	refresher CharacterRefresher,
	log logger.Interface,
) *AffiliationRefresh {
	return &AffiliationRefresh{
		users:      users,
		ownerships: ownerships,
		refresher:  refresher,
		logger:     log.Named("affiliation_refresh"),
	}
}

// Execute refreshes characters user by user. Per-character failures are
// logged and skipped so one broken character cannot stall the whole batch.
func (r *AffiliationRefresh) Execute(ctx context.Context) (int, error) {
	refreshed := 0
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}

		users, _, err := r.users.List(ctx, user.ListFilter{
			Page:     page,
			PageSize: sweepPageSize,
			Status:   user.StatusActive.String(),
		})
		if err != nil {
			return refreshed, fmt.Errorf("failed to list users for refresh: %w", err)
		}
		if len(users) == 0 {
			break
		}

		for _, u := range users {
			owned, err := r.ownerships.ListActiveByUserID(ctx, u.ID())
			if err != nil {
				r.logger.Warnw("failed to list owned characters", "user_id", u.ID(), "error", err)
				continue
			}
			for _, o := range owned {
				if _, err := r.refresher.RefreshCharacter(ctx, o.CharacterID()); err != nil {
					r.logger.Warnw("character refresh failed",
						"character_id", o.CharacterID(), "error", err)
					continue
				}
				refreshed++
			}
		}
	}
	return refreshed, nil
}
