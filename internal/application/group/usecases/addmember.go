// Package usecases contains the application operations for manual group
// management. Auto groups are owned by their rules and never managed here.
package usecases

import (
	"context"
	"fmt"

	domainGroup "aegis/internal/domain/group"
	"aegis/internal/domain/shared/events"
	"aegis/internal/shared/logger"
)

// AddMemberUseCase adds a user to a manual group and emits the membership
// event that reschedules their reconciliation.
type AddMemberUseCase struct {
	groups      domainGroup.Repository
	memberships domainGroup.MembershipRepository
	publisher   events.EventPublisher
	logger      logger.Interface
}

func NewAddMemberUseCase(
	groups domainGroup.Repository,
	memberships domainGroup.MembershipRepository,
	publisher events.EventPublisher,
	log logger.Interface,
) *AddMemberUseCase {
	return &AddMemberUseCase{
		groups:      groups,
		memberships: memberships,
		publisher:   publisher,
		logger:      log.Named("add_member"),
	}
}

func (uc *AddMemberUseCase) Execute(ctx context.Context, groupID, userID uint) error {
	g, err := uc.groups.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to load group: %w", err)
	}
	if g.IsAuto() {
		return fmt.Errorf("group %q is rule-managed and cannot take direct members", g.Name())
	}

	if err := uc.memberships.AddMember(ctx, groupID, userID); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	uc.logger.Infow("member added", "group", g.Name(), "user_id", userID)

	if uc.publisher != nil {
		_ = uc.publisher.Publish(domainGroup.NewMembershipChangedEvent(userID, groupID, g.Name(), true))
	}
	return nil
}
