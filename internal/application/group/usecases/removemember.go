package usecases

import (
	"context"
	"fmt"

	domainGroup "aegis/internal/domain/group"
	"aegis/internal/domain/shared/events"
	"aegis/internal/shared/logger"
)

// RemoveMemberUseCase removes a user from a manual group.
type RemoveMemberUseCase struct {
	groups      domainGroup.Repository
	memberships domainGroup.MembershipRepository
	publisher   events.EventPublisher
	logger      logger.Interface
}

func NewRemoveMemberUseCase(
	groups domainGroup.Repository,
	memberships domainGroup.MembershipRepository,
	publisher events.EventPublisher,
	log logger.Interface,
) *RemoveMemberUseCase {
	return &RemoveMemberUseCase{
		groups:      groups,
		memberships: memberships,
		publisher:   publisher,
		logger:      log.Named("remove_member"),
	}
}

func (uc *RemoveMemberUseCase) Execute(ctx context.Context, groupID, userID uint) error {
	g, err := uc.groups.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to load group: %w", err)
	}

	if err := uc.memberships.RemoveMember(ctx, groupID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	uc.logger.Infow("member removed", "group", g.Name(), "user_id", userID)

	if uc.publisher != nil {
		_ = uc.publisher.Publish(domainGroup.NewMembershipChangedEvent(userID, groupID, g.Name(), false))
	}
	return nil
}
