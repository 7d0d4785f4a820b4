package provisioning

import (
	"context"
	"fmt"

	"aegis/internal/domain/permission"
	"aegis/internal/shared/logger"
)

// GrantServiceUseCase gives a user access to one configured service. Granting
// does not provision anything; the user still has to activate the service.
type GrantServiceUseCase struct {
	enforcer permission.Enforcer
	logger   logger.Interface
}

func NewGrantServiceUseCase(enforcer permission.Enforcer, log logger.Interface) *GrantServiceUseCase {
	return &GrantServiceUseCase{enforcer: enforcer, logger: log.Named("grant_service")}
}

func (uc *GrantServiceUseCase) Execute(ctx context.Context, userID uint, service string) error {
	if err := uc.enforcer.GrantServiceAccess(userID, service); err != nil {
		return fmt.Errorf("failed to grant service access: %w", err)
	}
	uc.logger.Infow("service access granted", "user_id", userID, "service", service)
	return nil
}

// RevokeServiceUseCase withdraws a user's service grant and schedules the
// reconciliation pass that strips their remote account.
type RevokeServiceUseCase struct {
	enforcer  permission.Enforcer
	scheduler Scheduler
	logger    logger.Interface
}

func NewRevokeServiceUseCase(enforcer permission.Enforcer, scheduler Scheduler, log logger.Interface) *RevokeServiceUseCase {
	return &RevokeServiceUseCase{
		enforcer:  enforcer,
		scheduler: scheduler,
		logger:    log.Named("revoke_service"),
	}
}

func (uc *RevokeServiceUseCase) Execute(ctx context.Context, userID uint, service string) error {
	if err := uc.enforcer.RevokeServiceAccess(userID, service); err != nil {
		return fmt.Errorf("failed to revoke service access: %w", err)
	}
	uc.logger.Infow("service access revoked", "user_id", userID, "service", service)
	uc.scheduler.Schedule(userID, service)
	return nil
}
