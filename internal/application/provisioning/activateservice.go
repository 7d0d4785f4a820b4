package provisioning

import (
	"context"
	"errors"
	"fmt"

	"aegis/internal/domain/permission"
	"aegis/internal/domain/sync"
	"aegis/internal/domain/user"
	"aegis/internal/shared/logger"
)

// Scheduler enqueues reconciliation tasks.
type Scheduler interface {
	Schedule(userID uint, service string)
	ScheduleAll(userID uint)
}

var (
	ErrServiceUnknown    = errors.New("service is not configured")
	ErrServiceNotGranted = errors.New("user has no grant for this service")
	ErrUserNotActive     = errors.New("user account is not active")
	ErrAlreadyActivated  = errors.New("service is already activated for this user")
	ErrServiceNotEnabled = errors.New("service is not activated for this user")
)

// ActivateServiceUseCase accepts a user's request for an account on one
// external service. Provisioning itself happens asynchronously; the caller
// immediately gets a pending link back.
type ActivateServiceUseCase struct {
	users     user.Repository
	links     sync.LinkRepository
	registry  sync.Registry
	enforcer  permission.Enforcer
	scheduler Scheduler
	logger    logger.Interface
}

func NewActivateServiceUseCase(
	users user.Repository,
	links sync.LinkRepository,
	registry sync.Registry,
	enforcer permission.Enforcer,
	scheduler Scheduler,
	log logger.Interface,
) *ActivateServiceUseCase {
	return &ActivateServiceUseCase{
		users:     users,
		links:     links,
		registry:  registry,
		enforcer:  enforcer,
		scheduler: scheduler,
		logger:    log.Named("activate_service"),
	}
}

func (uc *ActivateServiceUseCase) Execute(ctx context.Context, userID uint, service string) (*sync.AccountLink, error) {
	if _, ok := uc.registry.Get(service); !ok {
		return nil, ErrServiceUnknown
	}

	account, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !account.IsActive() {
		return nil, ErrUserNotActive
	}

	allowed, err := uc.enforcer.CanUseService(userID, service)
	if err != nil {
		return nil, fmt.Errorf("failed to check service grant: %w", err)
	}
	if !allowed {
		return nil, ErrServiceNotGranted
	}

	existing, err := uc.links.GetByUserAndService(ctx, userID, service)
	if err != nil && !errors.Is(err, sync.ErrLinkNotFound) {
		return nil, fmt.Errorf("failed to look up account link: %w", err)
	}
	if existing != nil {
		return existing, ErrAlreadyActivated
	}

	link, err := sync.NewAccountLink(userID, service)
	if err != nil {
		return nil, err
	}
	if err := uc.links.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create account link: %w", err)
	}

	uc.logger.Infow("service activation accepted", "user_id", userID, "service", service)
	uc.scheduler.Schedule(userID, service)
	return link, nil
}
