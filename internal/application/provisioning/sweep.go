package provisioning

import (
	"context"
	"fmt"

	"aegis/internal/domain/group"
	"aegis/internal/domain/sync"
	"aegis/internal/shared/logger"
)

// ResyncSweep is the periodic safety net: it walks every service account link
// and schedules a reconciliation pass for each, so drift caused by missed
// events or direct remote edits gets corrected within one sweep interval.
// Enumerating links rather than users also covers a disabled user whose
// deactivation event was lost; their dangling link still gets a pass, and the
// pass strips it.
type ResyncSweep struct {
	links      sync.LinkRepository
	registry   sync.Registry
	calculator *group.Calculator
	scheduler  Scheduler
	logger     logger.Interface
}

func NewResyncSweep(
	links sync.LinkRepository,
	registry sync.Registry,
	calculator *group.Calculator,
	scheduler Scheduler,
	log logger.Interface,
) *ResyncSweep {
	return &ResyncSweep{
		links:      links,
		registry:   registry,
		calculator: calculator,
		scheduler:  scheduler,
		logger:     log.Named("sweep"),
	}
}

// Execute tears down group records orphaned by disabled auto group rules,
// then schedules a reconciliation for every link on every configured service.
// Returns the number of tasks scheduled.
func (s *ResyncSweep) Execute(ctx context.Context) (int, error) {
	if removed, err := s.calculator.CleanupOrphanedGroups(ctx); err != nil {
		s.logger.Warnw("orphaned group cleanup failed", "error", err)
	} else if removed > 0 {
		s.logger.Infow("orphaned auto groups removed", "count", removed)
	}

	total := 0
	for _, service := range s.registry.Names() {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		count, err := s.ExecuteService(ctx, service)
		if err != nil {
			return total, err
		}
		total += count
	}

	s.logger.Debugw("sweep scheduled", "tasks", total)
	return total, nil
}

// ExecuteService schedules a reconciliation for every existing link on one
// service.
func (s *ResyncSweep) ExecuteService(ctx context.Context, service string) (int, error) {
	if _, ok := s.registry.Get(service); !ok {
		return 0, ErrServiceUnknown
	}

	links, err := s.links.ListByService(ctx, service)
	if err != nil {
		return 0, fmt.Errorf("failed to list links for %s: %w", service, err)
	}
	for _, link := range links {
		s.scheduler.Schedule(link.UserID(), service)
	}
	return len(links), nil
}
