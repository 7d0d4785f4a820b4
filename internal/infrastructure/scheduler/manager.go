// Package scheduler manages periodic jobs using gocron v2.
package scheduler

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"aegis/internal/shared/logger"
)

// BatchJob is a scheduled batch task. Execute processes one batch and
// returns the number of items handled.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// Manager owns the single gocron scheduler instance for the worker binary.
type Manager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu stdsync.RWMutex
}

func NewManager(log logger.Interface) (*Manager, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	return &Manager{scheduler: scheduler, logger: log.Named("scheduler")}, nil
}

// RegisterSweep registers the periodic full reconciliation sweep. Singleton
// mode keeps a slow sweep from stacking on top of itself.
func (m *Manager) RegisterSweep(interval time.Duration, job BatchJob) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()

			start := time.Now()
			count, err := job.Execute(ctx)
			if err != nil {
				m.logger.Errorw("sync sweep failed", "error", err, "duration", time.Since(start))
				return
			}
			m.logger.Infow("sync sweep finished", "users", count, "duration", time.Since(start))
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("sync-sweep"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered sync sweep", "interval", interval)
	return nil
}

// RegisterAffiliationRefresh registers the periodic refresh of character
// affiliations from the provider.
func (m *Manager) RegisterAffiliationRefresh(interval time.Duration, job BatchJob) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()

			start := time.Now()
			count, err := job.Execute(ctx)
			if err != nil {
				m.logger.Errorw("affiliation refresh failed", "error", err, "duration", time.Since(start))
				return
			}
			m.logger.Infow("affiliation refresh finished", "characters", count, "duration", time.Since(start))
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("affiliation-refresh"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered affiliation refresh", "interval", interval)
	return nil
}

// Start begins executing registered jobs.
func (m *Manager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()
	if m.started {
		return
	}
	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started")
}

// Stop shuts the scheduler down and waits for running jobs.
func (m *Manager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()
	if !m.started {
		return nil
	}
	if err := m.scheduler.Shutdown(); err != nil {
		return err
	}
	m.started = false
	m.logger.Infow("scheduler stopped")
	return nil
}
