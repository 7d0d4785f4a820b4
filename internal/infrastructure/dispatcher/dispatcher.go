// Package dispatcher runs reconciliation tasks asynchronously: a worker pool
// keyed by (user, service) with coalescing, bounded fixed-backoff retries and
// an escalation path for permanently failing service accounts.
package dispatcher

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/redis/go-redis/v9"

	"aegis/internal/domain/sync"
	"aegis/internal/shared/config"
	"aegis/internal/shared/goroutine"
	"aegis/internal/shared/logger"
)

const (
	redisGuardPrefix  = "sync:inflight:"
	redisGuardTTL     = 5 * time.Minute
	defaultQueueDepth = 4096
)

// Runner executes one reconciliation pass for a (user, service) pair. The
// application layer provides the implementation.
type Runner interface {
	SyncUser(ctx context.Context, userID uint, service string) error
}

// Escalator handles a (user, service) pair whose task exhausted its retries
// or failed unrecoverably.
type Escalator interface {
	Escalate(ctx context.Context, userID uint, service string, cause error)
}

type taskKey struct {
	userID  uint
	service string
}

// taskState tracks a key through the queue. A key is either idle (absent
// from the map), queued, running, or waiting on a retry timer. Rerun is the
// coalescing flag: a Schedule call against a busy key records that one more
// pass is owed once the current one finishes.
type taskState struct {
	queued   bool
	running  bool
	rerun    bool
	attempts int
	retry    *time.Timer
}

// Dispatcher owns the worker pool. At most one task per (user, service) key
// is in flight at any moment; scheduling an already busy key coalesces into
// a single follow-up run.
type Dispatcher struct {
	runner    Runner
	escalator Escalator
	registry  sync.Registry
	redis     *redis.Client
	logger    logger.Interface

	workers     int
	backoff     time.Duration
	maxAttempts int
	callTimeout time.Duration

	mu     stdsync.Mutex
	states map[taskKey]*taskState

	queue  chan taskKey
	stopCh chan struct{}
	wg     stdsync.WaitGroup
}

func New(
	runner Runner,
	escalator Escalator,
	registry sync.Registry,
	redisClient *redis.Client,
	cfg *config.SyncConfig,
	log logger.Interface,
) *Dispatcher {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Dispatcher{
		runner:      runner,
		escalator:   escalator,
		registry:    registry,
		redis:       redisClient,
		logger:      log.Named("dispatcher"),
		workers:     workers,
		backoff:     time.Duration(cfg.RetryBackoffMins) * time.Minute,
		maxAttempts: maxAttempts,
		callTimeout: time.Duration(cfg.CallTimeoutSecs) * time.Second,
		states:      make(map[taskKey]*taskState),
		queue:       make(chan taskKey, defaultQueueDepth),
		stopCh:      make(chan struct{}),
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		goroutine.SafeGo(d.logger, "dispatcher-worker", func() {
			defer d.wg.Done()
			d.workLoop()
		})
	}
	d.logger.Infow("dispatcher started", "workers", d.workers, "max_attempts", d.maxAttempts, "backoff", d.backoff)
}

// Stop drains the pool. Pending retry timers are cancelled; their keys will
// be picked up again by the next periodic sweep.
func (d *Dispatcher) Stop() {
	close(d.stopCh)

	d.mu.Lock()
	for _, state := range d.states {
		if state.retry != nil {
			state.retry.Stop()
		}
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Infow("dispatcher stopped")
}

// Schedule enqueues one reconciliation for a (user, service) pair. Calls
// against a key that is already queued, running or awaiting retry coalesce
// into a single follow-up pass.
func (d *Dispatcher) Schedule(userID uint, service string) {
	if _, ok := d.registry.Get(service); !ok {
		d.logger.Warnw("schedule for unknown service ignored", "user_id", userID, "service", service)
		return
	}
	key := taskKey{userID: userID, service: service}

	d.mu.Lock()
	state, ok := d.states[key]
	if !ok {
		state = &taskState{}
		d.states[key] = state
	}
	if state.queued || state.running || state.retry != nil {
		state.rerun = true
		d.mu.Unlock()
		return
	}
	state.queued = true
	state.attempts = 0
	d.mu.Unlock()

	d.enqueue(key)
}

// ScheduleAll enqueues one reconciliation per configured service for the
// user.
func (d *Dispatcher) ScheduleAll(userID uint) {
	for _, service := range d.registry.Names() {
		d.Schedule(userID, service)
	}
}

func (d *Dispatcher) enqueue(key taskKey) {
	select {
	case d.queue <- key:
	default:
		// Queue saturated. Drop the task but leave the rerun flag logic
		// intact by resetting the state so a later Schedule re-enqueues.
		d.mu.Lock()
		delete(d.states, key)
		d.mu.Unlock()
		d.logger.Errorw("dispatcher queue full, task dropped", "user_id", key.userID, "service", key.service)
	}
}

func (d *Dispatcher) workLoop() {
	for {
		select {
		case <-d.stopCh:
			return
		case key := <-d.queue:
			d.run(key)
		}
	}
}

func (d *Dispatcher) run(key taskKey) {
	d.mu.Lock()
	state, ok := d.states[key]
	if !ok {
		d.mu.Unlock()
		return
	}
	state.queued = false
	state.running = true
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), d.callTimeout)
	defer cancel()

	if !d.acquireGuard(ctx, key) {
		// Another process is reconciling this key. Treat like a transient
		// failure so the task comes back after the backoff.
		d.finish(key, sync.Transientf("reconciliation for user %d on %s already in flight elsewhere", key.userID, key.service))
		return
	}

	err := d.runner.SyncUser(ctx, key.userID, key.service)

	// Release before finish: a coalesced rerun may be picked up by another
	// worker immediately.
	d.releaseGuard(key)
	d.finish(key, err)
}

// finish applies the retry policy and the coalesced rerun, exactly one of:
// clear (success), schedule retry (transient, attempts left), or escalate.
func (d *Dispatcher) finish(key taskKey, err error) {
	d.mu.Lock()
	state, ok := d.states[key]
	if !ok {
		d.mu.Unlock()
		return
	}
	state.running = false

	if err == nil {
		rerun := state.rerun
		delete(d.states, key)
		d.mu.Unlock()

		if rerun {
			d.Schedule(key.userID, key.service)
		}
		return
	}

	state.attempts++
	if sync.IsRetryable(err) && state.attempts < d.maxAttempts {
		attempt := state.attempts
		state.retry = time.AfterFunc(d.backoff, func() {
			d.retryFire(key)
		})
		d.mu.Unlock()

		d.logger.Warnw("reconciliation failed, retry scheduled",
			"user_id", key.userID,
			"service", key.service,
			"attempt", attempt,
			"max_attempts", d.maxAttempts,
			"backoff", d.backoff,
			"error", err,
		)
		return
	}

	delete(d.states, key)
	d.mu.Unlock()

	d.logger.Errorw("reconciliation failed permanently, escalating",
		"user_id", key.userID,
		"service", key.service,
		"kind", sync.KindOf(err),
		"error", err,
	)

	ctx, cancel := context.WithTimeout(context.Background(), d.callTimeout)
	defer cancel()
	d.escalator.Escalate(ctx, key.userID, key.service, err)
}

func (d *Dispatcher) retryFire(key taskKey) {
	select {
	case <-d.stopCh:
		return
	default:
	}

	d.mu.Lock()
	state, ok := d.states[key]
	if !ok {
		d.mu.Unlock()
		return
	}
	state.retry = nil
	state.queued = true
	d.mu.Unlock()

	d.enqueue(key)
}

// acquireGuard takes the cross-process in-flight lock. Without Redis the
// local state map alone guards the invariant.
func (d *Dispatcher) acquireGuard(ctx context.Context, key taskKey) bool {
	if d.redis == nil {
		return true
	}
	ok, err := d.redis.SetNX(ctx, d.guardKey(key), 1, redisGuardTTL).Result()
	if err != nil {
		d.logger.Warnw("redis in-flight guard unavailable, proceeding locally",
			"user_id", key.userID,
			"service", key.service,
			"error", err,
		)
		return true
	}
	return ok
}

func (d *Dispatcher) releaseGuard(key taskKey) {
	if d.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.redis.Del(ctx, d.guardKey(key)).Err(); err != nil {
		d.logger.Warnw("failed to release in-flight guard", "user_id", key.userID, "service", key.service, "error", err)
	}
}

func (d *Dispatcher) guardKey(key taskKey) string {
	return fmt.Sprintf("%s%d:%s", redisGuardPrefix, key.userID, key.service)
}
