package dispatcher

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/domain/sync"
	"aegis/internal/shared/config"
	"aegis/internal/shared/logger"
)

type runnerFunc func(ctx context.Context, userID uint, service string) error

func (f runnerFunc) SyncUser(ctx context.Context, userID uint, service string) error {
	return f(ctx, userID, service)
}

type recordingEscalator struct {
	mu    stdsync.Mutex
	calls []escalation
	done  chan struct{}
}

type escalation struct {
	userID  uint
	service string
	cause   error
}

func newRecordingEscalator() *recordingEscalator {
	return &recordingEscalator{done: make(chan struct{}, 16)}
}

func (e *recordingEscalator) Escalate(_ context.Context, userID uint, service string, cause error) {
	e.mu.Lock()
	e.calls = append(e.calls, escalation{userID: userID, service: service, cause: cause})
	e.mu.Unlock()
	e.done <- struct{}{}
}

func (e *recordingEscalator) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func testConfig() *config.SyncConfig {
	return &config.SyncConfig{
		Workers:          2,
		RetryBackoffMins: 0, // immediate retry in tests
		MaxAttempts:      3,
		CallTimeoutSecs:  5,
	}
}

func newTestDispatcher(t *testing.T, runner Runner, escalator Escalator, cfg *config.SyncConfig) *Dispatcher {
	t.Helper()
	registry := sync.NewStaticRegistry(sync.NewFakeAdapter("chat"), sync.NewFakeAdapter("forum"))
	d := New(runner, escalator, registry, nil, cfg, logger.NewNop())
	d.Start()
	t.Cleanup(d.Stop)
	return d
}

func waitSignal(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal(msg)
	}
}

func TestDispatcher_RunsScheduledTask(t *testing.T) {
	ran := make(chan struct{}, 1)
	runner := runnerFunc(func(_ context.Context, userID uint, service string) error {
		assert.Equal(t, uint(7), userID)
		assert.Equal(t, "chat", service)
		ran <- struct{}{}
		return nil
	})

	d := newTestDispatcher(t, runner, newRecordingEscalator(), testConfig())
	d.Schedule(7, "chat")

	waitSignal(t, ran, "task was never executed")
}

func TestDispatcher_CoalescesWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu stdsync.Mutex
	runs := 0

	runner := runnerFunc(func(context.Context, uint, string) error {
		mu.Lock()
		runs++
		first := runs == 1
		mu.Unlock()
		if first {
			started <- struct{}{}
			<-release
		}
		return nil
	})

	d := newTestDispatcher(t, runner, newRecordingEscalator(), testConfig())
	d.Schedule(7, "chat")
	waitSignal(t, started, "first run never started")

	// Five schedules against a running key owe exactly one follow-up pass.
	for i := 0; i < 5; i++ {
		d.Schedule(7, "chat")
	}
	close(release)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return runs == 2
	}, 2*time.Second, 10*time.Millisecond, "coalesced schedules must yield exactly one follow-up run")

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, runs)
}

func TestDispatcher_IndependentKeysRunIndependently(t *testing.T) {
	var wg stdsync.WaitGroup
	wg.Add(2)
	seen := make(map[string]bool)
	var mu stdsync.Mutex

	runner := runnerFunc(func(_ context.Context, _ uint, service string) error {
		mu.Lock()
		if !seen[service] {
			seen[service] = true
			wg.Done()
		}
		mu.Unlock()
		return nil
	})

	d := newTestDispatcher(t, runner, newRecordingEscalator(), testConfig())
	d.ScheduleAll(7)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	waitSignal(t, done, "not all services were reconciled")
}

func TestDispatcher_TransientFailureRetriesThenSucceeds(t *testing.T) {
	var mu stdsync.Mutex
	attempts := 0
	succeeded := make(chan struct{}, 1)

	runner := runnerFunc(func(context.Context, uint, string) error {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 3 {
			return sync.Transientf("remote flaked")
		}
		succeeded <- struct{}{}
		return nil
	})

	escalator := newRecordingEscalator()
	d := newTestDispatcher(t, runner, escalator, testConfig())
	d.Schedule(7, "chat")

	waitSignal(t, succeeded, "task never succeeded after retries")
	assert.Equal(t, 0, escalator.count())
}

func TestDispatcher_ExhaustedRetriesEscalate(t *testing.T) {
	var mu stdsync.Mutex
	attempts := 0

	runner := runnerFunc(func(context.Context, uint, string) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return sync.Transientf("remote down")
	})

	escalator := newRecordingEscalator()
	cfg := testConfig()
	cfg.MaxAttempts = 2
	d := newTestDispatcher(t, runner, escalator, cfg)
	d.Schedule(7, "chat")

	waitSignal(t, escalator.done, "escalation never happened")

	mu.Lock()
	assert.Equal(t, 2, attempts)
	mu.Unlock()

	escalator.mu.Lock()
	defer escalator.mu.Unlock()
	require.Len(t, escalator.calls, 1)
	assert.Equal(t, uint(7), escalator.calls[0].userID)
	assert.Equal(t, "chat", escalator.calls[0].service)
	assert.Equal(t, sync.KindTransient, sync.KindOf(escalator.calls[0].cause))
}

func TestDispatcher_UnrecoverableEscalatesImmediately(t *testing.T) {
	var mu stdsync.Mutex
	attempts := 0

	runner := runnerFunc(func(context.Context, uint, string) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return sync.IdentityMismatch(errors.New("account belongs to someone else"))
	})

	escalator := newRecordingEscalator()
	d := newTestDispatcher(t, runner, escalator, testConfig())
	d.Schedule(7, "chat")

	waitSignal(t, escalator.done, "escalation never happened")

	mu.Lock()
	assert.Equal(t, 1, attempts, "identity mismatch must not be retried")
	mu.Unlock()
}

func TestDispatcher_ScheduleAfterCompletionRunsAgain(t *testing.T) {
	ran := make(chan struct{}, 2)
	runner := runnerFunc(func(context.Context, uint, string) error {
		ran <- struct{}{}
		return nil
	})

	d := newTestDispatcher(t, runner, newRecordingEscalator(), testConfig())

	d.Schedule(7, "chat")
	waitSignal(t, ran, "first run never happened")

	d.Schedule(7, "chat")
	waitSignal(t, ran, "second run never happened")
}

func TestDispatcher_UnknownServiceIgnored(t *testing.T) {
	runner := runnerFunc(func(context.Context, uint, string) error {
		t.Error("runner must not be called for an unknown service")
		return nil
	})

	d := newTestDispatcher(t, runner, newRecordingEscalator(), testConfig())
	d.Schedule(7, "voice")

	time.Sleep(50 * time.Millisecond)
}
