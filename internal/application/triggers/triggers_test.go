package triggers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/domain/authstate"
	"aegis/internal/domain/character"
	"aegis/internal/domain/group"
	"aegis/internal/domain/shared/events"
	"aegis/internal/domain/user"
	"aegis/internal/shared/logger"
)

type recordingScheduler struct {
	mu        sync.Mutex
	scheduled []uint
}

func (r *recordingScheduler) ScheduleAll(userID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = append(r.scheduled, userID)
}

func (r *recordingScheduler) snapshot() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint, len(r.scheduled))
	copy(out, r.scheduled)
	return out
}

type staticOwnerships struct {
	owner map[int64]uint
}

func (s *staticOwnerships) Create(context.Context, *character.Ownership) error { return nil }
func (s *staticOwnerships) Update(context.Context, *character.Ownership) error { return nil }

func (s *staticOwnerships) GetActiveByCharacterID(_ context.Context, characterID int64) (*character.Ownership, error) {
	userID, ok := s.owner[characterID]
	if !ok {
		return nil, character.ErrOwnershipNotFound
	}
	return character.NewOwnership(characterID, userID, character.ProofSSO)
}

func (s *staticOwnerships) ListActiveByUserID(context.Context, uint) ([]*character.Ownership, error) {
	return nil, nil
}

func (s *staticOwnerships) ListHistoryByCharacterID(context.Context, int64) ([]*character.Ownership, error) {
	return nil, nil
}

func newTriggerHarness(t *testing.T, owner map[int64]uint) (*events.InMemoryEventDispatcher, *recordingScheduler) {
	t.Helper()
	log := logger.NewNop()
	dispatcher := events.NewInMemoryEventDispatcher(64, log)
	scheduler := &recordingScheduler{}

	require.NoError(t, Register(dispatcher, scheduler, &staticOwnerships{owner: owner}, log))
	require.NoError(t, dispatcher.Start())
	t.Cleanup(func() { _ = dispatcher.Stop() })

	return dispatcher, scheduler
}

func eventually(t *testing.T, scheduler *recordingScheduler, want []uint) {
	t.Helper()
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(want, scheduler.snapshot())
	}, 2*time.Second, 5*time.Millisecond, "expected schedules %v, got %v", want, scheduler.snapshot())
}

func TestStateChangeSchedulesUser(t *testing.T) {
	dispatcher, scheduler := newTriggerHarness(t, nil)
	require.NoError(t, dispatcher.Publish(authstate.NewStateChangedEvent(7, "Guest", "Member", 2)))
	eventually(t, scheduler, []uint{7})
}

func TestUserLifecycleSchedulesUser(t *testing.T) {
	dispatcher, scheduler := newTriggerHarness(t, nil)
	require.NoError(t, dispatcher.Publish(user.NewUserActivatedEvent(4, "pending")))
	require.NoError(t, dispatcher.Publish(user.NewUserDeactivatedEvent(5, "active")))
	eventually(t, scheduler, []uint{4, 5})
}

func TestMainCharacterChangeSchedulesUser(t *testing.T) {
	dispatcher, scheduler := newTriggerHarness(t, nil)
	require.NoError(t, dispatcher.Publish(user.NewMainCharacterChangedEvent(9, nil, 1001)))
	eventually(t, scheduler, []uint{9})
}

func TestMembershipChangeSchedulesUser(t *testing.T) {
	dispatcher, scheduler := newTriggerHarness(t, nil)
	require.NoError(t, dispatcher.Publish(group.NewMembershipChangedEvent(12, 3, "Team Leads", true)))
	eventually(t, scheduler, []uint{12})
}

func TestAffiliationChangeSchedulesOwner(t *testing.T) {
	dispatcher, scheduler := newTriggerHarness(t, map[int64]uint{1001: 9})
	require.NoError(t, dispatcher.Publish(character.NewAffiliationChangedEvent(1001, 100, 200, 0)))
	eventually(t, scheduler, []uint{9})
}

func TestAffiliationChangeForUnownedCharacterIsIgnored(t *testing.T) {
	dispatcher, scheduler := newTriggerHarness(t, nil)
	require.NoError(t, dispatcher.Publish(character.NewAffiliationChangedEvent(1001, 100, 200, 0)))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, scheduler.snapshot())
}

func TestOwnershipTransferSchedulesBothUsers(t *testing.T) {
	dispatcher, scheduler := newTriggerHarness(t, nil)
	require.NoError(t, dispatcher.Publish(character.NewOwnershipTransferredEvent(1001, 3, 8)))
	eventually(t, scheduler, []uint{3, 8})
}
