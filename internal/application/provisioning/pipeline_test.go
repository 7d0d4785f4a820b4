package provisioning

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/domain/authstate"
	"aegis/internal/domain/character"
	"aegis/internal/domain/group"
	"aegis/internal/domain/sync"
	"aegis/internal/domain/user"
	"aegis/internal/shared/logger"
)

// ---- fakes ----

type fakeUsers struct {
	byID map[uint]*user.User
	ids  []uint
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: make(map[uint]*user.User)} }

func (f *fakeUsers) add(u *user.User) {
	f.byID[u.ID()] = u
	f.ids = append(f.ids, u.ID())
	sort.Slice(f.ids, func(i, j int) bool { return f.ids[i] < f.ids[j] })
}

func (f *fakeUsers) Create(_ context.Context, u *user.User) error { f.add(u); return nil }
func (f *fakeUsers) Update(_ context.Context, u *user.User) error { f.byID[u.ID()] = u; return nil }

func (f *fakeUsers) GetByID(_ context.Context, id uint) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range f.byID {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (f *fakeUsers) List(_ context.Context, filter user.ListFilter) ([]*user.User, int64, error) {
	var matched []*user.User
	for _, id := range f.ids {
		u := f.byID[id]
		if filter.Status != "" && u.Status().String() != filter.Status {
			continue
		}
		matched = append(matched, u)
	}
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(matched) {
		return nil, int64(len(matched)), nil
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], int64(len(matched)), nil
}

type fakeLinks struct {
	byID   map[uint]*sync.AccountLink
	nextID uint
}

func newFakeLinks() *fakeLinks { return &fakeLinks{byID: make(map[uint]*sync.AccountLink)} }

func (f *fakeLinks) Create(_ context.Context, l *sync.AccountLink) error {
	f.nextID++
	if err := l.SetID(f.nextID); err != nil {
		return err
	}
	f.byID[l.ID()] = l
	return nil
}

func (f *fakeLinks) Update(_ context.Context, l *sync.AccountLink) error {
	f.byID[l.ID()] = l
	return nil
}

func (f *fakeLinks) Delete(_ context.Context, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return sync.ErrLinkNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeLinks) GetByUserAndService(_ context.Context, userID uint, service string) (*sync.AccountLink, error) {
	for _, l := range f.byID {
		if l.UserID() == userID && l.Service() == service {
			return l, nil
		}
	}
	return nil, sync.ErrLinkNotFound
}

func (f *fakeLinks) ListByUser(_ context.Context, userID uint) ([]*sync.AccountLink, error) {
	var out []*sync.AccountLink
	for _, l := range f.byID {
		if l.UserID() == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLinks) ListByService(_ context.Context, service string) ([]*sync.AccountLink, error) {
	var out []*sync.AccountLink
	for _, l := range f.byID {
		if l.Service() == service {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeEnforcer struct {
	grants map[string]bool
}

func newFakeEnforcer() *fakeEnforcer { return &fakeEnforcer{grants: make(map[string]bool)} }

func grantKey(userID uint, service string) string { return fmt.Sprintf("%d:%s", userID, service) }

func (f *fakeEnforcer) Enforce(uint, string, string) (bool, error) { return true, nil }

func (f *fakeEnforcer) CanUseService(userID uint, service string) (bool, error) {
	return f.grants[grantKey(userID, service)], nil
}

func (f *fakeEnforcer) GrantServiceAccess(userID uint, service string) error {
	f.grants[grantKey(userID, service)] = true
	return nil
}

func (f *fakeEnforcer) RevokeServiceAccess(userID uint, service string) error {
	delete(f.grants, grantKey(userID, service))
	return nil
}

func (f *fakeEnforcer) AddRoleForUser(uint, string) error      { return nil }
func (f *fakeEnforcer) DeleteRoleForUser(uint, string) error   { return nil }
func (f *fakeEnforcer) GetRolesForUser(uint) ([]string, error) { return nil, nil }
func (f *fakeEnforcer) LoadPolicy() error                      { return nil }

type fakeStateRepo struct {
	states []*authstate.State
}

func (f *fakeStateRepo) Create(_ context.Context, s *authstate.State) error {
	f.states = append(f.states, s)
	return nil
}
func (f *fakeStateRepo) Update(context.Context, *authstate.State) error { return nil }

func (f *fakeStateRepo) GetByID(_ context.Context, id uint) (*authstate.State, error) {
	for _, s := range f.states {
		if s.ID() == id {
			return s, nil
		}
	}
	return nil, authstate.ErrStateNotFound
}

func (f *fakeStateRepo) GetByName(_ context.Context, name string) (*authstate.State, error) {
	for _, s := range f.states {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, authstate.ErrStateNotFound
}

func (f *fakeStateRepo) ListAll(context.Context) ([]*authstate.State, error) {
	return f.states, nil
}

type fakeUserStates struct {
	current map[uint]uint
}

func (f *fakeUserStates) GetCurrent(_ context.Context, userID uint) (*authstate.UserState, error) {
	stateID, ok := f.current[userID]
	if !ok {
		return nil, authstate.ErrUserStateNotFound
	}
	return &authstate.UserState{UserID: userID, StateID: stateID, UpdatedAt: time.Now()}, nil
}

func (f *fakeUserStates) SetCurrent(_ context.Context, userID, stateID uint) error {
	f.current[userID] = stateID
	return nil
}

func (f *fakeUserStates) ListUserIDsByState(_ context.Context, stateID uint) ([]uint, error) {
	var out []uint
	for uid, sid := range f.current {
		if sid == stateID {
			out = append(out, uid)
		}
	}
	return out, nil
}

type fakeAffiliations struct {
	byUser map[uint]character.Affiliation
}

func (f *fakeAffiliations) MainAffiliation(_ context.Context, userID uint) (character.Affiliation, error) {
	return f.byUser[userID], nil
}

type fakeGroups struct {
	byID   map[uint]*group.Group
	nextID uint
}

func newFakeGroups() *fakeGroups { return &fakeGroups{byID: make(map[uint]*group.Group)} }

func (f *fakeGroups) Create(_ context.Context, g *group.Group) error {
	f.nextID++
	if err := g.SetID(f.nextID); err != nil {
		return err
	}
	f.byID[g.ID()] = g
	return nil
}

func (f *fakeGroups) Delete(_ context.Context, id uint) error { delete(f.byID, id); return nil }

func (f *fakeGroups) GetByID(_ context.Context, id uint) (*group.Group, error) {
	g, ok := f.byID[id]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	return g, nil
}

func (f *fakeGroups) GetByName(_ context.Context, name string) (*group.Group, error) {
	for _, g := range f.byID {
		if g.Name() == name {
			return g, nil
		}
	}
	return nil, group.ErrGroupNotFound
}

func (f *fakeGroups) ListByRule(_ context.Context, ruleID uint) ([]*group.Group, error) {
	var out []*group.Group
	for _, g := range f.byID {
		if g.RuleID() != nil && *g.RuleID() == ruleID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGroups) ListByIDs(_ context.Context, ids []uint) ([]*group.Group, error) {
	var out []*group.Group
	for _, id := range ids {
		if g, ok := f.byID[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeBindings struct {
	byState map[uint][]uint
}

func (f *fakeBindings) Bind(_ context.Context, stateID, groupID uint) error {
	f.byState[stateID] = append(f.byState[stateID], groupID)
	return nil
}

func (f *fakeBindings) Unbind(context.Context, uint, uint) error { return nil }

func (f *fakeBindings) ListGroupIDsByState(_ context.Context, stateID uint) ([]uint, error) {
	return f.byState[stateID], nil
}

type fakeMemberships struct {
	byUser map[uint][]uint
}

func (f *fakeMemberships) AddMember(_ context.Context, groupID, userID uint) error {
	f.byUser[userID] = append(f.byUser[userID], groupID)
	return nil
}

func (f *fakeMemberships) RemoveMember(context.Context, uint, uint) error { return nil }

func (f *fakeMemberships) ListGroupIDsByUser(_ context.Context, userID uint) ([]uint, error) {
	return f.byUser[userID], nil
}

func (f *fakeMemberships) ListUserIDsByGroup(context.Context, uint) ([]uint, error) {
	return nil, nil
}

type fakeRules struct {
	rules []*group.AutoGroupRule
}

func (f *fakeRules) Create(_ context.Context, r *group.AutoGroupRule) error {
	f.rules = append(f.rules, r)
	return nil
}
func (f *fakeRules) Update(context.Context, *group.AutoGroupRule) error { return nil }

func (f *fakeRules) GetByID(_ context.Context, id uint) (*group.AutoGroupRule, error) {
	for _, r := range f.rules {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, group.ErrRuleNotFound
}

func (f *fakeRules) ListAll(context.Context) ([]*group.AutoGroupRule, error) {
	return f.rules, nil
}

type fakeOrgs struct{}

func (fakeOrgs) Upsert(context.Context, *character.Organization) error { return nil }
func (fakeOrgs) GetByOrganizationID(context.Context, int64) (*character.Organization, error) {
	return nil, character.ErrOrganizationNotFound
}

type fakeAlliances struct{}

func (fakeAlliances) Upsert(context.Context, *character.Alliance) error { return nil }
func (fakeAlliances) GetByAllianceID(context.Context, int64) (*character.Alliance, error) {
	return nil, character.ErrAllianceNotFound
}

type note struct {
	userID  uint
	subject string
	body    string
}

type recordingNotifier struct {
	notes []note
}

func (r *recordingNotifier) Notify(_ context.Context, userID uint, subject, body string) error {
	r.notes = append(r.notes, note{userID: userID, subject: subject, body: body})
	return nil
}

type fakeScheduler struct {
	scheduled []string
}

func (f *fakeScheduler) Schedule(userID uint, service string) {
	f.scheduled = append(f.scheduled, fmt.Sprintf("%d:%s", userID, service))
}

func (f *fakeScheduler) ScheduleAll(userID uint) {
	f.scheduled = append(f.scheduled, fmt.Sprintf("%d:*", userID))
}

// ---- fixture ----

type pipelineFixture struct {
	pipeline   *Pipeline
	adapter    *sync.FakeAdapter
	users      *fakeUsers
	links      *fakeLinks
	enforcer   *fakeEnforcer
	notifier   *recordingNotifier
	registry   *sync.StaticRegistry
	groups     *fakeGroups
	bindings   *fakeBindings
	calculator *group.Calculator
	publicID   uint
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	log := logger.NewNop()

	adapter := sync.NewFakeAdapter("chat")
	registry := sync.NewStaticRegistry(adapter)

	public, err := authstate.ReconstructState(1, "Guest", 0, true, nil, nil, nil, time.Now(), time.Now())
	require.NoError(t, err)

	stateRepo := &fakeStateRepo{states: []*authstate.State{public}}
	userStates := &fakeUserStates{current: make(map[uint]uint)}
	affiliations := &fakeAffiliations{byUser: make(map[uint]character.Affiliation)}

	stateService := authstate.NewService(stateRepo, userStates, affiliations, nil, log)

	groups := newFakeGroups()
	bindings := &fakeBindings{byState: make(map[uint][]uint)}
	memberships := &fakeMemberships{byUser: make(map[uint][]uint)}
	calculator := group.NewCalculator(groups, bindings, memberships, &fakeRules{}, fakeOrgs{}, fakeAlliances{}, log)

	users := newFakeUsers()
	links := newFakeLinks()
	enforcer := newFakeEnforcer()
	notifier := &recordingNotifier{}

	pipeline := NewPipeline(
		users, stateService, affiliations, calculator, sync.NewEngine(log),
		links, registry, enforcer, notifier, log,
	)

	return &pipelineFixture{
		pipeline:   pipeline,
		adapter:    adapter,
		users:      users,
		links:      links,
		enforcer:   enforcer,
		notifier:   notifier,
		registry:   registry,
		groups:     groups,
		bindings:   bindings,
		calculator: calculator,
		publicID:   public.ID(),
	}
}

func (f *pipelineFixture) addUser(t *testing.T, id uint, status user.Status) *user.User {
	t.Helper()
	u, err := user.ReconstructUser(id, fmt.Sprintf("u%d@example.com", id), fmt.Sprintf("user%d", id), status, time.Now(), time.Now(), 1)
	require.NoError(t, err)
	f.users.add(u)
	return u
}

func (f *pipelineFixture) addPendingLink(t *testing.T, userID uint, service string) *sync.AccountLink {
	t.Helper()
	link, err := sync.NewAccountLink(userID, service)
	require.NoError(t, err)
	require.NoError(t, f.links.Create(context.Background(), link))
	return link
}

func (f *pipelineFixture) addProvisionedLink(t *testing.T, userID uint, service, remoteID string) *sync.AccountLink {
	t.Helper()
	link := f.addPendingLink(t, userID, service)
	require.NoError(t, link.Provisioned(remoteID, "remote"))
	f.adapter.SetRemoteGroups(remoteID)
	return link
}

func (f *pipelineFixture) bindGroupToPublic(t *testing.T, name string) {
	t.Helper()
	g, err := group.NewGroup(name, "")
	require.NoError(t, err)
	require.NoError(t, f.groups.Create(context.Background(), g))
	require.NoError(t, f.bindings.Bind(context.Background(), f.publicID, g.ID()))
}

// ---- tests ----

func TestPipeline_ProvisionsAccountOnFirstRun(t *testing.T) {
	f := newPipelineFixture(t)
	f.addUser(t, 1, user.StatusActive)
	require.NoError(t, f.enforcer.GrantServiceAccess(1, "chat"))
	f.addPendingLink(t, 1, "chat")

	require.NoError(t, f.pipeline.SyncUser(context.Background(), 1, "chat"))

	link, err := f.links.GetByUserAndService(context.Background(), 1, "chat")
	require.NoError(t, err)
	assert.True(t, link.IsProvisioned())
	assert.NotEmpty(t, link.RemoteID())
	assert.NotNil(t, link.LastSyncedAt())

	require.Len(t, f.notifier.notes, 1)
	assert.Contains(t, f.notifier.notes[0].subject, "chat")
	assert.Contains(t, f.notifier.notes[0].body, "Password")
}

func TestPipeline_AppliesBoundGroups(t *testing.T) {
	f := newPipelineFixture(t)
	f.addUser(t, 1, user.StatusActive)
	require.NoError(t, f.enforcer.GrantServiceAccess(1, "chat"))
	f.bindGroupToPublic(t, "Team Leads")
	f.addPendingLink(t, 1, "chat")

	require.NoError(t, f.pipeline.SyncUser(context.Background(), 1, "chat"))

	link, err := f.links.GetByUserAndService(context.Background(), 1, "chat")
	require.NoError(t, err)
	remote, err := f.adapter.FetchGroups(context.Background(), link.RemoteID())
	require.NoError(t, err)
	assert.Equal(t, []string{"Team Leads"}, remote)
}

func TestPipeline_NoLinkIsNoop(t *testing.T) {
	f := newPipelineFixture(t)
	f.addUser(t, 1, user.StatusActive)
	require.NoError(t, f.enforcer.GrantServiceAccess(1, "chat"))

	require.NoError(t, f.pipeline.SyncUser(context.Background(), 1, "chat"))
	assert.Empty(t, f.notifier.notes)
}

func TestPipeline_UnknownServiceIsUnrecoverable(t *testing.T) {
	f := newPipelineFixture(t)
	err := f.pipeline.SyncUser(context.Background(), 1, "wiki")
	require.Error(t, err)
	assert.Equal(t, sync.KindUnrecoverable, sync.KindOf(err))
}

func TestPipeline_InactiveUserIsDeprovisioned(t *testing.T) {
	f := newPipelineFixture(t)
	f.addUser(t, 1, user.StatusDisabled)
	require.NoError(t, f.enforcer.GrantServiceAccess(1, "chat"))
	f.addProvisionedLink(t, 1, "chat", "chat-9")

	require.NoError(t, f.pipeline.SyncUser(context.Background(), 1, "chat"))

	assert.Contains(t, f.adapter.Disabled, "chat-9")
	_, err := f.links.GetByUserAndService(context.Background(), 1, "chat")
	assert.ErrorIs(t, err, sync.ErrLinkNotFound)

	require.Len(t, f.notifier.notes, 1)
	assert.Contains(t, f.notifier.notes[0].subject, "removed")
}

func TestPipeline_RevokedGrantIsDeprovisioned(t *testing.T) {
	f := newPipelineFixture(t)
	f.addUser(t, 1, user.StatusActive)
	f.addProvisionedLink(t, 1, "chat", "chat-4")

	require.NoError(t, f.pipeline.SyncUser(context.Background(), 1, "chat"))

	assert.Contains(t, f.adapter.Disabled, "chat-4")
	_, err := f.links.GetByUserAndService(context.Background(), 1, "chat")
	assert.ErrorIs(t, err, sync.ErrLinkNotFound)
}

func TestPipeline_PartialFailureIsTransientAndRecovers(t *testing.T) {
	f := newPipelineFixture(t)
	f.addUser(t, 1, user.StatusActive)
	require.NoError(t, f.enforcer.GrantServiceAccess(1, "chat"))
	f.bindGroupToPublic(t, "Alpha")
	f.bindGroupToPublic(t, "Flaky")
	link := f.addProvisionedLink(t, 1, "chat", "chat-7")
	f.adapter.FailAdd = map[string]error{"Flaky": sync.Transientf("rate limited")}

	err := f.pipeline.SyncUser(context.Background(), 1, "chat")
	require.Error(t, err)
	assert.True(t, sync.IsRetryable(err))
	assert.Equal(t, 1, link.FailCount())

	remote, err := f.adapter.FetchGroups(context.Background(), "chat-7")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, remote)

	f.adapter.FailAdd = nil
	require.NoError(t, f.pipeline.SyncUser(context.Background(), 1, "chat"))
	assert.Equal(t, 0, link.FailCount())

	remote, err = f.adapter.FetchGroups(context.Background(), "chat-7")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Flaky"}, remote)
}

func TestEscalator_DeletesLinkAndNotifies(t *testing.T) {
	f := newPipelineFixture(t)
	f.addProvisionedLink(t, 3, "chat", "chat-2")

	escalator := NewLinkEscalator(f.links, f.notifier, logger.NewNop())
	escalator.Escalate(context.Background(), 3, "chat", sync.Transientf("gave up"))

	_, err := f.links.GetByUserAndService(context.Background(), 3, "chat")
	assert.ErrorIs(t, err, sync.ErrLinkNotFound)

	require.Len(t, f.notifier.notes, 1)
	assert.Equal(t, uint(3), f.notifier.notes[0].userID)
}

func TestEscalator_MissingLinkIsQuiet(t *testing.T) {
	f := newPipelineFixture(t)
	escalator := NewLinkEscalator(f.links, f.notifier, logger.NewNop())
	escalator.Escalate(context.Background(), 3, "chat", errors.New("boom"))
	assert.Empty(t, f.notifier.notes)
}

func TestActivateService_CreatesPendingLinkAndSchedules(t *testing.T) {
	f := newPipelineFixture(t)
	f.addUser(t, 1, user.StatusActive)
	require.NoError(t, f.enforcer.GrantServiceAccess(1, "chat"))
	scheduler := &fakeScheduler{}

	uc := NewActivateServiceUseCase(f.users, f.links, f.registry, f.enforcer, scheduler, logger.NewNop())
	link, err := uc.Execute(context.Background(), 1, "chat")
	require.NoError(t, err)
	assert.Equal(t, sync.LinkStatusPending, link.Status())
	assert.Equal(t, []string{"1:chat"}, scheduler.scheduled)
}

func TestActivateService_Rejections(t *testing.T) {
	f := newPipelineFixture(t)
	f.addUser(t, 1, user.StatusActive)
	f.addUser(t, 2, user.StatusPending)
	require.NoError(t, f.enforcer.GrantServiceAccess(1, "chat"))
	scheduler := &fakeScheduler{}
	uc := NewActivateServiceUseCase(f.users, f.links, f.registry, f.enforcer, scheduler, logger.NewNop())

	_, err := uc.Execute(context.Background(), 1, "wiki")
	assert.ErrorIs(t, err, ErrServiceUnknown)

	_, err = uc.Execute(context.Background(), 2, "chat")
	assert.ErrorIs(t, err, ErrUserNotActive)

	f.enforcer.grants = map[string]bool{}
	_, err = uc.Execute(context.Background(), 1, "chat")
	assert.ErrorIs(t, err, ErrServiceNotGranted)

	require.NoError(t, f.enforcer.GrantServiceAccess(1, "chat"))
	_, err = uc.Execute(context.Background(), 1, "chat")
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), 1, "chat")
	assert.ErrorIs(t, err, ErrAlreadyActivated)
}

func TestDeactivateService_DisablesAndDeletes(t *testing.T) {
	f := newPipelineFixture(t)
	f.addProvisionedLink(t, 1, "chat", "chat-5")

	uc := NewDeactivateServiceUseCase(f.links, f.registry, f.notifier, logger.NewNop())
	require.NoError(t, uc.Execute(context.Background(), 1, "chat"))

	assert.Contains(t, f.adapter.Disabled, "chat-5")
	_, err := f.links.GetByUserAndService(context.Background(), 1, "chat")
	assert.ErrorIs(t, err, sync.ErrLinkNotFound)

	assert.ErrorIs(t, uc.Execute(context.Background(), 1, "chat"), ErrServiceNotEnabled)
}

func TestResyncSweep_SchedulesEveryLink(t *testing.T) {
	// User 2 is disabled with a dangling link; the sweep still schedules the
	// pair so the pass can strip the remote account.
	f := newPipelineFixture(t)
	f.addUser(t, 1, user.StatusActive)
	f.addUser(t, 2, user.StatusDisabled)
	f.addProvisionedLink(t, 1, "chat", "chat-1")
	f.addProvisionedLink(t, 2, "chat", "chat-2")
	scheduler := &fakeScheduler{}

	sweep := NewResyncSweep(f.links, f.registry, f.calculator, scheduler, logger.NewNop())
	count, err := sweep.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.ElementsMatch(t, []string{"1:chat", "2:chat"}, scheduler.scheduled)
}

func TestResyncSweep_ServiceResyncSchedulesOnlyThatService(t *testing.T) {
	f := newPipelineFixture(t)
	registry := sync.NewStaticRegistry(f.adapter, sync.NewFakeAdapter("forum"))
	f.addProvisionedLink(t, 1, "chat", "chat-1")
	f.addProvisionedLink(t, 1, "forum", "forum-1")
	f.addProvisionedLink(t, 2, "forum", "forum-2")
	scheduler := &fakeScheduler{}
	sweep := NewResyncSweep(f.links, registry, f.calculator, scheduler, logger.NewNop())

	count, err := sweep.ExecuteService(context.Background(), "forum")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.ElementsMatch(t, []string{"1:forum", "2:forum"}, scheduler.scheduled)
}

func TestResyncSweep_ServiceResyncRejectsUnknownService(t *testing.T) {
	f := newPipelineFixture(t)
	scheduler := &fakeScheduler{}
	sweep := NewResyncSweep(f.links, f.registry, f.calculator, scheduler, logger.NewNop())

	_, err := sweep.ExecuteService(context.Background(), "wiki")
	assert.ErrorIs(t, err, ErrServiceUnknown)
	assert.Empty(t, scheduler.scheduled)
}

func TestRevokeService_SchedulesStrip(t *testing.T) {
	f := newPipelineFixture(t)
	require.NoError(t, f.enforcer.GrantServiceAccess(1, "chat"))
	scheduler := &fakeScheduler{}

	uc := NewRevokeServiceUseCase(f.enforcer, scheduler, logger.NewNop())
	require.NoError(t, uc.Execute(context.Background(), 1, "chat"))

	allowed, err := f.enforcer.CanUseService(1, "chat")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, []string{"1:chat"}, scheduler.scheduled)
}
