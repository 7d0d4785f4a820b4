package group

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/domain/authstate"
	"aegis/internal/domain/character"
	"aegis/internal/shared/logger"
)

type fakeGroupRepo struct {
	nextID uint
	byName map[string]*Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{byName: make(map[string]*Group)}
}

func (r *fakeGroupRepo) Create(_ context.Context, g *Group) error {
	if existing, ok := r.byName[g.Name()]; ok {
		if g.RuleID() == nil || !existing.GeneratedFor(*g.RuleID(), derefInt64(g.SourceRefID())) {
			return ErrNameTaken
		}
		return nil
	}
	r.nextID++
	_ = g.SetID(r.nextID)
	r.byName[g.Name()] = g
	return nil
}

func (r *fakeGroupRepo) Delete(_ context.Context, id uint) error {
	for name, g := range r.byName {
		if g.ID() == id {
			delete(r.byName, name)
			return nil
		}
	}
	return ErrGroupNotFound
}

func (r *fakeGroupRepo) GetByID(_ context.Context, id uint) (*Group, error) {
	for _, g := range r.byName {
		if g.ID() == id {
			return g, nil
		}
	}
	return nil, ErrGroupNotFound
}

func (r *fakeGroupRepo) GetByName(_ context.Context, name string) (*Group, error) {
	g, ok := r.byName[name]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

func (r *fakeGroupRepo) ListByRule(_ context.Context, ruleID uint) ([]*Group, error) {
	var out []*Group
	for _, g := range r.byName {
		if g.RuleID() != nil && *g.RuleID() == ruleID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) ListByIDs(_ context.Context, ids []uint) ([]*Group, error) {
	var out []*Group
	for _, id := range ids {
		for _, g := range r.byName {
			if g.ID() == id {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

type fakeBindingRepo struct {
	byState map[uint][]uint
}

func (r *fakeBindingRepo) Bind(_ context.Context, stateID, groupID uint) error {
	r.byState[stateID] = append(r.byState[stateID], groupID)
	return nil
}

func (r *fakeBindingRepo) Unbind(_ context.Context, stateID, groupID uint) error {
	ids := r.byState[stateID]
	for i, id := range ids {
		if id == groupID {
			r.byState[stateID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeBindingRepo) ListGroupIDsByState(_ context.Context, stateID uint) ([]uint, error) {
	return r.byState[stateID], nil
}

type fakeMembershipRepo struct {
	byUser map[uint][]uint
}

func (r *fakeMembershipRepo) AddMember(_ context.Context, groupID, userID uint) error {
	r.byUser[userID] = append(r.byUser[userID], groupID)
	return nil
}

func (r *fakeMembershipRepo) RemoveMember(_ context.Context, groupID, userID uint) error {
	ids := r.byUser[userID]
	for i, id := range ids {
		if id == groupID {
			r.byUser[userID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeMembershipRepo) ListGroupIDsByUser(_ context.Context, userID uint) ([]uint, error) {
	return r.byUser[userID], nil
}

func (r *fakeMembershipRepo) ListUserIDsByGroup(_ context.Context, groupID uint) ([]uint, error) {
	var out []uint
	for userID, ids := range r.byUser {
		for _, id := range ids {
			if id == groupID {
				out = append(out, userID)
			}
		}
	}
	return out, nil
}

type fakeRuleRepo struct {
	rules []*AutoGroupRule
}

func (r *fakeRuleRepo) Create(_ context.Context, rule *AutoGroupRule) error {
	r.rules = append(r.rules, rule)
	return nil
}

func (r *fakeRuleRepo) Update(context.Context, *AutoGroupRule) error { return nil }

func (r *fakeRuleRepo) GetByID(_ context.Context, id uint) (*AutoGroupRule, error) {
	for _, rule := range r.rules {
		if rule.ID() == id {
			return rule, nil
		}
	}
	return nil, ErrRuleNotFound
}

func (r *fakeRuleRepo) ListAll(context.Context) ([]*AutoGroupRule, error) {
	return r.rules, nil
}

type fakeOrgRepo struct {
	orgs map[int64]*character.Organization
}

func (r *fakeOrgRepo) Upsert(_ context.Context, o *character.Organization) error {
	r.orgs[o.OrganizationID()] = o
	return nil
}

func (r *fakeOrgRepo) GetByOrganizationID(_ context.Context, id int64) (*character.Organization, error) {
	o, ok := r.orgs[id]
	if !ok {
		return nil, character.ErrOrganizationNotFound
	}
	return o, nil
}

type fakeAllianceRepo struct {
	alliances map[int64]*character.Alliance
}

func (r *fakeAllianceRepo) Upsert(_ context.Context, a *character.Alliance) error {
	r.alliances[a.AllianceID()] = a
	return nil
}

func (r *fakeAllianceRepo) GetByAllianceID(_ context.Context, id int64) (*character.Alliance, error) {
	a, ok := r.alliances[id]
	if !ok {
		return nil, character.ErrAllianceNotFound
	}
	return a, nil
}

type calcFixture struct {
	groups      *fakeGroupRepo
	bindings    *fakeBindingRepo
	memberships *fakeMembershipRepo
	rules       *fakeRuleRepo
	orgs        *fakeOrgRepo
	alliances   *fakeAllianceRepo
	calc        *Calculator
}

func newCalcFixture() *calcFixture {
	f := &calcFixture{
		groups:      newFakeGroupRepo(),
		bindings:    &fakeBindingRepo{byState: make(map[uint][]uint)},
		memberships: &fakeMembershipRepo{byUser: make(map[uint][]uint)},
		rules:       &fakeRuleRepo{},
		orgs:        &fakeOrgRepo{orgs: make(map[int64]*character.Organization)},
		alliances:   &fakeAllianceRepo{alliances: make(map[int64]*character.Alliance)},
	}
	f.calc = NewCalculator(f.groups, f.bindings, f.memberships, f.rules, f.orgs, f.alliances, logger.NewNop())
	return f
}

func (f *calcFixture) addManualGroup(t *testing.T, name string) *Group {
	t.Helper()
	g, err := NewGroup(name, "")
	require.NoError(t, err)
	require.NoError(t, f.groups.Create(context.Background(), g))
	return g
}

func (f *calcFixture) addRule(t *testing.T, id uint, scope Scope, template string, nameSource NameSource, stateIDs []uint) *AutoGroupRule {
	t.Helper()
	rule, err := NewAutoGroupRule(scope, template, nameSource, stateIDs)
	require.NoError(t, err)
	require.NoError(t, rule.SetID(id))
	f.rules.rules = append(f.rules.rules, rule)
	return rule
}

func (f *calcFixture) addOrg(t *testing.T, id int64, name, ticker string, allianceID int64) {
	t.Helper()
	org, err := character.NewOrganization(id, name, ticker, allianceID)
	require.NoError(t, err)
	f.orgs.orgs[id] = org
}

func (f *calcFixture) addAlliance(t *testing.T, id int64, name, ticker string) {
	t.Helper()
	a, err := character.NewAlliance(id, name, ticker)
	require.NoError(t, err)
	f.alliances.alliances[id] = a
}

func memberState(t *testing.T, id uint) *authstate.State {
	t.Helper()
	now := time.Now().UTC()
	s, err := authstate.ReconstructState(id, "Member", 100, false, nil, nil, nil, now, now)
	require.NoError(t, err)
	return s
}

func affiliation(orgID, allianceID int64) character.Affiliation {
	return character.Affiliation{OrganizationID: orgID, AllianceID: allianceID}
}

func TestEntitlements_FixedBindingsAndMemberships(t *testing.T) {
	f := newCalcFixture()
	members := f.addManualGroup(t, "Members")
	vip := f.addManualGroup(t, "VIP")
	state := memberState(t, 1)
	require.NoError(t, f.bindings.Bind(context.Background(), state.ID(), members.ID()))
	require.NoError(t, f.memberships.AddMember(context.Background(), vip.ID(), 7))

	ent, err := f.calc.Entitlements(context.Background(), 7, state, affiliation(0, 0))

	require.NoError(t, err)
	assert.Equal(t, []string{"Members", "VIP"}, ent.Desired)
	assert.Empty(t, ent.Stale)
}

func TestEntitlements_OrganizationAutoGroup(t *testing.T) {
	f := newCalcFixture()
	f.addRule(t, 1, ScopeOrganization, "Corp {name}", NameSourceName, nil)
	f.addOrg(t, 2001, "Acme Mining", "ACME", 0)

	ent, err := f.calc.Entitlements(context.Background(), 7, memberState(t, 1), affiliation(2001, 0))

	require.NoError(t, err)
	assert.Equal(t, []string{"Corp Acme Mining"}, ent.Desired)

	created, err := f.groups.GetByName(context.Background(), "Corp Acme Mining")
	require.NoError(t, err)
	assert.Equal(t, SourceAutoOrg, created.Source())
	assert.True(t, created.GeneratedFor(1, 2001))
}

func TestEntitlements_AllianceAutoGroupFromTicker(t *testing.T) {
	f := newCalcFixture()
	f.addRule(t, 1, ScopeAlliance, "[{name}]", NameSourceTicker, nil)
	f.addAlliance(t, 9001, "Northern Bloc", "NB")

	ent, err := f.calc.Entitlements(context.Background(), 7, memberState(t, 1), affiliation(2001, 9001))

	require.NoError(t, err)
	assert.Equal(t, []string{"[NB]"}, ent.Desired)
}

func TestEntitlements_RuleScopedToOtherStateSkipped(t *testing.T) {
	f := newCalcFixture()
	f.addRule(t, 1, ScopeOrganization, "Corp {name}", NameSourceName, []uint{2})
	f.addOrg(t, 2001, "Acme Mining", "ACME", 0)

	ent, err := f.calc.Entitlements(context.Background(), 7, memberState(t, 1), affiliation(2001, 0))

	require.NoError(t, err)
	assert.Empty(t, ent.Desired)
}

func TestEntitlements_NoAffiliationSkipsAutoRules(t *testing.T) {
	f := newCalcFixture()
	f.addRule(t, 1, ScopeOrganization, "Corp {name}", NameSourceName, nil)
	f.addRule(t, 2, ScopeAlliance, "Alliance {name}", NameSourceName, nil)

	ent, err := f.calc.Entitlements(context.Background(), 7, memberState(t, 1), affiliation(0, 0))

	require.NoError(t, err)
	assert.Empty(t, ent.Desired)
}

func TestEntitlements_UnknownOrganizationSkipsRule(t *testing.T) {
	// Affiliation names an organization that is not in local reference data;
	// the rule contributes nothing rather than failing the calculation.
	f := newCalcFixture()
	f.addRule(t, 1, ScopeOrganization, "Corp {name}", NameSourceName, nil)

	ent, err := f.calc.Entitlements(context.Background(), 7, memberState(t, 1), affiliation(2001, 0))

	require.NoError(t, err)
	assert.Empty(t, ent.Desired)
}

func TestEntitlements_LeavingOrganizationMakesOldGroupStale(t *testing.T) {
	f := newCalcFixture()
	f.addRule(t, 1, ScopeOrganization, "Corp {name}", NameSourceName, nil)
	f.addOrg(t, 2001, "Acme Mining", "ACME", 0)
	f.addOrg(t, 2002, "Beta Industries", "BETA", 0)
	state := memberState(t, 1)

	first, err := f.calc.Entitlements(context.Background(), 7, state, affiliation(2001, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"Corp Acme Mining"}, first.Desired)

	second, err := f.calc.Entitlements(context.Background(), 7, state, affiliation(2002, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"Corp Beta Industries"}, second.Desired)
	assert.Equal(t, []string{"Corp Acme Mining"}, second.Stale)
}

func TestEntitlements_DisabledRuleGroupsBecomeStale(t *testing.T) {
	f := newCalcFixture()
	rule := f.addRule(t, 1, ScopeOrganization, "Corp {name}", NameSourceName, nil)
	f.addOrg(t, 2001, "Acme Mining", "ACME", 0)
	state := memberState(t, 1)

	first, err := f.calc.Entitlements(context.Background(), 7, state, affiliation(2001, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"Corp Acme Mining"}, first.Desired)

	rule.Disable()

	second, err := f.calc.Entitlements(context.Background(), 7, state, affiliation(2001, 0))
	require.NoError(t, err)
	assert.Empty(t, second.Desired)
	assert.Equal(t, []string{"Corp Acme Mining"}, second.Stale)
}

func TestCleanupOrphanedGroups_RemovesDisabledRuleGroups(t *testing.T) {
	f := newCalcFixture()
	rule := f.addRule(t, 1, ScopeOrganization, "Corp {name}", NameSourceName, nil)
	f.addOrg(t, 2001, "Acme Mining", "ACME", 0)
	state := memberState(t, 1)

	_, err := f.calc.Entitlements(context.Background(), 7, state, affiliation(2001, 0))
	require.NoError(t, err)

	removed, err := f.calc.CleanupOrphanedGroups(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)

	rule.Disable()

	removed, err = f.calc.CleanupOrphanedGroups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = f.groups.GetByName(context.Background(), "Corp Acme Mining")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestCleanupOrphanedGroups_KeepsGroupWithDirectMembers(t *testing.T) {
	f := newCalcFixture()
	rule := f.addRule(t, 1, ScopeOrganization, "Corp {name}", NameSourceName, nil)
	f.addOrg(t, 2001, "Acme Mining", "ACME", 0)

	_, err := f.calc.Entitlements(context.Background(), 7, memberState(t, 1), affiliation(2001, 0))
	require.NoError(t, err)

	g, err := f.groups.GetByName(context.Background(), "Corp Acme Mining")
	require.NoError(t, err)
	require.NoError(t, f.memberships.AddMember(context.Background(), g.ID(), 7))

	rule.Disable()

	removed, err := f.calc.CleanupOrphanedGroups(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = f.groups.GetByName(context.Background(), "Corp Acme Mining")
	assert.NoError(t, err)
}

func TestEntitlements_NameCollisionSkipsGroupAndKeepsFirstOwner(t *testing.T) {
	// Two organizations whose names template to the same group name must not
	// merge: the first writer keeps the group, the second user skips it.
	f := newCalcFixture()
	rule := f.addRule(t, 1, ScopeOrganization, "Corp {name}", NameSourceName, nil)
	rule.SetSpacePolicy(true, "")
	f.addOrg(t, 2001, "Foo Corp", "FOO", 0)
	f.addOrg(t, 2002, "Foo  Corp", "FOO2", 0)
	state := memberState(t, 1)

	first, err := f.calc.Entitlements(context.Background(), 7, state, affiliation(2001, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"Corp FooCorp"}, first.Desired)

	second, err := f.calc.Entitlements(context.Background(), 8, state, affiliation(2002, 0))
	require.NoError(t, err)
	assert.Empty(t, second.Desired)

	owner, err := f.groups.GetByName(context.Background(), "Corp FooCorp")
	require.NoError(t, err)
	assert.True(t, owner.GeneratedFor(rule.ID(), 2001))
}

func TestEntitlements_RepeatedRunsReuseExistingAutoGroup(t *testing.T) {
	f := newCalcFixture()
	f.addRule(t, 1, ScopeOrganization, "Corp {name}", NameSourceName, nil)
	f.addOrg(t, 2001, "Acme Mining", "ACME", 0)
	state := memberState(t, 1)

	for i := 0; i < 3; i++ {
		ent, err := f.calc.Entitlements(context.Background(), 7, state, affiliation(2001, 0))
		require.NoError(t, err)
		assert.Equal(t, []string{"Corp Acme Mining"}, ent.Desired)
	}
	assert.Len(t, f.groups.byName, 1)
}

func TestEntitlements_DesiredIsSorted(t *testing.T) {
	f := newCalcFixture()
	zulu := f.addManualGroup(t, "Zulu")
	alpha := f.addManualGroup(t, "Alpha")
	state := memberState(t, 1)
	require.NoError(t, f.bindings.Bind(context.Background(), state.ID(), zulu.ID()))
	require.NoError(t, f.bindings.Bind(context.Background(), state.ID(), alpha.ID()))

	ent, err := f.calc.Entitlements(context.Background(), 7, state, affiliation(0, 0))

	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Zulu"}, ent.Desired)
}

func TestAutoGroupRule_GenerateName(t *testing.T) {
	org, err := character.NewOrganization(1, "Acme Mining", "ACME", 0)
	require.NoError(t, err)

	rule, err := NewAutoGroupRule(ScopeOrganization, "Corp {name}", NameSourceName, nil)
	require.NoError(t, err)
	assert.Equal(t, "Corp Acme Mining", rule.GenerateNameForOrganization(org))

	rule.SetSpacePolicy(true, "_")
	assert.Equal(t, "Corp Acme_Mining", rule.GenerateNameForOrganization(org))

	ticker, err := NewAutoGroupRule(ScopeOrganization, "[{name}]", NameSourceTicker, nil)
	require.NoError(t, err)
	assert.Equal(t, "[ACME]", ticker.GenerateNameForOrganization(org))
}

func TestAutoGroupRule_TickerFallsBackToName(t *testing.T) {
	org, err := character.NewOrganization(1, "Acme Mining", "", 0)
	require.NoError(t, err)

	rule, err := NewAutoGroupRule(ScopeOrganization, "[{name}]", NameSourceTicker, nil)
	require.NoError(t, err)
	assert.Equal(t, "[Acme Mining]", rule.GenerateNameForOrganization(org))
}

func TestNewAutoGroupRule_RequiresPlaceholder(t *testing.T) {
	_, err := NewAutoGroupRule(ScopeOrganization, "Corp", NameSourceName, nil)
	assert.Error(t, err)
}
