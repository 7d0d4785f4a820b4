package authstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/domain/character"
)

func mustState(t *testing.T, id uint, name string, priority int, public bool, chars, orgs, alliances []int64) *State {
	t.Helper()
	now := time.Now().UTC()
	s, err := ReconstructState(id, name, priority, public, chars, orgs, alliances, now, now)
	require.NoError(t, err)
	return s
}

func affiliation(characterID, orgID, allianceID int64) character.Affiliation {
	return character.Affiliation{
		CharacterID:    &characterID,
		OrganizationID: orgID,
		AllianceID:     allianceID,
	}
}

func TestResolve_HighestPriorityMatchWins(t *testing.T) {
	states := []*State{
		mustState(t, 1, "Guest", 0, true, nil, nil, nil),
		mustState(t, 2, "Member", 100, false, nil, []int64{2001}, nil),
		mustState(t, 3, "Blue", 50, false, nil, []int64{2001}, nil),
	}

	resolved, err := Resolve(affiliation(1, 2001, 0), states)

	require.NoError(t, err)
	assert.Equal(t, "Member", resolved.Name())
}

func TestResolve_AllianceMembershipMatches(t *testing.T) {
	states := []*State{
		mustState(t, 1, "Guest", 0, true, nil, nil, nil),
		mustState(t, 2, "Blue", 50, false, nil, nil, []int64{3001}),
	}

	resolved, err := Resolve(affiliation(1, 2099, 3001), states)

	require.NoError(t, err)
	assert.Equal(t, "Blue", resolved.Name())
}

func TestResolve_CharacterAllowListMatches(t *testing.T) {
	states := []*State{
		mustState(t, 1, "Guest", 0, true, nil, nil, nil),
		mustState(t, 2, "VIP", 200, false, []int64{42}, nil, nil),
	}

	resolved, err := Resolve(affiliation(42, 0, 0), states)

	require.NoError(t, err)
	assert.Equal(t, "VIP", resolved.Name())
}

func TestResolve_NoMainCharacterFallsToLowest(t *testing.T) {
	states := []*State{
		mustState(t, 1, "Guest", 0, true, nil, nil, nil),
		mustState(t, 2, "Member", 100, true, nil, nil, nil),
	}

	resolved, err := Resolve(character.Affiliation{}, states)

	require.NoError(t, err)
	assert.Equal(t, "Guest", resolved.Name())
}

func TestResolve_UnknownOrganizationOnlyCharacterAndPublicMatch(t *testing.T) {
	// OrganizationID zero means the org record is missing locally; org and
	// alliance allow-lists must not fire.
	states := []*State{
		mustState(t, 1, "Guest", 0, true, nil, nil, nil),
		mustState(t, 2, "Member", 100, false, nil, []int64{0}, []int64{0}),
	}

	resolved, err := Resolve(affiliation(7, 0, 0), states)

	require.NoError(t, err)
	assert.Equal(t, "Guest", resolved.Name())
}

func TestResolve_EqualPriorityBreaksTieByName(t *testing.T) {
	states := []*State{
		mustState(t, 2, "Bravo", 100, false, nil, []int64{2001}, nil),
		mustState(t, 3, "Alpha", 100, false, nil, []int64{2001}, nil),
		mustState(t, 1, "Guest", 0, true, nil, nil, nil),
	}

	resolved, err := Resolve(affiliation(1, 2001, 0), states)

	require.NoError(t, err)
	assert.Equal(t, "Alpha", resolved.Name())
}

func TestResolve_IsDeterministic(t *testing.T) {
	states := []*State{
		mustState(t, 1, "Guest", 0, true, nil, nil, nil),
		mustState(t, 2, "Member", 100, false, nil, []int64{2001}, nil),
		mustState(t, 3, "Blue", 100, false, nil, []int64{2001}, nil),
	}
	aff := affiliation(1, 2001, 3001)

	first, err := Resolve(aff, states)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := Resolve(aff, states)
		require.NoError(t, err)
		assert.Equal(t, first.Name(), again.Name())
	}
}

func TestResolve_OrganizationChangeDropsToPublicState(t *testing.T) {
	// Main character moves from corp A (allow-listed) to corp B (unlisted):
	// resolution must return the public default state.
	states := []*State{
		mustState(t, 1, "Guest", 0, true, nil, nil, nil),
		mustState(t, 2, "Member", 100, false, nil, []int64{2001}, nil),
	}

	before, err := Resolve(affiliation(1, 2001, 0), states)
	require.NoError(t, err)
	assert.Equal(t, "Member", before.Name())

	after, err := Resolve(affiliation(1, 2002, 0), states)
	require.NoError(t, err)
	assert.Equal(t, "Guest", after.Name())
}

func TestResolve_NoStatesConfigured(t *testing.T) {
	_, err := Resolve(character.Affiliation{}, nil)
	assert.ErrorIs(t, err, ErrNoStatesConfigured)
}
