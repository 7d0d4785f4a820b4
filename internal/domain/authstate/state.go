// Package authstate implements authorization states: named tiers with a
// priority and membership predicates over a user's game-world affiliations,
// and the resolver that picks the single authoritative state for a user.
package authstate

import (
	"fmt"
	"strings"
	"time"

	"aegis/internal/domain/character"
)

// State is a named authorization tier. A user matches a state when their main
// character is explicitly listed, their organization is listed, their
// alliance is listed, or the state is public.
type State struct {
	id              uint
	name            string
	priority        int
	public          bool
	characterIDs    []int64
	organizationIDs []int64
	allianceIDs     []int64
	createdAt       time.Time
	updatedAt       time.Time
}

func NewState(name string, priority int, public bool) (*State, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("state name is required")
	}

	now := time.Now().UTC()
	return &State{
		name:      name,
		priority:  priority,
		public:    public,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructState(id uint, name string, priority int, public bool, characterIDs, organizationIDs, allianceIDs []int64, createdAt, updatedAt time.Time) (*State, error) {
	if id == 0 {
		return nil, fmt.Errorf("state ID cannot be zero")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("state name is required")
	}

	return &State{
		id:              id,
		name:            name,
		priority:        priority,
		public:          public,
		characterIDs:    characterIDs,
		organizationIDs: organizationIDs,
		allianceIDs:     allianceIDs,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

func (s *State) ID() uint                 { return s.id }
func (s *State) Name() string             { return s.name }
func (s *State) Priority() int            { return s.priority }
func (s *State) Public() bool             { return s.public }
func (s *State) CharacterIDs() []int64    { return s.characterIDs }
func (s *State) OrganizationIDs() []int64 { return s.organizationIDs }
func (s *State) AllianceIDs() []int64     { return s.allianceIDs }
func (s *State) CreatedAt() time.Time     { return s.createdAt }
func (s *State) UpdatedAt() time.Time     { return s.updatedAt }

// SetID sets the state ID after insert (persistence layer use only).
func (s *State) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("state ID already set")
	}
	s.id = id
	return nil
}

// SetMembership replaces the allow-lists.
func (s *State) SetMembership(characterIDs, organizationIDs, allianceIDs []int64) {
	s.characterIDs = characterIDs
	s.organizationIDs = organizationIDs
	s.allianceIDs = allianceIDs
	s.updatedAt = time.Now().UTC()
}

// Matches tests the state's membership predicates against an affiliation
// snapshot. A zero organization ID (organization unknown locally) means only
// the character allow-list and the public flag can match.
func (s *State) Matches(aff character.Affiliation) bool {
	if s.public {
		return true
	}
	if aff.CharacterID != nil {
		for _, id := range s.characterIDs {
			if id == *aff.CharacterID {
				return true
			}
		}
	}
	if aff.OrganizationID != 0 {
		for _, id := range s.organizationIDs {
			if id == aff.OrganizationID {
				return true
			}
		}
	}
	if aff.AllianceID != 0 {
		for _, id := range s.allianceIDs {
			if id == aff.AllianceID {
				return true
			}
		}
	}
	return false
}
