package authstate

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"aegis/internal/domain/character"
	"aegis/internal/domain/shared/events"
	"aegis/internal/shared/logger"
)

// Resolve picks the authoritative state for an affiliation snapshot: states
// are ordered by priority descending, with equal priorities broken by name
// ascending so the result is a pure function of its inputs. A user with no
// main character falls through to the lowest state, as does one matching
// nothing else (the lowest state is expected to be public).
func Resolve(aff character.Affiliation, states []*State) (*State, error) {
	if len(states) == 0 {
		return nil, ErrNoStatesConfigured
	}

	ordered := make([]*State, len(states))
	copy(ordered, states)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority() != ordered[j].Priority() {
			return ordered[i].Priority() > ordered[j].Priority()
		}
		return ordered[i].Name() < ordered[j].Name()
	})

	if aff.CharacterID != nil {
		for _, s := range ordered {
			if s.Matches(aff) {
				return s, nil
			}
		}
	}

	// No main character, or nothing matched: lowest state wins.
	return ordered[len(ordered)-1], nil
}

// AffiliationSource provides the current affiliation snapshot of a user's
// main character. Implementations fall back to locally cached data when the
// external provider is unavailable.
type AffiliationSource interface {
	MainAffiliation(ctx context.Context, userID uint) (character.Affiliation, error)
}

// Service resolves a user's state and persists the transition when it
// changed. Resolution is always recomputed, never cached: main character
// reassignment, affiliation changes and state rule edits all invalidate the
// previous answer.
type Service struct {
	states       Repository
	userStates   UserStateRepository
	affiliations AffiliationSource
	publisher    events.EventPublisher
	logger       logger.Interface
}

func NewService(
	states Repository,
	userStates UserStateRepository,
	affiliations AffiliationSource,
	publisher events.EventPublisher,
	log logger.Interface,
) *Service {
	return &Service{
		states:       states,
		userStates:   userStates,
		affiliations: affiliations,
		publisher:    publisher,
		logger:       log.Named("authstate"),
	}
}

// ResolveUser computes the user's current state, persists the transition if
// it differs from the recorded one, and emits a state-change event.
func (s *Service) ResolveUser(ctx context.Context, userID uint) (*State, error) {
	aff, err := s.affiliations.MainAffiliation(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load affiliation for user %d: %w", userID, err)
	}

	all, err := s.states.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load states: %w", err)
	}

	resolved, err := Resolve(aff, all)
	if err != nil {
		return nil, err
	}

	previous, err := s.userStates.GetCurrent(ctx, userID)
	if err != nil && !errors.Is(err, ErrUserStateNotFound) {
		return nil, fmt.Errorf("failed to load recorded state: %w", err)
	}

	if previous != nil && previous.StateID == resolved.ID() {
		return resolved, nil
	}

	if err := s.userStates.SetCurrent(ctx, userID, resolved.ID()); err != nil {
		return nil, fmt.Errorf("failed to record state transition: %w", err)
	}

	oldName := ""
	if previous != nil {
		if old, err := s.states.GetByID(ctx, previous.StateID); err == nil {
			oldName = old.Name()
		}
	}

	s.logger.Infow("user state changed",
		"user_id", userID,
		"old_state", oldName,
		"new_state", resolved.Name(),
	)

	if s.publisher != nil {
		_ = s.publisher.Publish(NewStateChangedEvent(userID, oldName, resolved.Name(), resolved.ID()))
	}

	return resolved, nil
}
