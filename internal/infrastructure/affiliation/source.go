package affiliation

import (
	"context"
	"errors"
	"fmt"

	"aegis/internal/domain/authstate"
	"aegis/internal/domain/character"
	"aegis/internal/domain/shared/events"
	"aegis/internal/domain/user"
	"aegis/internal/shared/logger"
)

// Source implements authstate.AffiliationSource. It refreshes the main
// character's affiliation from the provider on each call and falls back to
// the locally persisted snapshot when the provider is unavailable, so state
// resolution degrades instead of failing during provider outages.
type Source struct {
	client     *Client
	profiles   user.ProfileRepository
	characters character.Repository
	orgs       character.OrganizationRepository
	alliances  character.AllianceRepository
	publisher  events.EventPublisher
	logger     logger.Interface
}

func NewSource(
	client *Client,
	profiles user.ProfileRepository,
	characters character.Repository,
	orgs character.OrganizationRepository,
	alliances character.AllianceRepository,
	publisher events.EventPublisher,
	log logger.Interface,
) *Source {
	return &Source{
		client:     client,
		profiles:   profiles,
		characters: characters,
		orgs:       orgs,
		alliances:  alliances,
		publisher:  publisher,
		logger:     log.Named("affiliation"),
	}
}

var _ authstate.AffiliationSource = (*Source)(nil)

// MainAffiliation returns the affiliation snapshot of the user's main
// character. A user with no profile or no main character gets a snapshot
// with a nil character ID.
func (s *Source) MainAffiliation(ctx context.Context, userID uint) (character.Affiliation, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrProfileNotFound) {
			return character.Affiliation{}, nil
		}
		return character.Affiliation{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.MainCharacterID() == nil {
		return character.Affiliation{}, nil
	}
	mainID := *profile.MainCharacterID()

	char, err := s.RefreshCharacter(ctx, mainID)
	if err != nil {
		return character.Affiliation{}, err
	}

	return character.Affiliation{
		CharacterID:    &mainID,
		OrganizationID: char.OrganizationID(),
		AllianceID:     char.AllianceID(),
	}, nil
}

// RefreshCharacter pulls the character's current affiliation from the
// provider and persists it, together with organization and alliance
// reference data. When the provider call fails the local record is returned
// unchanged.
func (s *Source) RefreshCharacter(ctx context.Context, characterID int64) (*character.Character, error) {
	local, err := s.characters.GetByCharacterID(ctx, characterID)
	if err != nil && !errors.Is(err, character.ErrCharacterNotFound) {
		return nil, fmt.Errorf("failed to load character %d: %w", characterID, err)
	}

	affs, provErr := s.client.CharacterAffiliations(ctx, []int64{characterID})
	if provErr != nil || len(affs) == 0 {
		if local == nil {
			if provErr == nil {
				provErr = fmt.Errorf("provider returned no affiliation for character %d", characterID)
			}
			return nil, provErr
		}
		s.logger.Warnw("affiliation provider unavailable, using local snapshot",
			"character_id", characterID,
			"error", provErr,
		)
		return local, nil
	}
	remote := affs[0]

	if err := s.refreshReferenceData(ctx, remote.OrganizationID, remote.AllianceID); err != nil {
		s.logger.Warnw("failed to refresh organization reference data",
			"organization_id", remote.OrganizationID,
			"error", err,
		)
	}

	if local == nil {
		name := fmt.Sprintf("character-%d", characterID)
		if info, err := s.client.Character(ctx, characterID); err == nil && info.Name != "" {
			name = info.Name
		}
		created, err := character.NewCharacter(characterID, name, remote.OrganizationID, remote.AllianceID)
		if err != nil {
			return nil, err
		}
		if err := s.characters.Create(ctx, created); err != nil {
			return nil, fmt.Errorf("failed to persist character %d: %w", characterID, err)
		}
		return created, nil
	}

	local.UpdateAffiliation(remote.OrganizationID, remote.AllianceID)
	if len(local.GetEvents()) > 0 {
		if err := s.characters.Update(ctx, local); err != nil {
			return nil, fmt.Errorf("failed to persist character %d: %w", characterID, err)
		}
		if s.publisher != nil {
			for _, event := range local.GetEvents() {
				_ = s.publisher.Publish(event)
			}
		}
		local.ClearEvents()
	}
	return local, nil
}

// refreshReferenceData upserts the organization and alliance records backing
// auto-group name generation.
func (s *Source) refreshReferenceData(ctx context.Context, organizationID, allianceID int64) error {
	if organizationID != 0 {
		info, err := s.client.Organization(ctx, organizationID)
		if err != nil {
			return err
		}
		org, err := character.NewOrganization(info.OrganizationID, info.Name, info.Ticker, info.AllianceID)
		if err != nil {
			return err
		}
		if err := s.orgs.Upsert(ctx, org); err != nil {
			return err
		}
	}

	if allianceID != 0 {
		info, err := s.client.Alliance(ctx, allianceID)
		if err != nil {
			return err
		}
		alliance, err := character.NewAlliance(info.AllianceID, info.Name, info.Ticker)
		if err != nil {
			return err
		}
		if err := s.alliances.Upsert(ctx, alliance); err != nil {
			return err
		}
	}
	return nil
}
