package group

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"aegis/internal/domain/authstate"
	"aegis/internal/domain/character"
	"aegis/internal/shared/logger"
)

// Entitlements is the outcome of one calculation: the groups the user is
// entitled to right now, and previously generated auto groups that are no
// longer theirs and must be stripped from remote services.
type Entitlements struct {
	Desired []string
	Stale   []string
}

// Contains reports whether name is in the desired set.
func (e *Entitlements) Contains(name string) bool {
	for _, n := range e.Desired {
		if n == name {
			return true
		}
	}
	return false
}

// Calculator derives a user's desired group set from their resolved state:
// fixed groups bound to the state, direct group memberships, and the current
// organization/alliance auto groups. It also computes the negative set by
// walking every group each rule has ever generated.
type Calculator struct {
	groups      Repository
	bindings    BindingRepository
	memberships MembershipRepository
	rules       AutoGroupRuleRepository
	orgs        character.OrganizationRepository
	alliances   character.AllianceRepository
	logger      logger.Interface
}

func NewCalculator(
	groups Repository,
	bindings BindingRepository,
	memberships MembershipRepository,
	rules AutoGroupRuleRepository,
	orgs character.OrganizationRepository,
	alliances character.AllianceRepository,
	log logger.Interface,
) *Calculator {
	return &Calculator{
		groups:      groups,
		bindings:    bindings,
		memberships: memberships,
		rules:       rules,
		orgs:        orgs,
		alliances:   alliances,
		logger:      log.Named("entitlements"),
	}
}

// Entitlements computes the desired and stale group sets for one user.
func (c *Calculator) Entitlements(ctx context.Context, userID uint, state *authstate.State, aff character.Affiliation) (*Entitlements, error) {
	desired := make(map[string]struct{})

	fixedIDs, err := c.bindings.ListGroupIDsByState(ctx, state.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list state group bindings: %w", err)
	}
	memberIDs, err := c.memberships.ListGroupIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group memberships: %w", err)
	}

	fixed, err := c.groups.ListByIDs(ctx, append(fixedIDs, memberIDs...))
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	for _, g := range fixed {
		desired[g.Name()] = struct{}{}
	}

	rules, err := c.rules.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto group rules: %w", err)
	}

	for _, rule := range rules {
		if !rule.Enabled() || !rule.AppliesTo(state.ID()) {
			continue
		}
		name, refID, err := c.currentAutoGroup(ctx, rule, aff)
		if err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}
		if err := c.ensureAutoGroup(ctx, rule, name, refID); err != nil {
			if errors.Is(err, ErrNameTaken) {
				// Two different organizations generated the same name; the
				// first writer keeps it and this user does not get the group.
				c.logger.Warnw("auto group name collision",
					"rule_id", rule.ID(),
					"name", name,
					"source_ref_id", refID,
				)
				continue
			}
			return nil, err
		}
		desired[name] = struct{}{}
	}

	stale, err := c.staleGroups(ctx, rules, desired)
	if err != nil {
		return nil, err
	}

	return &Entitlements{Desired: sortedKeys(desired), Stale: stale}, nil
}

// currentAutoGroup resolves the group name a rule generates for the user's
// current affiliation. Empty name means the rule does not apply (no
// organization, no parent alliance, or reference data missing locally).
func (c *Calculator) currentAutoGroup(ctx context.Context, rule *AutoGroupRule, aff character.Affiliation) (string, int64, error) {
	switch rule.Scope() {
	case ScopeOrganization:
		if aff.OrganizationID == 0 {
			return "", 0, nil
		}
		org, err := c.orgs.GetByOrganizationID(ctx, aff.OrganizationID)
		if err != nil {
			if errors.Is(err, character.ErrOrganizationNotFound) {
				return "", 0, nil
			}
			return "", 0, fmt.Errorf("failed to load organization %d: %w", aff.OrganizationID, err)
		}
		return rule.GenerateNameForOrganization(org), aff.OrganizationID, nil

	case ScopeAlliance:
		if aff.AllianceID == 0 {
			return "", 0, nil
		}
		alliance, err := c.alliances.GetByAllianceID(ctx, aff.AllianceID)
		if err != nil {
			if errors.Is(err, character.ErrAllianceNotFound) {
				return "", 0, nil
			}
			return "", 0, fmt.Errorf("failed to load alliance %d: %w", aff.AllianceID, err)
		}
		return rule.GenerateNameForAlliance(alliance), aff.AllianceID, nil
	}
	return "", 0, nil
}

// ensureAutoGroup creates the group record on first use and verifies that an
// existing record with this name belongs to the same rule and source.
func (c *Calculator) ensureAutoGroup(ctx context.Context, rule *AutoGroupRule, name string, refID int64) error {
	existing, err := c.groups.GetByName(ctx, name)
	if err != nil && !errors.Is(err, ErrGroupNotFound) {
		return fmt.Errorf("failed to look up group %q: %w", name, err)
	}
	if existing != nil {
		if !existing.GeneratedFor(rule.ID(), refID) {
			return ErrNameTaken
		}
		return nil
	}

	source := SourceAutoOrg
	if rule.Scope() == ScopeAlliance {
		source = SourceAutoAlliance
	}
	g, err := NewAutoGroup(name, source, rule.ID(), refID)
	if err != nil {
		return err
	}
	if err := c.groups.Create(ctx, g); err != nil {
		return fmt.Errorf("failed to create auto group %q: %w", name, err)
	}
	c.logger.Infow("auto group created", "name", name, "rule_id", rule.ID(), "source_ref_id", refID)
	return nil
}

// CleanupOrphanedGroups deletes managed group records whose generating rule
// has been disabled. Remote copies are stripped by each user's regular diff;
// this removes the local record once nothing references it. A group that
// still has direct members is kept and reported. Returns the number of
// groups deleted.
func (c *Calculator) CleanupOrphanedGroups(ctx context.Context) (int, error) {
	rules, err := c.rules.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list auto group rules: %w", err)
	}

	deleted := 0
	for _, rule := range rules {
		if rule.Enabled() {
			continue
		}
		managed, err := c.groups.ListByRule(ctx, rule.ID())
		if err != nil {
			return deleted, fmt.Errorf("failed to list groups for rule %d: %w", rule.ID(), err)
		}
		for _, g := range managed {
			members, err := c.memberships.ListUserIDsByGroup(ctx, g.ID())
			if err != nil {
				return deleted, fmt.Errorf("failed to list members of group %q: %w", g.Name(), err)
			}
			if len(members) > 0 {
				c.logger.Warnw("orphaned auto group still has direct members, keeping",
					"name", g.Name(),
					"rule_id", rule.ID(),
					"members", len(members),
				)
				continue
			}
			if err := c.groups.Delete(ctx, g.ID()); err != nil {
				return deleted, fmt.Errorf("failed to delete group %q: %w", g.Name(), err)
			}
			c.logger.Infow("orphaned auto group removed", "name", g.Name(), "rule_id", rule.ID())
			deleted++
		}
	}
	return deleted, nil
}

// staleGroups walks every group each rule has ever generated and returns the
// ones not in the desired set. Disabled rules are included so their groups
// get torn down.
func (c *Calculator) staleGroups(ctx context.Context, rules []*AutoGroupRule, desired map[string]struct{}) ([]string, error) {
	seen := make(map[string]struct{})
	for _, rule := range rules {
		managed, err := c.groups.ListByRule(ctx, rule.ID())
		if err != nil {
			return nil, fmt.Errorf("failed to list groups for rule %d: %w", rule.ID(), err)
		}
		for _, g := range managed {
			if _, ok := desired[g.Name()]; !ok {
				seen[g.Name()] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
