package group

import (
	"fmt"
	"strings"
	"time"

	"aegis/internal/domain/character"
	"aegis/internal/shared/groupname"
)

// Scope selects whether an auto-group rule generates one group per
// organization or per alliance.
type Scope string

const (
	ScopeOrganization Scope = "organization"
	ScopeAlliance     Scope = "alliance"
)

func (s Scope) IsValid() bool {
	return s == ScopeOrganization || s == ScopeAlliance
}

// NameSource selects which field of the organization/alliance feeds the name
// template.
type NameSource string

const (
	NameSourceName   NameSource = "name"
	NameSourceTicker NameSource = "ticker"
)

func (n NameSource) IsValid() bool {
	return n == NameSourceName || n == NameSourceTicker
}

// AutoGroupRule generates one internal group per organization or alliance
// for users in the states it applies to. Every group it has ever generated
// stays attributed to it (Group.RuleID), so disabling the rule or leaving an
// organization surfaces those groups as stale for removal.
type AutoGroupRule struct {
	id               uint
	scope            Scope
	template         string // must contain the {name} placeholder
	nameSource       NameSource
	replaceSpaces    bool
	spaceReplacement string // empty deletes whitespace
	stateIDs         []uint // empty applies to every state
	enabled          bool
	createdAt        time.Time
	updatedAt        time.Time
}

const namePlaceholder = "{name}"

func NewAutoGroupRule(scope Scope, template string, nameSource NameSource, stateIDs []uint) (*AutoGroupRule, error) {
	if !scope.IsValid() {
		return nil, fmt.Errorf("invalid auto group scope: %s", scope)
	}
	if !strings.Contains(template, namePlaceholder) {
		return nil, fmt.Errorf("template must contain %s", namePlaceholder)
	}
	if !nameSource.IsValid() {
		return nil, fmt.Errorf("invalid name source: %s", nameSource)
	}

	now := time.Now().UTC()
	return &AutoGroupRule{
		scope:      scope,
		template:   template,
		nameSource: nameSource,
		stateIDs:   stateIDs,
		enabled:    true,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

func ReconstructAutoGroupRule(id uint, scope Scope, template string, nameSource NameSource, replaceSpaces bool, spaceReplacement string, stateIDs []uint, enabled bool, createdAt, updatedAt time.Time) (*AutoGroupRule, error) {
	if id == 0 {
		return nil, fmt.Errorf("rule ID cannot be zero")
	}
	if !scope.IsValid() {
		return nil, fmt.Errorf("invalid auto group scope: %s", scope)
	}
	if !nameSource.IsValid() {
		return nil, fmt.Errorf("invalid name source: %s", nameSource)
	}

	return &AutoGroupRule{
		id:               id,
		scope:            scope,
		template:         template,
		nameSource:       nameSource,
		replaceSpaces:    replaceSpaces,
		spaceReplacement: spaceReplacement,
		stateIDs:         stateIDs,
		enabled:          enabled,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}, nil
}

func (r *AutoGroupRule) ID() uint                 { return r.id }
func (r *AutoGroupRule) Scope() Scope             { return r.scope }
func (r *AutoGroupRule) Template() string         { return r.template }
func (r *AutoGroupRule) NameSource() NameSource   { return r.nameSource }
func (r *AutoGroupRule) ReplacesSpaces() bool     { return r.replaceSpaces }
func (r *AutoGroupRule) SpaceReplacement() string { return r.spaceReplacement }
func (r *AutoGroupRule) StateIDs() []uint         { return r.stateIDs }
func (r *AutoGroupRule) Enabled() bool            { return r.enabled }
func (r *AutoGroupRule) CreatedAt() time.Time     { return r.createdAt }
func (r *AutoGroupRule) UpdatedAt() time.Time     { return r.updatedAt }

// SetID sets the rule ID after insert (persistence layer use only).
func (r *AutoGroupRule) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("rule ID already set")
	}
	r.id = id
	return nil
}

// SetSpacePolicy configures whitespace handling in generated names.
func (r *AutoGroupRule) SetSpacePolicy(replace bool, replacement string) {
	r.replaceSpaces = replace
	r.spaceReplacement = replacement
	r.updatedAt = time.Now().UTC()
}

// Disable stops the rule from contributing to desired sets. Its managed
// groups become stale on the next entitlement calculation.
func (r *AutoGroupRule) Disable() {
	r.enabled = false
	r.updatedAt = time.Now().UTC()
}

// Enable re-enables a disabled rule.
func (r *AutoGroupRule) Enable() {
	r.enabled = true
	r.updatedAt = time.Now().UTC()
}

// AppliesTo reports whether the rule generates groups for the given state.
// An empty state list means the rule applies to every state.
func (r *AutoGroupRule) AppliesTo(stateID uint) bool {
	if len(r.stateIDs) == 0 {
		return true
	}
	for _, id := range r.stateIDs {
		if id == stateID {
			return true
		}
	}
	return false
}

// GenerateNameForOrganization applies the template to an organization.
func (r *AutoGroupRule) GenerateNameForOrganization(org *character.Organization) string {
	return r.generateName(org.Name(), org.Ticker())
}

// GenerateNameForAlliance applies the template to an alliance.
func (r *AutoGroupRule) GenerateNameForAlliance(a *character.Alliance) string {
	return r.generateName(a.Name(), a.Ticker())
}

func (r *AutoGroupRule) generateName(name, ticker string) string {
	value := name
	if r.nameSource == NameSourceTicker && ticker != "" {
		value = ticker
	}
	if r.replaceSpaces {
		value = groupname.ReplaceSpaces(value, r.spaceReplacement)
	}
	return strings.ReplaceAll(r.template, namePlaceholder, value)
}
