// Package group implements internal groups, the rules binding them to
// authorization states, organization/alliance auto-group generation, and the
// calculator that derives a user's desired group set.
package group

import (
	"fmt"
	"strings"
	"time"
)

// Source records how a group came to exist. Auto groups carry the generating
// rule and the organization or alliance they were generated for, which is
// what lets stale auto groups be found and stripped later.
type Source string

const (
	SourceManual       Source = "manual"
	SourceAutoOrg      Source = "auto_org"
	SourceAutoAlliance Source = "auto_alliance"
)

func (s Source) IsValid() bool {
	switch s {
	case SourceManual, SourceAutoOrg, SourceAutoAlliance:
		return true
	}
	return false
}

// Group is an internal group that reconciliation mirrors onto remote
// services. Names are unique; the repository enforces uniqueness so two
// organizations whose generated names collide cannot silently merge.
type Group struct {
	id          uint
	name        string
	description string
	source      Source
	ruleID      *uint  // generating auto-group rule, nil for manual groups
	sourceRefID *int64 // organization or alliance the group was generated for
	createdAt   time.Time
}

func NewGroup(name, description string) (*Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("group name is required")
	}
	return &Group{
		name:        name,
		description: description,
		source:      SourceManual,
		createdAt:   time.Now().UTC(),
	}, nil
}

// NewAutoGroup creates a rule-generated group tied to its source
// organization or alliance.
func NewAutoGroup(name string, source Source, ruleID uint, sourceRefID int64) (*Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("group name is required")
	}
	if source != SourceAutoOrg && source != SourceAutoAlliance {
		return nil, fmt.Errorf("invalid auto group source: %s", source)
	}
	if ruleID == 0 {
		return nil, fmt.Errorf("rule ID is required")
	}
	if sourceRefID == 0 {
		return nil, fmt.Errorf("source reference ID is required")
	}

	return &Group{
		name:        name,
		source:      source,
		ruleID:      &ruleID,
		sourceRefID: &sourceRefID,
		createdAt:   time.Now().UTC(),
	}, nil
}

func ReconstructGroup(id uint, name, description string, source Source, ruleID *uint, sourceRefID *int64, createdAt time.Time) (*Group, error) {
	if id == 0 {
		return nil, fmt.Errorf("group ID cannot be zero")
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("invalid group source: %s", source)
	}
	return &Group{
		id:          id,
		name:        name,
		description: description,
		source:      source,
		ruleID:      ruleID,
		sourceRefID: sourceRefID,
		createdAt:   createdAt,
	}, nil
}

func (g *Group) ID() uint             { return g.id }
func (g *Group) Name() string         { return g.name }
func (g *Group) Description() string  { return g.description }
func (g *Group) Source() Source       { return g.source }
func (g *Group) RuleID() *uint        { return g.ruleID }
func (g *Group) SourceRefID() *int64  { return g.sourceRefID }
func (g *Group) CreatedAt() time.Time { return g.createdAt }

// IsAuto reports whether the group was generated by an auto-group rule.
func (g *Group) IsAuto() bool { return g.ruleID != nil }

// SetID sets the group ID after insert (persistence layer use only).
func (g *Group) SetID(id uint) error {
	if g.id != 0 {
		return fmt.Errorf("group ID already set")
	}
	g.id = id
	return nil
}

// GeneratedFor reports whether this auto group belongs to the given rule and
// source organization/alliance.
func (g *Group) GeneratedFor(ruleID uint, sourceRefID int64) bool {
	return g.ruleID != nil && *g.ruleID == ruleID &&
		g.sourceRefID != nil && *g.sourceRefID == sourceRefID
}
