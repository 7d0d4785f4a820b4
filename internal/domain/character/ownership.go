package character

import (
	"fmt"
	"time"
)

// OwnershipProof ranks how a user proved control of a character. A stronger
// proof supersedes a weaker one and transfers ownership; ownership history is
// never deleted, a superseded row is only closed out.
type OwnershipProof string

const (
	ProofManual OwnershipProof = "manual" // operator-assigned
	ProofToken  OwnershipProof = "token"  // legacy API token
	ProofSSO    OwnershipProof = "sso"    // interactive single sign-on
)

func (p OwnershipProof) IsValid() bool {
	switch p {
	case ProofManual, ProofToken, ProofSSO:
		return true
	}
	return false
}

// Rank orders proofs by strength.
func (p OwnershipProof) Rank() int {
	switch p {
	case ProofSSO:
		return 3
	case ProofToken:
		return 2
	case ProofManual:
		return 1
	}
	return 0
}

// Ownership ties a character to a user for a period of time. At most one
// ownership row per character is open (supersededAt == nil) at any moment.
type Ownership struct {
	id           uint
	characterID  int64
	userID       uint
	proof        OwnershipProof
	createdAt    time.Time
	supersededAt *time.Time
}

func NewOwnership(characterID int64, userID uint, proof OwnershipProof) (*Ownership, error) {
	if characterID == 0 {
		return nil, fmt.Errorf("character ID is required")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if !proof.IsValid() {
		return nil, fmt.Errorf("invalid ownership proof: %s", proof)
	}

	return &Ownership{
		characterID: characterID,
		userID:      userID,
		proof:       proof,
		createdAt:   time.Now().UTC(),
	}, nil
}

func ReconstructOwnership(id uint, characterID int64, userID uint, proof OwnershipProof, createdAt time.Time, supersededAt *time.Time) (*Ownership, error) {
	if id == 0 {
		return nil, fmt.Errorf("ownership ID cannot be zero")
	}
	if !proof.IsValid() {
		return nil, fmt.Errorf("invalid ownership proof: %s", proof)
	}

	return &Ownership{
		id:           id,
		characterID:  characterID,
		userID:       userID,
		proof:        proof,
		createdAt:    createdAt,
		supersededAt: supersededAt,
	}, nil
}

func (o *Ownership) ID() uint                 { return o.id }
func (o *Ownership) CharacterID() int64       { return o.characterID }
func (o *Ownership) UserID() uint             { return o.userID }
func (o *Ownership) Proof() OwnershipProof    { return o.proof }
func (o *Ownership) CreatedAt() time.Time     { return o.createdAt }
func (o *Ownership) SupersededAt() *time.Time { return o.supersededAt }

// IsActive reports whether this row is the character's current ownership.
func (o *Ownership) IsActive() bool {
	return o.supersededAt == nil
}

// SetID sets the record ID after insert (persistence layer use only).
func (o *Ownership) SetID(id uint) error {
	if o.id != 0 {
		return fmt.Errorf("ownership ID already set")
	}
	o.id = id
	return nil
}

// CanBeSupersededBy reports whether a claim with the given proof may take
// ownership away from this row. Equal strength wins: a fresh SSO login by
// another account supersedes an older SSO claim.
func (o *Ownership) CanBeSupersededBy(proof OwnershipProof) bool {
	return o.IsActive() && proof.Rank() >= o.proof.Rank()
}

// Supersede closes this ownership row.
func (o *Ownership) Supersede() error {
	if !o.IsActive() {
		return fmt.Errorf("ownership already superseded")
	}
	now := time.Now().UTC()
	o.supersededAt = &now
	return nil
}
