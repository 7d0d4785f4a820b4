package character

import "errors"

var (
	ErrCharacterNotFound    = errors.New("character not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrAllianceNotFound     = errors.New("alliance not found")
	ErrOwnershipNotFound    = errors.New("ownership not found")
	ErrWeakerProof          = errors.New("claim proof is weaker than current ownership")
)
