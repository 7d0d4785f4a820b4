package mappers

import (
	"fmt"

	"aegis/internal/domain/character"
	"aegis/internal/infrastructure/persistence/models"
)

// CharacterMapper converts characters, ownerships and the organization and
// alliance reference data.
type CharacterMapper interface {
	ToEntity(model *models.CharacterModel) (*character.Character, error)
	ToModel(entity *character.Character) *models.CharacterModel
	ToEntities(models []*models.CharacterModel) ([]*character.Character, error)
}

type characterMapper struct{}

func NewCharacterMapper() CharacterMapper {
	return &characterMapper{}
}

func (m *characterMapper) ToEntity(model *models.CharacterModel) (*character.Character, error) {
	if model == nil {
		return nil, nil
	}
	entity, err := character.ReconstructCharacter(
		model.ID,
		model.CharacterID,
		model.Name,
		model.OrganizationID,
		model.AllianceID,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct character entity: %w", err)
	}
	return entity, nil
}

func (m *characterMapper) ToModel(entity *character.Character) *models.CharacterModel {
	if entity == nil {
		return nil
	}
	return &models.CharacterModel{
		ID:             entity.ID(),
		CharacterID:    entity.CharacterID(),
		Name:           entity.Name(),
		OrganizationID: entity.OrganizationID(),
		AllianceID:     entity.AllianceID(),
		UpdatedAt:      entity.UpdatedAt(),
	}
}

func (m *characterMapper) ToEntities(characterModels []*models.CharacterModel) ([]*character.Character, error) {
	entities := make([]*character.Character, 0, len(characterModels))
	for _, model := range characterModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// OwnershipMapper converts ownership history rows.
type OwnershipMapper interface {
	ToEntity(model *models.OwnershipModel) (*character.Ownership, error)
	ToModel(entity *character.Ownership) *models.OwnershipModel
	ToEntities(models []*models.OwnershipModel) ([]*character.Ownership, error)
}

type ownershipMapper struct{}

func NewOwnershipMapper() OwnershipMapper {
	return &ownershipMapper{}
}

func (m *ownershipMapper) ToEntity(model *models.OwnershipModel) (*character.Ownership, error) {
	if model == nil {
		return nil, nil
	}
	entity, err := character.ReconstructOwnership(
		model.ID,
		model.CharacterID,
		model.UserID,
		character.OwnershipProof(model.Proof),
		model.CreatedAt,
		model.SupersededAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct ownership entity: %w", err)
	}
	return entity, nil
}

func (m *ownershipMapper) ToModel(entity *character.Ownership) *models.OwnershipModel {
	if entity == nil {
		return nil
	}
	return &models.OwnershipModel{
		ID:           entity.ID(),
		CharacterID:  entity.CharacterID(),
		UserID:       entity.UserID(),
		Proof:        string(entity.Proof()),
		CreatedAt:    entity.CreatedAt(),
		SupersededAt: entity.SupersededAt(),
	}
}

func (m *ownershipMapper) ToEntities(ownershipModels []*models.OwnershipModel) ([]*character.Ownership, error) {
	entities := make([]*character.Ownership, 0, len(ownershipModels))
	for _, model := range ownershipModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// OrganizationMapper converts organization reference data.
type OrganizationMapper interface {
	ToEntity(model *models.OrganizationModel) (*character.Organization, error)
	ToModel(entity *character.Organization) *models.OrganizationModel
}

type organizationMapper struct{}

func NewOrganizationMapper() OrganizationMapper {
	return &organizationMapper{}
}

func (m *organizationMapper) ToEntity(model *models.OrganizationModel) (*character.Organization, error) {
	if model == nil {
		return nil, nil
	}
	return character.ReconstructOrganization(
		model.OrganizationID,
		model.Name,
		model.Ticker,
		model.AllianceID,
		model.UpdatedAt,
	)
}

func (m *organizationMapper) ToModel(entity *character.Organization) *models.OrganizationModel {
	if entity == nil {
		return nil
	}
	return &models.OrganizationModel{
		OrganizationID: entity.OrganizationID(),
		Name:           entity.Name(),
		Ticker:         entity.Ticker(),
		AllianceID:     entity.AllianceID(),
		UpdatedAt:      entity.UpdatedAt(),
	}
}

// AllianceMapper converts alliance reference data.
type AllianceMapper interface {
	ToEntity(model *models.AllianceModel) (*character.Alliance, error)
	ToModel(entity *character.Alliance) *models.AllianceModel
}

type allianceMapper struct{}

func NewAllianceMapper() AllianceMapper {
	return &allianceMapper{}
}

func (m *allianceMapper) ToEntity(model *models.AllianceModel) (*character.Alliance, error) {
	if model == nil {
		return nil, nil
	}
	return character.ReconstructAlliance(model.AllianceID, model.Name, model.Ticker, model.UpdatedAt)
}

func (m *allianceMapper) ToModel(entity *character.Alliance) *models.AllianceModel {
	if entity == nil {
		return nil
	}
	return &models.AllianceModel{
		AllianceID: entity.AllianceID(),
		Name:       entity.Name(),
		Ticker:     entity.Ticker(),
		UpdatedAt:  entity.UpdatedAt(),
	}
}
