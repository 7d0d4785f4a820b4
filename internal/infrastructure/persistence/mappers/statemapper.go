package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"aegis/internal/domain/authstate"
	"aegis/internal/infrastructure/persistence/models"
)

func idsToJSON(ids []int64) (datatypes.JSON, error) {
	if ids == nil {
		ids = []int64{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ID list: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func jsonToIDs(raw datatypes.JSON) ([]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ID list: %w", err)
	}
	return ids, nil
}

// StateMapper converts authorization state definitions. The allow-lists are
// stored as JSON arrays.
type StateMapper interface {
	ToEntity(model *models.StateModel) (*authstate.State, error)
	ToModel(entity *authstate.State) (*models.StateModel, error)
	ToEntities(models []*models.StateModel) ([]*authstate.State, error)
}

type stateMapper struct{}

func NewStateMapper() StateMapper {
	return &stateMapper{}
}

func (m *stateMapper) ToEntity(model *models.StateModel) (*authstate.State, error) {
	if model == nil {
		return nil, nil
	}

	characterIDs, err := jsonToIDs(model.CharacterIDs)
	if err != nil {
		return nil, err
	}
	organizationIDs, err := jsonToIDs(model.OrganizationIDs)
	if err != nil {
		return nil, err
	}
	allianceIDs, err := jsonToIDs(model.AllianceIDs)
	if err != nil {
		return nil, err
	}

	entity, err := authstate.ReconstructState(
		model.ID,
		model.Name,
		model.Priority,
		model.Public,
		characterIDs,
		organizationIDs,
		allianceIDs,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct state entity: %w", err)
	}
	return entity, nil
}

func (m *stateMapper) ToModel(entity *authstate.State) (*models.StateModel, error) {
	if entity == nil {
		return nil, nil
	}

	characterIDs, err := idsToJSON(entity.CharacterIDs())
	if err != nil {
		return nil, err
	}
	organizationIDs, err := idsToJSON(entity.OrganizationIDs())
	if err != nil {
		return nil, err
	}
	allianceIDs, err := idsToJSON(entity.AllianceIDs())
	if err != nil {
		return nil, err
	}

	return &models.StateModel{
		ID:              entity.ID(),
		Name:            entity.Name(),
		Priority:        entity.Priority(),
		Public:          entity.Public(),
		CharacterIDs:    characterIDs,
		OrganizationIDs: organizationIDs,
		AllianceIDs:     allianceIDs,
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}, nil
}

func (m *stateMapper) ToEntities(stateModels []*models.StateModel) ([]*authstate.State, error) {
	entities := make([]*authstate.State, 0, len(stateModels))
	for _, model := range stateModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
