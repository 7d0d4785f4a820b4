package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"aegis/internal/domain/group"
	"aegis/internal/infrastructure/persistence/models"
)

// GroupMapper converts internal groups.
type GroupMapper interface {
	ToEntity(model *models.GroupModel) (*group.Group, error)
	ToModel(entity *group.Group) *models.GroupModel
	ToEntities(models []*models.GroupModel) ([]*group.Group, error)
}

type groupMapper struct{}

func NewGroupMapper() GroupMapper {
	return &groupMapper{}
}

func (m *groupMapper) ToEntity(model *models.GroupModel) (*group.Group, error) {
	if model == nil {
		return nil, nil
	}
	entity, err := group.ReconstructGroup(
		model.ID,
		model.Name,
		model.Description,
		group.Source(model.Source),
		model.RuleID,
		model.SourceRefID,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct group entity: %w", err)
	}
	return entity, nil
}

func (m *groupMapper) ToModel(entity *group.Group) *models.GroupModel {
	if entity == nil {
		return nil
	}
	return &models.GroupModel{
		ID:          entity.ID(),
		Name:        entity.Name(),
		Description: entity.Description(),
		Source:      string(entity.Source()),
		RuleID:      entity.RuleID(),
		SourceRefID: entity.SourceRefID(),
		CreatedAt:   entity.CreatedAt(),
	}
}

func (m *groupMapper) ToEntities(groupModels []*models.GroupModel) ([]*group.Group, error) {
	entities := make([]*group.Group, 0, len(groupModels))
	for _, model := range groupModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// AutoGroupRuleMapper converts auto-group rules. StateIDs is stored as a
// JSON array of state IDs.
type AutoGroupRuleMapper interface {
	ToEntity(model *models.AutoGroupRuleModel) (*group.AutoGroupRule, error)
	ToModel(entity *group.AutoGroupRule) (*models.AutoGroupRuleModel, error)
	ToEntities(models []*models.AutoGroupRuleModel) ([]*group.AutoGroupRule, error)
}

type autoGroupRuleMapper struct{}

func NewAutoGroupRuleMapper() AutoGroupRuleMapper {
	return &autoGroupRuleMapper{}
}

func (m *autoGroupRuleMapper) ToEntity(model *models.AutoGroupRuleModel) (*group.AutoGroupRule, error) {
	if model == nil {
		return nil, nil
	}

	var stateIDs []uint
	if len(model.StateIDs) > 0 {
		if err := json.Unmarshal(model.StateIDs, &stateIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rule state IDs: %w", err)
		}
	}

	entity, err := group.ReconstructAutoGroupRule(
		model.ID,
		group.Scope(model.Scope),
		model.Template,
		group.NameSource(model.NameSource),
		model.ReplaceSpaces,
		model.SpaceReplacement,
		stateIDs,
		model.Enabled,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct auto group rule: %w", err)
	}
	return entity, nil
}

func (m *autoGroupRuleMapper) ToModel(entity *group.AutoGroupRule) (*models.AutoGroupRuleModel, error) {
	if entity == nil {
		return nil, nil
	}

	stateIDs := entity.StateIDs()
	if stateIDs == nil {
		stateIDs = []uint{}
	}
	raw, err := json.Marshal(stateIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rule state IDs: %w", err)
	}

	return &models.AutoGroupRuleModel{
		ID:               entity.ID(),
		Scope:            string(entity.Scope()),
		Template:         entity.Template(),
		NameSource:       string(entity.NameSource()),
		ReplaceSpaces:    entity.ReplacesSpaces(),
		SpaceReplacement: entity.SpaceReplacement(),
		StateIDs:         datatypes.JSON(raw),
		Enabled:          entity.Enabled(),
		CreatedAt:        entity.CreatedAt(),
		UpdatedAt:        entity.UpdatedAt(),
	}, nil
}

func (m *autoGroupRuleMapper) ToEntities(ruleModels []*models.AutoGroupRuleModel) ([]*group.AutoGroupRule, error) {
	entities := make([]*group.AutoGroupRule, 0, len(ruleModels))
	for _, model := range ruleModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
