// Package mappers converts between domain entities and persistence models.
package mappers

import (
	"fmt"

	"aegis/internal/domain/user"
	"aegis/internal/infrastructure/persistence/models"
)

// UserMapper handles the conversion between user entities and persistence
// models.
type UserMapper interface {
	ToEntity(model *models.UserModel) (*user.User, error)
	ToModel(entity *user.User) *models.UserModel
	ToEntities(models []*models.UserModel) ([]*user.User, error)
}

type userMapper struct{}

func NewUserMapper() UserMapper {
	return &userMapper{}
}

func (m *userMapper) ToEntity(model *models.UserModel) (*user.User, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := user.ReconstructUser(
		model.ID,
		model.Email,
		model.Name,
		user.Status(model.Status),
		model.CreatedAt,
		model.UpdatedAt,
		model.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct user entity: %w", err)
	}
	return entity, nil
}

func (m *userMapper) ToModel(entity *user.User) *models.UserModel {
	if entity == nil {
		return nil
	}
	return &models.UserModel{
		ID:        entity.ID(),
		Email:     entity.Email(),
		Name:      entity.Name(),
		Status:    entity.Status().String(),
		Version:   entity.Version(),
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
	}
}

func (m *userMapper) ToEntities(userModels []*models.UserModel) ([]*user.User, error) {
	entities := make([]*user.User, 0, len(userModels))
	for _, model := range userModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// ProfileMapper converts user profiles.
type ProfileMapper interface {
	ToEntity(model *models.ProfileModel) (*user.Profile, error)
	ToModel(entity *user.Profile) *models.ProfileModel
}

type profileMapper struct{}

func NewProfileMapper() ProfileMapper {
	return &profileMapper{}
}

func (m *profileMapper) ToEntity(model *models.ProfileModel) (*user.Profile, error) {
	if model == nil {
		return nil, nil
	}
	entity, err := user.ReconstructProfile(model.ID, model.UserID, model.MainCharacterID, model.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct profile entity: %w", err)
	}
	return entity, nil
}

func (m *profileMapper) ToModel(entity *user.Profile) *models.ProfileModel {
	if entity == nil {
		return nil
	}
	return &models.ProfileModel{
		ID:              entity.ID(),
		UserID:          entity.UserID(),
		MainCharacterID: entity.MainCharacterID(),
		UpdatedAt:       entity.UpdatedAt(),
	}
}
