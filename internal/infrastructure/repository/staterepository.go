package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aegis/internal/domain/authstate"
	"aegis/internal/infrastructure/persistence/mappers"
	"aegis/internal/infrastructure/persistence/models"
	"aegis/internal/shared/logger"
)

// StateRepository implements authstate.Repository on gorm.
type StateRepository struct {
	db     *gorm.DB
	mapper mappers.StateMapper
	logger logger.Interface
}

func NewStateRepository(db *gorm.DB, log logger.Interface) authstate.Repository {
	return &StateRepository{
		db:     db,
		mapper: mappers.NewStateMapper(),
		logger: log,
	}
}

func (r *StateRepository) Create(ctx context.Context, entity *authstate.State) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map state entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create state", "name", model.Name, "error", err)
		return fmt.Errorf("failed to create state: %w", err)
	}
	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set state ID: %w", err)
	}

	r.logger.Infow("state created", "id", model.ID, "name", model.Name, "priority", model.Priority)
	return nil
}

func (r *StateRepository) Update(ctx context.Context, entity *authstate.State) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map state entity: %w", err)
	}

	if err := r.db.WithContext(ctx).
		Model(&models.StateModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"name":             model.Name,
			"priority":         model.Priority,
			"public":           model.Public,
			"character_ids":    model.CharacterIDs,
			"organization_ids": model.OrganizationIDs,
			"alliance_ids":     model.AllianceIDs,
			"updated_at":       model.UpdatedAt,
		}).Error; err != nil {
		r.logger.Errorw("failed to update state", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update state: %w", err)
	}
	return nil
}

func (r *StateRepository) GetByID(ctx context.Context, id uint) (*authstate.State, error) {
	var model models.StateModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authstate.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *StateRepository) GetByName(ctx context.Context, name string) (*authstate.State, error) {
	var model models.StateModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authstate.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get state by name: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *StateRepository) ListAll(ctx context.Context) ([]*authstate.State, error) {
	var stateModels []*models.StateModel
	if err := r.db.WithContext(ctx).Find(&stateModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	return r.mapper.ToEntities(stateModels)
}

// UserStateRepository implements authstate.UserStateRepository on gorm.
type UserStateRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUserStateRepository(db *gorm.DB, log logger.Interface) authstate.UserStateRepository {
	return &UserStateRepository{db: db, logger: log}
}

func (r *UserStateRepository) GetCurrent(ctx context.Context, userID uint) (*authstate.UserState, error) {
	var model models.UserStateModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authstate.ErrUserStateNotFound
		}
		return nil, fmt.Errorf("failed to get user state: %w", err)
	}
	return &authstate.UserState{
		UserID:    model.UserID,
		StateID:   model.StateID,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

func (r *UserStateRepository) SetCurrent(ctx context.Context, userID, stateID uint) error {
	model := models.UserStateModel{
		UserID:    userID,
		StateID:   stateID,
		UpdatedAt: time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"state_id", "updated_at"}),
		}).
		Create(&model).Error; err != nil {
		r.logger.Errorw("failed to set user state", "user_id", userID, "state_id", stateID, "error", err)
		return fmt.Errorf("failed to set user state: %w", err)
	}
	return nil
}

func (r *UserStateRepository) ListUserIDsByState(ctx context.Context, stateID uint) ([]uint, error) {
	var userIDs []uint
	if err := r.db.WithContext(ctx).
		Model(&models.UserStateModel{}).
		Where("state_id = ?", stateID).
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list users by state: %w", err)
	}
	return userIDs, nil
}
