// Package repository contains the gorm implementations of the domain
// repository interfaces.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"aegis/internal/domain/user"
	"aegis/internal/infrastructure/persistence/mappers"
	"aegis/internal/infrastructure/persistence/models"
	"aegis/internal/shared/constants"
	"aegis/internal/shared/logger"
)

// allowedUserOrderByFields is the whitelist of ORDER BY fields, preventing
// SQL injection through the list filter.
var allowedUserOrderByFields = map[string]bool{
	"id":         true,
	"email":      true,
	"name":       true,
	"status":     true,
	"created_at": true,
	"updated_at": true,
}

// UserRepository implements user.Repository on gorm.
type UserRepository struct {
	db     *gorm.DB
	mapper mappers.UserMapper
	logger logger.Interface
}

func NewUserRepository(db *gorm.DB, log logger.Interface) user.Repository {
	return &UserRepository{
		db:     db,
		mapper: mappers.NewUserMapper(),
		logger: log,
	}
}

func (r *UserRepository) Create(ctx context.Context, entity *user.User) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create user", "email", model.Email, "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set user ID: %w", err)
	}

	r.logger.Infow("user created", "id", model.ID, "email", model.Email)
	return nil
}

func (r *UserRepository) Update(ctx context.Context, entity *user.User) error {
	model := r.mapper.ToModel(entity)

	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]any{
			"email":   model.Email,
			"name":    model.Name,
			"status":  model.Status,
			"version": model.Version,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update user", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %d modified concurrently", model.ID)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *UserRepository) List(ctx context.Context, filter user.ListFilter) ([]*user.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.UserModel{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	orderBy := "id"
	if filter.OrderBy != "" && allowedUserOrderByFields[filter.OrderBy] {
		orderBy = filter.OrderBy
	}
	order := "asc"
	if filter.Order == "desc" {
		order = "desc"
	}

	page := filter.Page
	if page < 1 {
		page = constants.DefaultPage
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > constants.MaxPageSize {
		pageSize = constants.DefaultPageSize
	}

	var userModels []*models.UserModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, order)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&userModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	entities, err := r.mapper.ToEntities(userModels)
	if err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}

// ProfileRepository implements user.ProfileRepository on gorm.
type ProfileRepository struct {
	db     *gorm.DB
	mapper mappers.ProfileMapper
	logger logger.Interface
}

func NewProfileRepository(db *gorm.DB, log logger.Interface) user.ProfileRepository {
	return &ProfileRepository{
		db:     db,
		mapper: mappers.NewProfileMapper(),
		logger: log,
	}
}

func (r *ProfileRepository) Create(ctx context.Context, entity *user.Profile) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create profile", "user_id", model.UserID, "error", err)
		return fmt.Errorf("failed to create profile: %w", err)
	}
	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set profile ID: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Update(ctx context.Context, entity *user.Profile) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).
		Model(&models.ProfileModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"main_character_id": model.MainCharacterID,
			"updated_at":        model.UpdatedAt,
		}).Error; err != nil {
		r.logger.Errorw("failed to update profile", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uint) (*user.Profile, error) {
	var model models.ProfileModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return r.mapper.ToEntity(&model)
}
