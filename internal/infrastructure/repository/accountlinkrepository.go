package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"aegis/internal/domain/sync"
	"aegis/internal/infrastructure/persistence/mappers"
	"aegis/internal/infrastructure/persistence/models"
	"aegis/internal/shared/logger"
)

// AccountLinkRepository implements sync.LinkRepository on gorm.
type AccountLinkRepository struct {
	db     *gorm.DB
	mapper mappers.AccountLinkMapper
	logger logger.Interface
}

func NewAccountLinkRepository(db *gorm.DB, log logger.Interface) sync.LinkRepository {
	return &AccountLinkRepository{
		db:     db,
		mapper: mappers.NewAccountLinkMapper(),
		logger: log,
	}
}

func (r *AccountLinkRepository) Create(ctx context.Context, entity *sync.AccountLink) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create account link", "user_id", model.UserID, "service", model.Service, "error", err)
		return fmt.Errorf("failed to create account link: %w", err)
	}
	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set link ID: %w", err)
	}

	r.logger.Infow("account link created", "id", model.ID, "user_id", model.UserID, "service", model.Service)
	return nil
}

func (r *AccountLinkRepository) Update(ctx context.Context, entity *sync.AccountLink) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).
		Model(&models.AccountLinkModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"remote_id":      model.RemoteID,
			"remote_name":    model.RemoteName,
			"status":         model.Status,
			"fail_count":     model.FailCount,
			"last_synced_at": model.LastSyncedAt,
		}).Error; err != nil {
		r.logger.Errorw("failed to update account link", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update account link: %w", err)
	}
	return nil
}

func (r *AccountLinkRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.AccountLinkModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete account link", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete account link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return sync.ErrLinkNotFound
	}

	r.logger.Infow("account link deleted", "id", id)
	return nil
}

func (r *AccountLinkRepository) GetByUserAndService(ctx context.Context, userID uint, service string) (*sync.AccountLink, error) {
	var model models.AccountLinkModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND service = ?", userID, service).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get account link: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *AccountLinkRepository) ListByUser(ctx context.Context, userID uint) ([]*sync.AccountLink, error) {
	var linkModels []*models.AccountLinkModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&linkModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list account links by user: %w", err)
	}
	return r.mapper.ToEntities(linkModels)
}

func (r *AccountLinkRepository) ListByService(ctx context.Context, service string) ([]*sync.AccountLink, error) {
	var linkModels []*models.AccountLinkModel
	if err := r.db.WithContext(ctx).Where("service = ?", service).Find(&linkModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list account links by service: %w", err)
	}
	return r.mapper.ToEntities(linkModels)
}
