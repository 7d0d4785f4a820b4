package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aegis/internal/domain/character"
	"aegis/internal/infrastructure/persistence/mappers"
	"aegis/internal/infrastructure/persistence/models"
	"aegis/internal/shared/logger"
)

// CharacterRepository implements character.Repository on gorm.
type CharacterRepository struct {
	db     *gorm.DB
	mapper mappers.CharacterMapper
	logger logger.Interface
}

func NewCharacterRepository(db *gorm.DB, log logger.Interface) character.Repository {
	return &CharacterRepository{
		db:     db,
		mapper: mappers.NewCharacterMapper(),
		logger: log,
	}
}

func (r *CharacterRepository) Create(ctx context.Context, entity *character.Character) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create character", "character_id", model.CharacterID, "error", err)
		return fmt.Errorf("failed to create character: %w", err)
	}
	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set character ID: %w", err)
	}

	r.logger.Infow("character created", "character_id", model.CharacterID, "name", model.Name)
	return nil
}

func (r *CharacterRepository) Update(ctx context.Context, entity *character.Character) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).
		Model(&models.CharacterModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"name":            model.Name,
			"organization_id": model.OrganizationID,
			"alliance_id":     model.AllianceID,
			"updated_at":      model.UpdatedAt,
		}).Error; err != nil {
		r.logger.Errorw("failed to update character", "character_id", model.CharacterID, "error", err)
		return fmt.Errorf("failed to update character: %w", err)
	}
	return nil
}

func (r *CharacterRepository) GetByCharacterID(ctx context.Context, characterID int64) (*character.Character, error) {
	var model models.CharacterModel
	if err := r.db.WithContext(ctx).Where("character_id = ?", characterID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, character.ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *CharacterRepository) ListByOrganization(ctx context.Context, organizationID int64) ([]*character.Character, error) {
	var characterModels []*models.CharacterModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Find(&characterModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list characters by organization: %w", err)
	}
	return r.mapper.ToEntities(characterModels)
}

// OwnershipRepository implements character.OwnershipRepository on gorm.
// History rows are never deleted.
type OwnershipRepository struct {
	db     *gorm.DB
	mapper mappers.OwnershipMapper
	logger logger.Interface
}

func NewOwnershipRepository(db *gorm.DB, log logger.Interface) character.OwnershipRepository {
	return &OwnershipRepository{
		db:     db,
		mapper: mappers.NewOwnershipMapper(),
		logger: log,
	}
}

func (r *OwnershipRepository) Create(ctx context.Context, entity *character.Ownership) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create ownership", "character_id", model.CharacterID, "user_id", model.UserID, "error", err)
		return fmt.Errorf("failed to create ownership: %w", err)
	}
	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set ownership ID: %w", err)
	}
	return nil
}

func (r *OwnershipRepository) Update(ctx context.Context, entity *character.Ownership) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).
		Model(&models.OwnershipModel{}).
		Where("id = ?", model.ID).
		Update("superseded_at", model.SupersededAt).Error; err != nil {
		r.logger.Errorw("failed to update ownership", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update ownership: %w", err)
	}
	return nil
}

func (r *OwnershipRepository) GetActiveByCharacterID(ctx context.Context, characterID int64) (*character.Ownership, error) {
	var model models.OwnershipModel
	if err := r.db.WithContext(ctx).
		Where("character_id = ? AND superseded_at IS NULL", characterID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, character.ErrOwnershipNotFound
		}
		return nil, fmt.Errorf("failed to get active ownership: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *OwnershipRepository) ListActiveByUserID(ctx context.Context, userID uint) ([]*character.Ownership, error) {
	var ownershipModels []*models.OwnershipModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND superseded_at IS NULL", userID).
		Find(&ownershipModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list active ownerships: %w", err)
	}
	return r.mapper.ToEntities(ownershipModels)
}

func (r *OwnershipRepository) ListHistoryByCharacterID(ctx context.Context, characterID int64) ([]*character.Ownership, error) {
	var ownershipModels []*models.OwnershipModel
	if err := r.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order("created_at asc").
		Find(&ownershipModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list ownership history: %w", err)
	}
	return r.mapper.ToEntities(ownershipModels)
}

// OrganizationRepository implements character.OrganizationRepository on gorm.
type OrganizationRepository struct {
	db     *gorm.DB
	mapper mappers.OrganizationMapper
}

func NewOrganizationRepository(db *gorm.DB) character.OrganizationRepository {
	return &OrganizationRepository{db: db, mapper: mappers.NewOrganizationMapper()}
}

func (r *OrganizationRepository) Upsert(ctx context.Context, entity *character.Organization) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "ticker", "alliance_id", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to upsert organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) GetByOrganizationID(ctx context.Context, organizationID int64) (*character.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.WithContext(ctx).Where("organization_id = ?", organizationID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, character.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

// AllianceRepository implements character.AllianceRepository on gorm.
type AllianceRepository struct {
	db     *gorm.DB
	mapper mappers.AllianceMapper
}

func NewAllianceRepository(db *gorm.DB) character.AllianceRepository {
	return &AllianceRepository{db: db, mapper: mappers.NewAllianceMapper()}
}

func (r *AllianceRepository) Upsert(ctx context.Context, entity *character.Alliance) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "alliance_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "ticker", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to upsert alliance: %w", err)
	}
	return nil
}

func (r *AllianceRepository) GetByAllianceID(ctx context.Context, allianceID int64) (*character.Alliance, error) {
	var model models.AllianceModel
	if err := r.db.WithContext(ctx).Where("alliance_id = ?", allianceID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, character.ErrAllianceNotFound
		}
		return nil, fmt.Errorf("failed to get alliance: %w", err)
	}
	return r.mapper.ToEntity(&model)
}
