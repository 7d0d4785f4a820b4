package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aegis/internal/domain/group"
	"aegis/internal/infrastructure/persistence/mappers"
	"aegis/internal/infrastructure/persistence/models"
	"aegis/internal/shared/logger"
)

// GroupRepository implements group.Repository on gorm. The unique index on
// the name column backs ErrNameTaken.
type GroupRepository struct {
	db     *gorm.DB
	mapper mappers.GroupMapper
	logger logger.Interface
}

func NewGroupRepository(db *gorm.DB, log logger.Interface) group.Repository {
	return &GroupRepository{
		db:     db,
		mapper: mappers.NewGroupMapper(),
		logger: log,
	}
}

func (r *GroupRepository) Create(ctx context.Context, entity *group.Group) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKeyError(err) {
			return group.ErrNameTaken
		}
		r.logger.Errorw("failed to create group", "name", model.Name, "error", err)
		return fmt.Errorf("failed to create group: %w", err)
	}
	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set group ID: %w", err)
	}

	r.logger.Infow("group created", "id", model.ID, "name", model.Name, "source", model.Source)
	return nil
}

func (r *GroupRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.GroupModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete group", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return group.ErrGroupNotFound
	}
	return nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id uint) (*group.Group, error) {
	var model models.GroupModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, group.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *GroupRepository) GetByName(ctx context.Context, name string) (*group.Group, error) {
	var model models.GroupModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, group.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group by name: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *GroupRepository) ListByRule(ctx context.Context, ruleID uint) ([]*group.Group, error) {
	var groupModels []*models.GroupModel
	if err := r.db.WithContext(ctx).Where("rule_id = ?", ruleID).Find(&groupModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups by rule: %w", err)
	}
	return r.mapper.ToEntities(groupModels)
}

func (r *GroupRepository) ListByIDs(ctx context.Context, ids []uint) ([]*group.Group, error) {
	if len(ids) == 0 {
		return []*group.Group{}, nil
	}
	var groupModels []*models.GroupModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&groupModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups by IDs: %w", err)
	}
	return r.mapper.ToEntities(groupModels)
}

// isDuplicateKeyError matches both the mysql and sqlite unique-violation
// messages.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "unique constraint")
}

// BindingRepository implements group.BindingRepository on gorm.
type BindingRepository struct {
	db *gorm.DB
}

func NewBindingRepository(db *gorm.DB) group.BindingRepository {
	return &BindingRepository{db: db}
}

func (r *BindingRepository) Bind(ctx context.Context, stateID, groupID uint) error {
	model := models.StateGroupBindingModel{StateID: stateID, GroupID: groupID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model).Error; err != nil {
		return fmt.Errorf("failed to bind group to state: %w", err)
	}
	return nil
}

func (r *BindingRepository) Unbind(ctx context.Context, stateID, groupID uint) error {
	if err := r.db.WithContext(ctx).
		Where("state_id = ? AND group_id = ?", stateID, groupID).
		Delete(&models.StateGroupBindingModel{}).Error; err != nil {
		return fmt.Errorf("failed to unbind group from state: %w", err)
	}
	return nil
}

func (r *BindingRepository) ListGroupIDsByState(ctx context.Context, stateID uint) ([]uint, error) {
	var groupIDs []uint
	if err := r.db.WithContext(ctx).
		Model(&models.StateGroupBindingModel{}).
		Where("state_id = ?", stateID).
		Pluck("group_id", &groupIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list bindings by state: %w", err)
	}
	return groupIDs, nil
}

// MembershipRepository implements group.MembershipRepository on gorm.
type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) group.MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) AddMember(ctx context.Context, groupID, userID uint) error {
	model := models.GroupMembershipModel{GroupID: groupID, UserID: userID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model).Error; err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

func (r *MembershipRepository) RemoveMember(ctx context.Context, groupID, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMembershipModel{}).Error; err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	return nil
}

func (r *MembershipRepository) ListGroupIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var groupIDs []uint
	if err := r.db.WithContext(ctx).
		Model(&models.GroupMembershipModel{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &groupIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list memberships by user: %w", err)
	}
	return groupIDs, nil
}

func (r *MembershipRepository) ListUserIDsByGroup(ctx context.Context, groupID uint) ([]uint, error) {
	var userIDs []uint
	if err := r.db.WithContext(ctx).
		Model(&models.GroupMembershipModel{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list members by group: %w", err)
	}
	return userIDs, nil
}

// AutoGroupRuleRepository implements group.AutoGroupRuleRepository on gorm.
type AutoGroupRuleRepository struct {
	db     *gorm.DB
	mapper mappers.AutoGroupRuleMapper
	logger logger.Interface
}

func NewAutoGroupRuleRepository(db *gorm.DB, log logger.Interface) group.AutoGroupRuleRepository {
	return &AutoGroupRuleRepository{
		db:     db,
		mapper: mappers.NewAutoGroupRuleMapper(),
		logger: log,
	}
}

func (r *AutoGroupRuleRepository) Create(ctx context.Context, entity *group.AutoGroupRule) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map rule entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create auto group rule", "scope", model.Scope, "error", err)
		return fmt.Errorf("failed to create auto group rule: %w", err)
	}
	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set rule ID: %w", err)
	}

	r.logger.Infow("auto group rule created", "id", model.ID, "scope", model.Scope, "template", model.Template)
	return nil
}

func (r *AutoGroupRuleRepository) Update(ctx context.Context, entity *group.AutoGroupRule) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map rule entity: %w", err)
	}

	if err := r.db.WithContext(ctx).
		Model(&models.AutoGroupRuleModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"scope":             model.Scope,
			"template":          model.Template,
			"name_source":       model.NameSource,
			"replace_spaces":    model.ReplaceSpaces,
			"space_replacement": model.SpaceReplacement,
			"state_ids":         model.StateIDs,
			"enabled":           model.Enabled,
			"updated_at":        model.UpdatedAt,
		}).Error; err != nil {
		r.logger.Errorw("failed to update auto group rule", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update auto group rule: %w", err)
	}
	return nil
}

func (r *AutoGroupRuleRepository) GetByID(ctx context.Context, id uint) (*group.AutoGroupRule, error) {
	var model models.AutoGroupRuleModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, group.ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to get auto group rule: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *AutoGroupRuleRepository) ListAll(ctx context.Context) ([]*group.AutoGroupRule, error) {
	var ruleModels []*models.AutoGroupRuleModel
	if err := r.db.WithContext(ctx).Find(&ruleModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list auto group rules: %w", err)
	}
	return r.mapper.ToEntities(ruleModels)
}
