package mappers

import (
	"fmt"

	"aegis/internal/domain/sync"
	"aegis/internal/infrastructure/persistence/models"
)

// AccountLinkMapper converts service account links.
type AccountLinkMapper interface {
	ToEntity(model *models.AccountLinkModel) (*sync.AccountLink, error)
	ToModel(entity *sync.AccountLink) *models.AccountLinkModel
	ToEntities(models []*models.AccountLinkModel) ([]*sync.AccountLink, error)
}

type accountLinkMapper struct{}

func NewAccountLinkMapper() AccountLinkMapper {
	return &accountLinkMapper{}
}

func (m *accountLinkMapper) ToEntity(model *models.AccountLinkModel) (*sync.AccountLink, error) {
	if model == nil {
		return nil, nil
	}
	entity, err := sync.ReconstructAccountLink(
		model.ID,
		model.UserID,
		model.Service,
		model.RemoteID,
		model.RemoteName,
		sync.LinkStatus(model.Status),
		model.FailCount,
		model.CreatedAt,
		model.LastSyncedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct account link: %w", err)
	}
	return entity, nil
}

func (m *accountLinkMapper) ToModel(entity *sync.AccountLink) *models.AccountLinkModel {
	if entity == nil {
		return nil
	}
	return &models.AccountLinkModel{
		ID:           entity.ID(),
		UserID:       entity.UserID(),
		Service:      entity.Service(),
		RemoteID:     entity.RemoteID(),
		RemoteName:   entity.RemoteName(),
		Status:       string(entity.Status()),
		FailCount:    entity.FailCount(),
		CreatedAt:    entity.CreatedAt(),
		LastSyncedAt: entity.LastSyncedAt(),
	}
}

func (m *accountLinkMapper) ToEntities(linkModels []*models.AccountLinkModel) ([]*sync.AccountLink, error) {
	entities := make([]*sync.AccountLink, 0, len(linkModels))
	for _, model := range linkModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
