package mapper

import (
	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/model"
)

type ApiKeyMapper struct{}

func NewApiKeyMapper() *ApiKeyMapper {
	return &ApiKeyMapper{}
}

func (m *ApiKeyMapper) ToEntity(e *model.ApiKey) *entity.ApiKey {
	if e == nil {
		return nil
	}

	return &entity.ApiKey{
		Id:         e.Id,
		Name:       e.Name,
		SecretHash: e.SecretHash,
		LastUsedAt: e.LastUsedAt,
		RevokedAt:  e.RevokedAt,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *ApiKeyMapper) ToModel(e *entity.ApiKey) *model.ApiKey {
	if e == nil {
		return nil
	}

	return &model.ApiKey{
		Id:         e.Id,
		Name:       e.Name,
		SecretHash: e.SecretHash,
		LastUsedAt: e.LastUsedAt,
		RevokedAt:  e.RevokedAt,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *ApiKeyMapper) ToEntities(keys []*model.ApiKey) []*entity.ApiKey {
	entities := make([]*entity.ApiKey, len(keys))
	for i, e := range keys {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
