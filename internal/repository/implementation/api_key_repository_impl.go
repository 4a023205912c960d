package implementation

import (
	"context"
	"errors"
	"time"

	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/mapper"
	"ai-orchestrator-be/internal/model"
	"ai-orchestrator-be/internal/repository/contract"
	"ai-orchestrator-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApiKeyRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ApiKeyMapper
}

func NewApiKeyRepository(db *gorm.DB) contract.ApiKeyRepository {
	return &ApiKeyRepositoryImpl{
		db:     db,
		mapper: mapper.NewApiKeyMapper(),
	}
}

func (r *ApiKeyRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ApiKeyRepositoryImpl) Create(ctx context.Context, key *entity.ApiKey) error {
	m := r.mapper.ToModel(key)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*key = *r.mapper.ToEntity(m)
	return nil
}

func (r *ApiKeyRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ApiKey, error) {
	var m model.ApiKey
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ApiKeyRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ApiKey, error) {
	var models []*model.ApiKey
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ApiKeyRepositoryImpl) Revoke(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.ApiKey{}).
		Where("id = ?", id).
		Update("revoked_at", &now).Error
}

func (r *ApiKeyRepositoryImpl) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.ApiKey{}).
		Where("id = ?", id).
		Update("last_used_at", &now).Error
}
