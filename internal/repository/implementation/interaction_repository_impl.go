package implementation

import (
	"context"
	"errors"

	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/mapper"
	"ai-orchestrator-be/internal/model"
	"ai-orchestrator-be/internal/repository/contract"
	"ai-orchestrator-be/internal/repository/scope"
	"ai-orchestrator-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InteractionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InteractionMapper
}

func NewInteractionRepository(db *gorm.DB) contract.InteractionRepository {
	return &InteractionRepositoryImpl{
		db:     db,
		mapper: mapper.NewInteractionMapper(),
	}
}

func (r *InteractionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *InteractionRepositoryImpl) Create(ctx context.Context, interaction *entity.Interaction) error {
	m := r.mapper.ToModel(interaction)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*interaction = *r.mapper.ToEntity(m)
	return nil
}

func (r *InteractionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Interaction, error) {
	var m model.Interaction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InteractionRepositoryImpl) FindBySessionId(ctx context.Context, sessionId uuid.UUID) ([]*entity.Interaction, error) {
	var models []*model.Interaction
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Scopes(scope.OrderByCreatedAsc).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.Interaction, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *InteractionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Interaction{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
