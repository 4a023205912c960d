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

type SuggestionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SuggestionMapper
}

func NewSuggestionRepository(db *gorm.DB) contract.SuggestionRepository {
	return &SuggestionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSuggestionMapper(),
	}
}

func (r *SuggestionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SuggestionRepositoryImpl) Create(ctx context.Context, suggestion *entity.ImprovementSuggestion) error {
	m := r.mapper.ToModel(suggestion)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*suggestion = *r.mapper.ToEntity(m)
	return nil
}

func (r *SuggestionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ImprovementSuggestion, error) {
	var m model.ImprovementSuggestion
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SuggestionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ImprovementSuggestion, error) {
	var models []*model.ImprovementSuggestion
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SuggestionRepositoryImpl) MarkImplemented(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.ImprovementSuggestion{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"implemented":    true,
			"implemented_at": &now,
		}).Error
}
