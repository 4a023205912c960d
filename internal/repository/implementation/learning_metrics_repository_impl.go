package implementation

import (
	"context"
	"errors"

	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/mapper"
	"ai-orchestrator-be/internal/model"
	"ai-orchestrator-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// metricsRowId pins the aggregate to one well-known row. Concurrent
// first-ever writes then collide on the primary key instead of each
// inserting its own aggregate.
var metricsRowId = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type LearningMetricsRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LearningMetricsMapper
}

func NewLearningMetricsRepository(db *gorm.DB) contract.LearningMetricsRepository {
	return &LearningMetricsRepositoryImpl{
		db:     db,
		mapper: mapper.NewLearningMetricsMapper(),
	}
}

func (r *LearningMetricsRepositoryImpl) Get(ctx context.Context) (*entity.LearningMetrics, error) {
	var m model.LearningMetrics
	if err := r.db.WithContext(ctx).First(&m, "id = ?", metricsRowId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.LearningMetrics{
				SentimentDistribution: map[string]int64{},
				ImprovementAreas:      map[string]int64{},
				Strengths:             map[string]int64{},
			}, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

// ApplyFeedback reads the aggregate row under a FOR UPDATE lock, folds the
// feedback in, and writes it back in the same transaction.
func (r *LearningMetricsRepositoryImpl) ApplyFeedback(ctx context.Context, feedback *entity.Feedback) (*entity.LearningMetrics, error) {
	var updated *entity.LearningMetrics

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Seed the singleton row; a concurrent seed is a no-op thanks to
		// the fixed primary key.
		seed := model.LearningMetrics{Id: metricsRowId}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		var m model.LearningMetrics
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, "id = ?", metricsRowId).Error; err != nil {
			return err
		}

		agg := r.mapper.ToEntity(&m)
		foldFeedback(agg, feedback)

		next := r.mapper.ToModel(agg)
		next.Id = m.Id
		if err := tx.Save(next).Error; err != nil {
			return err
		}

		updated = r.mapper.ToEntity(next)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// foldFeedback merges one feedback into the running aggregate.
func foldFeedback(agg *entity.LearningMetrics, feedback *entity.Feedback) {
	if agg.SentimentDistribution == nil {
		agg.SentimentDistribution = map[string]int64{}
	}
	if agg.ImprovementAreas == nil {
		agg.ImprovementAreas = map[string]int64{}
	}
	if agg.Strengths == nil {
		agg.Strengths = map[string]int64{}
	}

	agg.TotalFeedbackCount++
	count := float64(agg.TotalFeedbackCount)
	agg.AverageRating = (agg.AverageRating*(count-1) + float64(feedback.Rating)) / count

	if feedback.Sentiment != "" {
		agg.SentimentDistribution[feedback.Sentiment]++
	}
	for _, area := range feedback.ImprovementAreas {
		agg.ImprovementAreas[area]++
	}
	for _, s := range feedback.Strengths {
		agg.Strengths[s]++
	}
}
