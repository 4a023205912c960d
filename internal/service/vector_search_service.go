package service

import (
	"context"

	"ai-orchestrator-be/internal/repository/specification"
	"ai-orchestrator-be/internal/repository/unitofwork"
	"ai-orchestrator-be/pkg/embedding"
	"ai-orchestrator-be/pkg/pipeline"

	"github.com/google/uuid"
)

// VectorSearchService backs the knowledge stage with pgvector similarity
// search over the ingested documents.
type VectorSearchService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewVectorSearchService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) *VectorSearchService {
	return &VectorSearchService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (s *VectorSearchService) Search(ctx context.Context, query string, limit int, threshold float64) ([]pipeline.KnowledgeItem, error) {
	res, err := s.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentEmbeddingRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, limit, threshold)
	if err != nil {
		return nil, err
	}

	titles := map[uuid.UUID]string{}
	items := make([]pipeline.KnowledgeItem, 0, len(scored))
	for _, sc := range scored {
		title, ok := titles[sc.Embedding.DocumentId]
		if !ok {
			doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: sc.Embedding.DocumentId})
			if err == nil && doc != nil {
				title = doc.Title
			}
			if title == "" {
				title = "knowledge base"
			}
			titles[sc.Embedding.DocumentId] = title
		}

		items = append(items, pipeline.KnowledgeItem{
			Content: sc.Embedding.Chunk,
			Score:   sc.Similarity,
			Source:  title,
		})
	}
	return items, nil
}
