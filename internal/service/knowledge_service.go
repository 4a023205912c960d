package service

import (
	"context"
	"time"

	"ai-orchestrator-be/internal/dto"
	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/pkg/logger"
	"ai-orchestrator-be/internal/repository/specification"
	"ai-orchestrator-be/internal/repository/unitofwork"
	"ai-orchestrator-be/pkg/embedding"
	"ai-orchestrator-be/pkg/pipeline"
	"ai-orchestrator-be/pkg/utils"

	"github.com/google/uuid"
)

// Chunking parameters, character based.
const (
	chunkSize    = 1500
	chunkOverlap = 200
)

type IKnowledgeService interface {
	Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	List(ctx context.Context) ([]*dto.DocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, req *dto.SearchKnowledgeRequest) ([]*dto.SearchKnowledgeResponseItem, error)
}

type knowledgeService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	sysLogger logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            sysLogger,
	}
}

func (s *knowledgeService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	document := &entity.Document{
		Id:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		Source:    req.Source,
		Metadata:  req.Metadata,
		CreatedAt: time.Now(),
	}

	chunks := utils.SplitText(req.Content, chunkSize, chunkOverlap)
	s.logger.Info("knowledge", "ingesting document", map[string]interface{}{
		"document_id": document.Id.String(),
		"chunks":      len(chunks),
	})

	embeddings := make([]*entity.DocumentEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := s.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, &entity.DocumentEmbedding{
			Id:             uuid.New(),
			DocumentId:     document.Id,
			Chunk:          chunk,
			EmbeddingValue: res.Embedding.Values,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		return nil, err
	}
	if err := uow.DocumentEmbeddingRepository().CreateBulk(ctx, embeddings); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.IngestDocumentResponse{
		Id:         document.Id,
		ChunkCount: len(embeddings),
	}, nil
}

func (s *knowledgeService) List(ctx context.Context) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	documents, err := uow.DocumentRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DocumentResponse, len(documents))
	for i, doc := range documents {
		res[i] = &dto.DocumentResponse{
			Id:        doc.Id,
			Title:     doc.Title,
			Source:    doc.Source,
			Metadata:  doc.Metadata,
			CreatedAt: doc.CreatedAt,
		}
	}
	return res, nil
}

func (s *knowledgeService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentEmbeddingRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *knowledgeService) Search(ctx context.Context, req *dto.SearchKnowledgeRequest) ([]*dto.SearchKnowledgeResponseItem, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = pipeline.DefaultVectorSearchLimit
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = pipeline.DefaultVectorSearchThreshold
	}

	embedded, err := s.embeddingProvider.Generate(req.Query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentEmbeddingRepository().SearchSimilarWithScore(ctx, embedded.Embedding.Values, limit, threshold)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SearchKnowledgeResponseItem, len(scored))
	for i, sc := range scored {
		res[i] = &dto.SearchKnowledgeResponseItem{
			DocumentId: sc.Embedding.DocumentId,
			Chunk:      sc.Embedding.Chunk,
			Similarity: sc.Similarity,
		}
	}
	return res, nil
}
