package knowledge

import (
	"context"
	"log"
	"sort"

	"ai-orchestrator-be/pkg/pipeline"
	"ai-orchestrator-be/pkg/search"
)

// VectorSearcher is the retrieval side of the vector store. Implemented
// by the knowledge service (embedding provider + pgvector repository).
type VectorSearcher interface {
	Search(ctx context.Context, query string, limit int, threshold float64) ([]pipeline.KnowledgeItem, error)
}

// Stage merges vector-store and external-search hits into one ranked,
// deduplicated knowledge context. It never returns an error: on total
// failure downstream stages receive an empty context with confidence 0.
type Stage struct {
	vector   VectorSearcher
	external search.Provider
	logger   *log.Logger
}

func NewStage(vector VectorSearcher, external search.Provider, logger *log.Logger) *Stage {
	return &Stage{
		vector:   vector,
		external: external,
		logger:   logger,
	}
}

func (s *Stage) Retrieve(ctx context.Context, query string, rc *pipeline.RequestContext) *pipeline.KnowledgeContext {
	degraded := false

	var vectorItems []pipeline.KnowledgeItem
	if s.vector != nil {
		items, err := s.vector.Search(ctx, query, rc.VectorSearchLimit, rc.VectorSearchThreshold)
		if err != nil {
			s.logger.Printf("[WARN] Vector search failed: %v", err)
			degraded = true
		} else {
			vectorItems = items
		}
	}

	vectorConfidence := 0.0
	for _, item := range vectorItems {
		if item.Score > vectorConfidence {
			vectorConfidence = item.Score
		}
	}

	var externalItems []pipeline.KnowledgeItem
	externalConfidence := 0.0
	if shouldSearchExternal(rc, vectorConfidence, len(vectorItems)) && s.external != nil {
		results, err := s.external.Search(ctx, query, rc.ExternalSearchLimit)
		if err != nil {
			s.logger.Printf("[WARN] External search failed: %v", err)
			degraded = true
		} else {
			for _, r := range results {
				content := r.Snippet
				if content == "" {
					content = r.Title
				}
				source := r.Link
				if source == "" {
					source = r.Source
				}
				externalItems = append(externalItems, pipeline.KnowledgeItem{
					Content: content,
					Score:   pipeline.ExternalSearchConfidence,
					Source:  source,
				})
			}
			if len(externalItems) > 0 {
				externalConfidence = pipeline.ExternalSearchConfidence
			}
		}
	}

	merged := Merge(vectorItems, externalItems)
	if len(merged) == 0 {
		if degraded {
			return pipeline.EmptyKnowledgeContext()
		}
		kc := pipeline.EmptyKnowledgeContext()
		kc.Outcome = pipeline.OutcomeOK
		return kc
	}

	confidence := vectorConfidence
	if externalConfidence > confidence {
		confidence = externalConfidence
	}

	sources := make([]string, 0, len(merged))
	seen := make(map[string]bool)
	for _, item := range merged {
		if item.Source != "" && !seen[item.Source] {
			sources = append(sources, item.Source)
			seen[item.Source] = true
		}
	}

	outcome := pipeline.OutcomeOK
	if degraded {
		outcome = pipeline.OutcomeDegraded
	}

	s.logger.Printf("[KNOWLEDGE] %d vector + %d external hits, merged %d, confidence %.2f",
		len(vectorItems), len(externalItems), len(merged), confidence)

	return &pipeline.KnowledgeContext{
		RelevantInfo: merged,
		Sources:      sources,
		Confidence:   confidence,
		Outcome:      outcome,
	}
}

// shouldSearchExternal applies the decision ladder in order, first
// match wins. Note the last rule: anything not settled above defaults
// to searching, even when vector search returned hits.
func shouldSearchExternal(rc *pipeline.RequestContext, vectorConfidence float64, vectorHits int) bool {
	if rc.AlwaysSearchExternal {
		return true
	}
	if vectorConfidence >= rc.SufficientConfidence {
		return false
	}
	if vectorHits < rc.MinRelevantInfo {
		return true
	}
	return true
}

// Merge deduplicates by exact content, keeping the highest-scored
// duplicate, then sorts descending by score. The sort is stable so
// equal-score items keep their input order.
func Merge(vectorItems, externalItems []pipeline.KnowledgeItem) []pipeline.KnowledgeItem {
	combined := make([]pipeline.KnowledgeItem, 0, len(vectorItems)+len(externalItems))
	combined = append(combined, vectorItems...)
	combined = append(combined, externalItems...)

	best := make(map[string]int) // content -> index in deduped
	deduped := make([]pipeline.KnowledgeItem, 0, len(combined))
	for _, item := range combined {
		if idx, ok := best[item.Content]; ok {
			if item.Score > deduped[idx].Score {
				deduped[idx] = item
			}
			continue
		}
		best[item.Content] = len(deduped)
		deduped = append(deduped, item)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Score > deduped[j].Score
	})
	return deduped
}
