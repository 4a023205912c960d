package executor

import (
	"context"
	"log"

	"ai-orchestrator-be/pkg/llm"
	"ai-orchestrator-be/pkg/pipeline"
	"ai-orchestrator-be/pkg/pipeline/formatting"
	"ai-orchestrator-be/pkg/pipeline/generation"
	"ai-orchestrator-be/pkg/pipeline/knowledge"
	"ai-orchestrator-be/pkg/pipeline/reasoning"
	"ai-orchestrator-be/pkg/search"
)

// PipelineExecutor sequences the stages of one request:
// knowledge → reasoning → generation → formatting.
// Knowledge, reasoning and formatting degrade to documented defaults
// on failure; generation is the only stage whose error propagates.
type PipelineExecutor struct {
	knowledge  *knowledge.Stage
	reasoning  *reasoning.Stage
	generation *generation.Stage
	formatting *formatting.Stage
	logger     *log.Logger
}

func NewPipelineExecutor(
	llmProvider llm.LLMProvider,
	vectorSearcher knowledge.VectorSearcher,
	searchProvider search.Provider,
	logger *log.Logger,
) *PipelineExecutor {
	return &PipelineExecutor{
		knowledge:  knowledge.NewStage(vectorSearcher, searchProvider, logger),
		reasoning:  reasoning.NewStage(llmProvider, logger),
		generation: generation.NewStage(llmProvider, logger),
		formatting: formatting.NewStage(llmProvider, logger),
		logger:     logger,
	}
}

// ExecutionResult contains the result of one pipeline run.
type ExecutionResult struct {
	Content   string
	Knowledge *pipeline.KnowledgeContext
	Reasoning *pipeline.ReasoningResult
	Metadata  map[string]interface{}
}

// Execute runs the full pipeline for one query. The credential, when
// set, overrides the backend key for this call only.
func (p *PipelineExecutor) Execute(
	ctx context.Context,
	query string,
	rc *pipeline.RequestContext,
	override *pipeline.LLMConfig,
	credential string,
) (*ExecutionResult, error) {

	p.logger.Printf("[PIPELINE] Starting execution for request %s: %s", rc.RequestId, truncate(query, 50))

	p.logger.Printf("[PHASE 1] Retrieving knowledge...")
	kc := p.knowledge.Retrieve(ctx, query, rc)
	p.logger.Printf("[PHASE 1] Knowledge: %d items, confidence %.2f (%s)",
		len(kc.RelevantInfo), kc.Confidence, kc.Outcome)

	p.logger.Printf("[PHASE 2] Reasoning...")
	rr := p.reasoning.Analyze(ctx, query, kc, rc, credential)
	p.logger.Printf("[PHASE 2] Intent: %s (domain: %s, sufficiency: %s, %s)",
		rr.Intent, rr.Domain, rr.KnowledgeSufficiency, rr.Outcome)

	// Reasoning hints steer the output shape unless the caller pinned
	// a format on the request.
	if rr.SuggestedFormat != "" && rc.Format == pipeline.DefaultFormat {
		rc.Format = rr.SuggestedFormat
	}
	if rr.Tone != "" && rc.Tone == "" {
		rc.Tone = rr.Tone
	}

	p.logger.Printf("[PHASE 3] Generating...")
	content, err := p.generation.Generate(ctx, query, rr, kc, rc, override, credential)
	if err != nil {
		p.logger.Printf("[ERROR] Generation failed: %v", err)
		return nil, err
	}

	p.logger.Printf("[PHASE 4] Formatting as %s...", rc.Format)
	formatted := p.formatting.Format(ctx, content, query, kc, rc, credential)

	metadata := map[string]interface{}{
		"used_knowledge":       len(kc.RelevantInfo) > 0,
		"knowledge_confidence": kc.Confidence,
		"reasoning_steps": map[string]interface{}{
			"intent":                rr.Intent,
			"domain":                rr.Domain,
			"complexity":            rr.Complexity,
			"knowledge_sufficiency": rr.KnowledgeSufficiency,
			"suggested_format":      rr.SuggestedFormat,
			"outcome":               rr.Outcome.String(),
		},
		"format": rc.Format,
	}

	p.logger.Printf("[PIPELINE] Done: %d chars", len(formatted))

	return &ExecutionResult{
		Content:   formatted,
		Knowledge: kc,
		Reasoning: rr,
		Metadata:  metadata,
	}, nil
}

// GenerationHistory exposes the in-memory generation log.
func (p *PipelineExecutor) GenerationHistory() []generation.HistoryEntry {
	return p.generation.History()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
