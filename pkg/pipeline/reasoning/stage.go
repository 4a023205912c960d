package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-orchestrator-be/pkg/llm"
	"ai-orchestrator-be/pkg/pipeline"
)

// Per-step sampling bounds. Step temperature stays low; the chain wants
// stable classifications, not creative text.
const (
	stepTemperature     = 0.3
	analyzeMaxTokens    = 300
	evaluateMaxTokens   = 300
	keyPointsMaxTokens  = 500
	planMaxTokens       = 400
	maxReferenceEntries = 5
)

// Stage runs the fixed four-step reasoning chain. A malformed LLM
// response degrades that step to its defaults; a failed LLM call
// degrades the whole chain to the fallback result. Analyze never
// returns an error.
type Stage struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

func NewStage(provider llm.LLMProvider, logger *log.Logger) *Stage {
	return &Stage{
		provider: provider,
		logger:   logger,
	}
}

func (s *Stage) Analyze(ctx context.Context, query string, kc *pipeline.KnowledgeContext, rc *pipeline.RequestContext, credential string) *pipeline.ReasoningResult {
	degraded := false

	analysis, err := s.analyzeRequest(ctx, query, credential)
	if err != nil {
		s.logger.Printf("[WARN] Reasoning step 1 failed, using fallback result: %v", err)
		return pipeline.FallbackReasoningResult()
	}
	if analysis.degraded {
		degraded = true
	}

	evaluation, err := s.evaluateKnowledge(ctx, query, kc, credential)
	if err != nil {
		s.logger.Printf("[WARN] Reasoning step 2 failed, using fallback result: %v", err)
		return pipeline.FallbackReasoningResult()
	}
	if evaluation.degraded {
		degraded = true
	}

	keyPoints, err := s.extractKeyPoints(ctx, query, analysis, kc, credential)
	if err != nil {
		s.logger.Printf("[WARN] Reasoning step 3 failed, using fallback result: %v", err)
		return pipeline.FallbackReasoningResult()
	}
	if keyPoints.degraded {
		degraded = true
	}

	plan, err := s.planResponse(ctx, query, analysis, keyPoints, credential)
	if err != nil {
		s.logger.Printf("[WARN] Reasoning step 4 failed, using fallback result: %v", err)
		return pipeline.FallbackReasoningResult()
	}
	if plan.degraded {
		degraded = true
	}

	outcome := pipeline.OutcomeOK
	if degraded {
		outcome = pipeline.OutcomeDegraded
	}

	return &pipeline.ReasoningResult{
		Intent:               analysis.Intent,
		Domain:               analysis.Domain,
		Complexity:           analysis.Complexity,
		Keywords:             analysis.Keywords,
		KnowledgeSufficiency: evaluation.Sufficiency,
		Gaps:                 evaluation.Gaps,
		Reliability:          evaluation.Reliability,
		KeyPoints:            keyPoints.Points,
		SuggestedFormat:      plan.Format,
		Tone:                 plan.Tone,
		Structure:            plan.Structure,
		Sections:             plan.Sections,
		Outcome:              outcome,
	}
}

// --- Step 1: request analysis ---

type requestAnalysis struct {
	Intent     string   `json:"intent"`
	Domain     string   `json:"domain"`
	Complexity string   `json:"complexity"`
	Keywords   []string `json:"keywords"`
	degraded   bool
}

func defaultRequestAnalysis() *requestAnalysis {
	return &requestAnalysis{
		Intent:     "unknown",
		Domain:     "general",
		Complexity: "medium",
		Keywords:   []string{},
		degraded:   true,
	}
}

func (s *Stage) analyzeRequest(ctx context.Context, query, credential string) (*requestAnalysis, error) {
	raw, err := s.callStep(ctx, fmt.Sprintf(analyzeRequestPrompt, query), analyzeMaxTokens, credential)
	if err != nil {
		return nil, err
	}

	var parsed requestAnalysis
	if err := unmarshalStep(raw, &parsed); err != nil {
		s.logger.Printf("[WARN] Step 1 returned unparseable JSON, using step defaults")
		return defaultRequestAnalysis(), nil
	}
	if parsed.Intent == "" {
		parsed.Intent = "unknown"
	}
	if parsed.Domain == "" {
		parsed.Domain = "general"
	}
	if parsed.Complexity == "" {
		parsed.Complexity = "medium"
	}
	if parsed.Keywords == nil {
		parsed.Keywords = []string{}
	}
	return &parsed, nil
}

// --- Step 2: knowledge evaluation ---

type knowledgeEvaluation struct {
	Sufficiency string   `json:"sufficiency"`
	Gaps        []string `json:"gaps"`
	Reliability string   `json:"reliability"`
	degraded    bool
}

func (s *Stage) evaluateKnowledge(ctx context.Context, query string, kc *pipeline.KnowledgeContext, credential string) (*knowledgeEvaluation, error) {
	// No retrieval hits: nothing to evaluate, skip the LLM call.
	if kc == nil || len(kc.RelevantInfo) == 0 {
		return &knowledgeEvaluation{
			Sufficiency: "insufficient",
			Gaps:        []string{"no relevant information"},
			Reliability: "low",
		}, nil
	}

	prompt := fmt.Sprintf(evaluateKnowledgePrompt, query, formatReferences(kc))
	raw, err := s.callStep(ctx, prompt, evaluateMaxTokens, credential)
	if err != nil {
		return nil, err
	}

	var parsed knowledgeEvaluation
	if err := unmarshalStep(raw, &parsed); err != nil {
		s.logger.Printf("[WARN] Step 2 returned unparseable JSON, using step defaults")
		return &knowledgeEvaluation{
			Sufficiency: "unknown",
			Gaps:        []string{},
			Reliability: "medium",
			degraded:    true,
		}, nil
	}
	if parsed.Sufficiency == "" {
		parsed.Sufficiency = "unknown"
	}
	if parsed.Gaps == nil {
		parsed.Gaps = []string{}
	}
	if parsed.Reliability == "" {
		parsed.Reliability = "medium"
	}
	return &parsed, nil
}

// --- Step 3: key-point extraction ---

type keyPointResult struct {
	Points   []string
	degraded bool
}

type keyPointPayload struct {
	KeyPoints []json.RawMessage `json:"key_points"`
}

type keyPointEntry struct {
	Point      string  `json:"point"`
	Importance float64 `json:"importance"`
	Relevance  float64 `json:"relevance"`
}

func (s *Stage) extractKeyPoints(ctx context.Context, query string, analysis *requestAnalysis, kc *pipeline.KnowledgeContext, credential string) (*keyPointResult, error) {
	prompt := fmt.Sprintf(extractKeyPointsPrompt, query, analysis.Intent, analysis.Domain, formatReferences(kc))
	raw, err := s.callStep(ctx, prompt, keyPointsMaxTokens, credential)
	if err != nil {
		return nil, err
	}

	var payload keyPointPayload
	if err := unmarshalStep(raw, &payload); err != nil {
		s.logger.Printf("[WARN] Step 3 returned unparseable JSON, using step defaults")
		return &keyPointResult{Points: []string{}, degraded: true}, nil
	}

	// Entries may be plain strings or scored objects.
	points := make([]string, 0, len(payload.KeyPoints))
	for _, rawEntry := range payload.KeyPoints {
		var asString string
		if err := json.Unmarshal(rawEntry, &asString); err == nil {
			points = append(points, asString)
			continue
		}
		var asEntry keyPointEntry
		if err := json.Unmarshal(rawEntry, &asEntry); err == nil && asEntry.Point != "" {
			points = append(points, asEntry.Point)
		}
	}
	return &keyPointResult{Points: points}, nil
}

// --- Step 4: response planning ---

type responsePlan struct {
	Format    string   `json:"format"`
	Tone      string   `json:"tone"`
	Structure string   `json:"structure"`
	Sections  []string `json:"sections"`
	degraded  bool
}

func (s *Stage) planResponse(ctx context.Context, query string, analysis *requestAnalysis, keyPoints *keyPointResult, credential string) (*responsePlan, error) {
	pointsBlock := "- none"
	if len(keyPoints.Points) > 0 {
		var b strings.Builder
		for _, p := range keyPoints.Points {
			b.WriteString("- ")
			b.WriteString(p)
			b.WriteString("\n")
		}
		pointsBlock = strings.TrimRight(b.String(), "\n")
	}

	prompt := fmt.Sprintf(planResponsePrompt, query, analysis.Intent, analysis.Complexity, pointsBlock)
	raw, err := s.callStep(ctx, prompt, planMaxTokens, credential)
	if err != nil {
		return nil, err
	}

	var parsed responsePlan
	if err := unmarshalStep(raw, &parsed); err != nil {
		s.logger.Printf("[WARN] Step 4 returned unparseable JSON, using step defaults")
		return &responsePlan{
			Format:    "text",
			Tone:      "neutral",
			Structure: "default",
			Sections:  []string{},
			degraded:  true,
		}, nil
	}
	if parsed.Format == "" {
		parsed.Format = "text"
	}
	if parsed.Tone == "" {
		parsed.Tone = "neutral"
	}
	if parsed.Structure == "" {
		parsed.Structure = "default"
	}
	if parsed.Sections == nil {
		parsed.Sections = []string{}
	}
	return &parsed, nil
}

// --- Helpers ---

func (s *Stage) callStep(ctx context.Context, prompt string, maxTokens int, credential string) (string, error) {
	opts := []llm.Option{
		llm.WithTemperature(stepTemperature),
		llm.WithMaxTokens(maxTokens),
		llm.WithFormat("json"),
	}
	if credential != "" {
		opts = append(opts, llm.WithCredential(credential))
	}
	return s.provider.Generate(ctx, prompt, opts...)
}

// unmarshalStep tolerates code fences around the JSON body.
func unmarshalStep(raw string, target interface{}) error {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	return json.Unmarshal([]byte(cleaned), target)
}

func formatReferences(kc *pipeline.KnowledgeContext) string {
	if kc == nil || len(kc.RelevantInfo) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, item := range kc.RelevantInfo {
		if i >= maxReferenceEntries {
			break
		}
		b.WriteString("- ")
		b.WriteString(item.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
