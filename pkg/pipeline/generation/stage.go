package generation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ai-orchestrator-be/pkg/llm"
	"ai-orchestrator-be/pkg/pipeline"
)

// Params is the fully-resolved generation configuration.
type Params struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Options     map[string]interface{}
}

// HistoryEntry records one generation for later inspection.
type HistoryEntry struct {
	Prompt    string
	Content   string
	Timestamp time.Time
	Params    Params
}

// Stage resolves parameters, enriches the prompt and invokes the LLM
// backend. It is the only stage allowed to surface a hard error: a
// failed generation has no meaningful fallback text.
type Stage struct {
	provider llm.LLMProvider
	logger   *log.Logger

	mu      sync.Mutex
	history []HistoryEntry
}

func NewStage(provider llm.LLMProvider, logger *log.Logger) *Stage {
	return &Stage{
		provider: provider,
		logger:   logger,
	}
}

func (s *Stage) Generate(ctx context.Context, prompt string, rr *pipeline.ReasoningResult, kc *pipeline.KnowledgeContext, rc *pipeline.RequestContext, override *pipeline.LLMConfig, credential string) (string, error) {
	params := ResolveParameters(rc, rr, kc, override)
	enriched := BuildPrompt(prompt, rr, kc)

	opts := []llm.Option{
		llm.WithMaxTokens(params.MaxTokens),
		llm.WithTemperature(params.Temperature),
	}
	if params.Model != "" {
		opts = append(opts, llm.WithModel(params.Model))
	}
	if credential != "" {
		opts = append(opts, llm.WithCredential(credential))
	}
	if format, ok := params.Options["format"].(string); ok && format == "json" {
		opts = append(opts, llm.WithFormat("json"))
	}
	if system, ok := params.Options["system_prompt"].(string); ok && system != "" {
		opts = append(opts, llm.WithSystemPrompt(system))
	}

	// A non-empty transcript turns the call into a multi-turn chat so
	// the model sees the prior exchange, not just the enriched prompt.
	var content string
	var err error
	if len(rc.History) > 0 {
		messages := make([]llm.Message, 0, len(rc.History)+1)
		messages = append(messages, rc.History...)
		messages = append(messages, llm.Message{Role: "user", Content: enriched})
		content, err = s.provider.Chat(ctx, messages, opts...)
	} else {
		content, err = s.provider.Generate(ctx, enriched, opts...)
	}
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	s.mu.Lock()
	s.history = append(s.history, HistoryEntry{
		Prompt:    enriched,
		Content:   content,
		Timestamp: time.Now(),
		Params:    params,
	})
	s.mu.Unlock()

	s.logger.Printf("[GENERATION] Produced %d chars (model=%q max_tokens=%d temp=%.2f)",
		len(content), params.Model, params.MaxTokens, params.Temperature)

	return content, nil
}

// History returns a copy of the in-memory generation log.
func (s *Stage) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// ResolveParameters merges configuration in increasing precedence:
// context defaults < reasoning hints < knowledge sources < context
// options < caller override. The override's options map is merged
// key-wise on top, never swapped wholesale.
func ResolveParameters(rc *pipeline.RequestContext, rr *pipeline.ReasoningResult, kc *pipeline.KnowledgeContext, override *pipeline.LLMConfig) Params {
	params := Params{
		MaxTokens:   rc.MaxTokens,
		Temperature: rc.Temperature,
		Options:     make(map[string]interface{}),
	}
	if params.MaxTokens <= 0 {
		params.MaxTokens = pipeline.DefaultMaxTokens
	}

	if rc.Format != "" {
		params.Options["format"] = rc.Format
	}
	if rc.Domain != "" {
		params.Options["domain"] = rc.Domain
	}

	if rr != nil {
		if rr.SuggestedFormat != "" {
			params.Options["format"] = rr.SuggestedFormat
		}
		if rr.Tone != "" {
			params.Options["tone"] = rr.Tone
		}
	}

	if kc != nil && len(kc.Sources) > 0 {
		params.Options["sources"] = kc.Sources
	}

	for k, v := range rc.Options {
		params.Options[k] = v
	}

	if override != nil {
		if override.Model != "" {
			params.Model = override.Model
		}
		if override.MaxTokens > 0 {
			params.MaxTokens = override.MaxTokens
		}
		if override.Temperature != nil {
			params.Temperature = *override.Temperature
		}
		for k, v := range override.Options {
			params.Options[k] = v
		}
	}

	return params
}

// BuildPrompt produces the enriched prompt: original request, then
// reference information, then key points, then the request restated as
// an explicit instruction. Supporting material sits between the two
// statements of the ask so neither end loses it.
func BuildPrompt(prompt string, rr *pipeline.ReasoningResult, kc *pipeline.KnowledgeContext) string {
	var b strings.Builder

	b.WriteString("Original request: ")
	b.WriteString(prompt)
	b.WriteString("\n")

	if kc != nil && len(kc.RelevantInfo) > 0 {
		b.WriteString("\nReference information:\n")
		for _, item := range kc.RelevantInfo {
			b.WriteString("- ")
			b.WriteString(item.Content)
			b.WriteString("\n")
		}
	}

	if rr != nil && len(rr.KeyPoints) > 0 {
		b.WriteString("\nKey points:\n")
		for _, point := range rr.KeyPoints {
			b.WriteString("- ")
			b.WriteString(point)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nUsing the reference information and key points above, respond to: ")
	b.WriteString(prompt)

	return b.String()
}
