package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-orchestrator-be/pkg/llm"
)

const suggestionPrompt = `A user gave the following feedback on a generated response.

Rating: %d of 5
Type: %s
Comment: %s
Derived areas needing improvement: %s

Suggest one concrete improvement. Respond with a JSON object:
{
  "area": "what to improve",
  "suggestion": "the concrete change",
  "priority": "low, medium or high"
}`

// Suggestion is one synthesized improvement derived from low-rated
// feedback.
type Suggestion struct {
	Area       string `json:"area"`
	Suggestion string `json:"suggestion"`
	Priority   string `json:"priority"`
}

// SuggestionGenerator turns low-rated feedback into an improvement
// suggestion via one LLM call with a parse-failure fallback.
type SuggestionGenerator struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

func NewSuggestionGenerator(provider llm.LLMProvider, logger *log.Logger) *SuggestionGenerator {
	return &SuggestionGenerator{
		provider: provider,
		logger:   logger,
	}
}

func (g *SuggestionGenerator) Generate(ctx context.Context, in Input, analysis Analysis) Suggestion {
	fallback := defaultSuggestion(in)

	prompt := fmt.Sprintf(suggestionPrompt,
		ClampRating(in.Rating),
		in.FeedbackType,
		in.Comment,
		strings.Join(analysis.ImprovementAreas, ", "),
	)

	raw, err := g.provider.Generate(ctx, prompt,
		llm.WithTemperature(0.3),
		llm.WithMaxTokens(300),
		llm.WithFormat("json"),
	)
	if err != nil {
		g.logger.Printf("[WARN] Suggestion generation failed, using default: %v", err)
		return fallback
	}

	var parsed Suggestion
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), &parsed); err != nil {
		g.logger.Printf("[WARN] Suggestion response unparseable, using default")
		return fallback
	}
	if parsed.Area == "" {
		parsed.Area = fallback.Area
	}
	if parsed.Suggestion == "" {
		parsed.Suggestion = fallback.Suggestion
	}
	if parsed.Priority == "" {
		parsed.Priority = "medium"
	}
	return parsed
}

func defaultSuggestion(in Input) Suggestion {
	area := in.FeedbackType
	if area == "" {
		area = "general"
	}
	return Suggestion{
		Area:       area,
		Suggestion: "review recent low-rated responses in this area",
		Priority:   "medium",
	}
}
