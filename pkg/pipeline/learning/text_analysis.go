package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-orchestrator-be/pkg/llm"
)

const textAnalysisPrompt = `Analyze the sentiment of this feedback comment.

Comment: %s

Respond with a JSON object:
{
  "sentiment": "positive, neutral or negative",
  "aspects": ["specific aspects mentioned"],
  "confidence": 0.0
}`

// Confidence assigned to rating-only analysis. Ratings are explicit, so
// they score higher than inferred text sentiment.
const ratingConfidence = 0.9

// TextAnalysis is the result of analyzing free-form comment text.
type TextAnalysis struct {
	Sentiment  string   `json:"sentiment"`
	Aspects    []string `json:"aspects"`
	Confidence float64  `json:"confidence"`
}

// TextAnalyzer classifies comment text with one LLM call, falling back to
// keyword heuristics when the call or parse fails.
type TextAnalyzer struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

func NewTextAnalyzer(provider llm.LLMProvider, logger *log.Logger) *TextAnalyzer {
	return &TextAnalyzer{
		provider: provider,
		logger:   logger,
	}
}

func (a *TextAnalyzer) AnalyzeText(ctx context.Context, comment string) TextAnalysis {
	fallback := keywordTextAnalysis(comment)
	if strings.TrimSpace(comment) == "" {
		return fallback
	}

	raw, err := a.provider.Generate(ctx, fmt.Sprintf(textAnalysisPrompt, comment),
		llm.WithTemperature(0.3),
		llm.WithMaxTokens(300),
		llm.WithFormat("json"),
	)
	if err != nil {
		a.logger.Printf("[WARN] Text analysis failed, using keyword fallback: %v", err)
		return fallback
	}

	var parsed TextAnalysis
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), &parsed); err != nil {
		a.logger.Printf("[WARN] Text analysis response unparseable, using keyword fallback")
		return fallback
	}

	switch parsed.Sentiment {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
	default:
		parsed.Sentiment = fallback.Sentiment
	}
	if parsed.Aspects == nil {
		parsed.Aspects = []string{}
	}
	if parsed.Confidence <= 0 || parsed.Confidence > 1 {
		parsed.Confidence = 0.5
	}
	return parsed
}

// keywordTextAnalysis mirrors the comment keyword scan used by Analyze.
func keywordTextAnalysis(comment string) TextAnalysis {
	lower := strings.ToLower(comment)
	analysis := TextAnalysis{
		Sentiment:  SentimentNeutral,
		Aspects:    []string{},
		Confidence: 0.5,
	}
	for _, keyword := range negativeKeywords {
		if strings.Contains(lower, keyword) {
			analysis.Sentiment = SentimentNegative
			analysis.Aspects = append(analysis.Aspects, keyword)
			return analysis
		}
	}
	for _, keyword := range positiveKeywords {
		if strings.Contains(lower, keyword) {
			analysis.Sentiment = SentimentPositive
			analysis.Aspects = append(analysis.Aspects, keyword)
			return analysis
		}
	}
	return analysis
}

// CombinedAnalysis merges rating-derived and text-derived classifications.
// The explicit rating wins on sentiment; confidences average.
type CombinedAnalysis struct {
	Analysis
	TextSentiment string
	Aspects       []string
	Confidence    float64
}

func Combine(rating Analysis, text TextAnalysis) CombinedAnalysis {
	return CombinedAnalysis{
		Analysis:      rating,
		TextSentiment: text.Sentiment,
		Aspects:       text.Aspects,
		Confidence:    (ratingConfidence + text.Confidence) / 2,
	}
}
