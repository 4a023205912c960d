package learning

import (
	"context"
	"fmt"
	"log"
	"os"
	"reflect"
	"testing"

	"ai-orchestrator-be/pkg/llm"
)

type scriptedProvider struct {
	response string
	err      error
	prompts  []string
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Content
	}
	return p.Generate(ctx, last, opts...)
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", log.LstdFlags)
}

func TestAnalyzeTextParsesResponse(t *testing.T) {
	provider := &scriptedProvider{
		response: "```json\n{\"sentiment\": \"negative\", \"aspects\": [\"latency\"], \"confidence\": 0.8}\n```",
	}
	analyzer := NewTextAnalyzer(provider, testLogger())

	got := analyzer.AnalyzeText(context.Background(), "the response took forever")

	if got.Sentiment != SentimentNegative {
		t.Errorf("Sentiment = %q, want %q", got.Sentiment, SentimentNegative)
	}
	if !reflect.DeepEqual(got.Aspects, []string{"latency"}) {
		t.Errorf("Aspects = %v, want [latency]", got.Aspects)
	}
	if got.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", got.Confidence)
	}
	if len(provider.prompts) != 1 {
		t.Fatalf("expected one LLM call, got %d", len(provider.prompts))
	}
}

func TestAnalyzeTextFallsBackOnError(t *testing.T) {
	provider := &scriptedProvider{err: fmt.Errorf("provider down")}
	analyzer := NewTextAnalyzer(provider, testLogger())

	got := analyzer.AnalyzeText(context.Background(), "this answer is wrong")

	if got.Sentiment != SentimentNegative {
		t.Errorf("fallback Sentiment = %q, want %q", got.Sentiment, SentimentNegative)
	}
	if got.Confidence != 0.5 {
		t.Errorf("fallback Confidence = %v, want 0.5", got.Confidence)
	}
}

func TestAnalyzeTextFallsBackOnUnparseableResponse(t *testing.T) {
	provider := &scriptedProvider{response: "sorry, I cannot help with that"}
	analyzer := NewTextAnalyzer(provider, testLogger())

	got := analyzer.AnalyzeText(context.Background(), "great answer, very helpful")

	if got.Sentiment != SentimentPositive {
		t.Errorf("fallback Sentiment = %q, want %q", got.Sentiment, SentimentPositive)
	}
}

func TestAnalyzeTextSanitizesFields(t *testing.T) {
	provider := &scriptedProvider{
		response: `{"sentiment": "ecstatic", "confidence": 3.5}`,
	}
	analyzer := NewTextAnalyzer(provider, testLogger())

	got := analyzer.AnalyzeText(context.Background(), "plain comment")

	if got.Sentiment != SentimentNeutral {
		t.Errorf("Sentiment = %q, want %q after whitelist", got.Sentiment, SentimentNeutral)
	}
	if got.Aspects == nil {
		t.Error("Aspects should never be nil")
	}
	if got.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want clamped 0.5", got.Confidence)
	}
}

func TestAnalyzeTextEmptyCommentSkipsProvider(t *testing.T) {
	provider := &scriptedProvider{response: "{}"}
	analyzer := NewTextAnalyzer(provider, testLogger())

	analyzer.AnalyzeText(context.Background(), "   ")

	if len(provider.prompts) != 0 {
		t.Errorf("expected no LLM call for empty comment, got %d", len(provider.prompts))
	}
}

func TestCombineAveragesConfidence(t *testing.T) {
	rating := Analyze(Input{Rating: 2, FeedbackType: "accuracy"})
	text := TextAnalysis{Sentiment: SentimentNeutral, Aspects: []string{"tone"}, Confidence: 0.7}

	got := Combine(rating, text)

	if got.Sentiment != SentimentNegative {
		t.Errorf("rating sentiment should win, got %q", got.Sentiment)
	}
	if got.TextSentiment != SentimentNeutral {
		t.Errorf("TextSentiment = %q, want %q", got.TextSentiment, SentimentNeutral)
	}
	want := (ratingConfidence + 0.7) / 2
	if got.Confidence != want {
		t.Errorf("Confidence = %v, want %v", got.Confidence, want)
	}
}
