package formatting

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"

	"ai-orchestrator-be/pkg/llm"
	"ai-orchestrator-be/pkg/pipeline"
)

type stubProvider struct {
	response string
	err      error
	calls    int
}

func (p *stubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

func (p *stubProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Content
	}
	return p.Generate(ctx, last, opts...)
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", log.LstdFlags)
}

func downProvider() *stubProvider {
	return &stubProvider{err: fmt.Errorf("backend unavailable")}
}

func TestMarkdownFallbackWhenBackendDown(t *testing.T) {
	stage := NewStage(downProvider(), testLogger())
	rc := pipeline.NewRequestContext()
	rc.Format = "markdown"

	content := "Result Summary\nEverything worked.\nNothing failed."
	got := stage.Format(context.Background(), content, "", nil, rc, "")

	if !strings.HasPrefix(got, "# Result Summary") {
		t.Errorf("first line must become a heading, got:\n%s", got)
	}
	if !strings.Contains(got, "Everything worked.") {
		t.Errorf("body lines lost in fallback:\n%s", got)
	}
}

func TestJSONFallbackWrapsContent(t *testing.T) {
	stage := NewStage(downProvider(), testLogger())
	rc := pipeline.NewRequestContext()
	rc.Format = "json"

	got := stage.Format(context.Background(), "plain answer", "", nil, rc, "")

	var parsed map[string]string
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("fallback output is not valid JSON: %v\n%s", err, got)
	}
	if parsed["content"] != "plain answer" {
		t.Errorf("expected wrapped content, got %v", parsed)
	}
}

func TestCodeFallbackFencesRawContent(t *testing.T) {
	stage := NewStage(downProvider(), testLogger())
	rc := pipeline.NewRequestContext()
	rc.Format = "code"
	rc.CodeLanguage = "go"

	got := stage.Format(context.Background(), `fmt.Println("hi")`, "", nil, rc, "")

	if !strings.HasPrefix(got, "```go\n") || !strings.HasSuffix(got, "\n```") {
		t.Errorf("expected fenced block, got:\n%s", got)
	}
}

func TestTableFallbackReturnsRawContent(t *testing.T) {
	stage := NewStage(downProvider(), testLogger())
	rc := pipeline.NewRequestContext()
	rc.Format = "table"

	content := "a b c"
	if got := stage.Format(context.Background(), content, "", nil, rc, ""); got != content {
		t.Errorf("table formatting has no heuristic; expected raw content, got:\n%s", got)
	}
}

func TestReflowParagraphs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantSep int // expected number of paragraph breaks
	}{
		{name: "existing paragraphs untouched", content: "one.\n\ntwo.", wantSep: 1},
		{name: "short content untouched", content: "One. Two. Three.", wantSep: 0},
		{name: "long run split into groups of three", content: "A. B. C. D. E. F. G.", wantSep: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReflowParagraphs(tt.content)
			if sep := strings.Count(got, "\n\n"); sep != tt.wantSep {
				t.Errorf("expected %d paragraph breaks, got %d:\n%s", tt.wantSep, sep, got)
			}
		})
	}
}

func TestSkipRewriteBelowAvoidsLLM(t *testing.T) {
	provider := &stubProvider{response: "rewritten"}
	stage := NewStage(provider, testLogger())
	rc := pipeline.NewRequestContext()
	rc.Format = "markdown"
	rc.SkipRewriteBelow = 100

	stage.Format(context.Background(), "short", "", nil, rc, "")

	if provider.calls != 0 {
		t.Errorf("expected no LLM calls for short content, got %d", provider.calls)
	}
}

func TestAppendCitations(t *testing.T) {
	sources := []string{"doc-1", "https://example.com"}

	t.Run("markdown", func(t *testing.T) {
		got := AppendCitations("body", "markdown", sources)
		if !strings.Contains(got, "\n\n---\n\n**Sources:**\n1. doc-1\n2. https://example.com") {
			t.Errorf("unexpected markdown citations:\n%s", got)
		}
	})

	t.Run("json merges sources array", func(t *testing.T) {
		got := AppendCitations(`{"content": "body"}`, "json", sources)
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(got), &parsed); err != nil {
			t.Fatalf("citation output not valid JSON: %v", err)
		}
		merged, ok := parsed["sources"].([]interface{})
		if !ok || len(merged) != 2 {
			t.Errorf("expected merged sources array, got %v", parsed)
		}
	})

	t.Run("json falls back to text on invalid content", func(t *testing.T) {
		got := AppendCitations("not json", "json", sources)
		if !strings.Contains(got, "Sources:\n1. doc-1") {
			t.Errorf("expected text fallback, got:\n%s", got)
		}
	})

	t.Run("text", func(t *testing.T) {
		got := AppendCitations("body", "text", sources)
		if !strings.Contains(got, "\n\nSources:\n1. doc-1\n2. https://example.com") {
			t.Errorf("unexpected text citations:\n%s", got)
		}
	})
}
