package generation

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"

	"ai-orchestrator-be/pkg/llm"
	"ai-orchestrator-be/pkg/pipeline"
)

type recordingProvider struct {
	response    string
	err         error
	lastOpts    *llm.Options
	prompt      string
	chatHistory []llm.Message
}

func (p *recordingProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	p.prompt = prompt
	p.lastOpts = llm.NewOptions(opts...)
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

func (p *recordingProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	p.chatHistory = history
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Content
	}
	return p.Generate(ctx, last, opts...)
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", log.LstdFlags)
}

func TestResolveParametersPrecedence(t *testing.T) {
	rc := pipeline.NewRequestContext()
	rr := &pipeline.ReasoningResult{Tone: "formal"}
	temp := 0.2
	override := &pipeline.LLMConfig{
		Temperature: &temp,
		Options:     map[string]interface{}{"x": 1},
	}

	params := ResolveParameters(rc, rr, nil, override)

	if params.Temperature != 0.2 {
		t.Errorf("override temperature must win: got %f", params.Temperature)
	}
	if params.Options["tone"] != "formal" {
		t.Errorf("non-conflicting reasoning hint must survive: got %v", params.Options["tone"])
	}
	if params.Options["x"] != 1 {
		t.Errorf("override options must merge in: got %v", params.Options["x"])
	}
}

func TestResolveParametersOverrideOptionsMergeKeywise(t *testing.T) {
	rc := pipeline.NewRequestContext()
	rc.Options["a"] = "context"
	rc.Options["b"] = "context"
	override := &pipeline.LLMConfig{
		Options: map[string]interface{}{"b": "override"},
	}

	params := ResolveParameters(rc, nil, nil, override)

	if params.Options["a"] != "context" {
		t.Errorf("untouched context option dropped: got %v", params.Options["a"])
	}
	if params.Options["b"] != "override" {
		t.Errorf("override option must win key-wise: got %v", params.Options["b"])
	}
}

func TestResolveParametersKnowledgeSources(t *testing.T) {
	rc := pipeline.NewRequestContext()
	kc := &pipeline.KnowledgeContext{Sources: []string{"doc-1", "web-1"}}

	params := ResolveParameters(rc, nil, kc, nil)

	sources, ok := params.Options["sources"].([]string)
	if !ok || len(sources) != 2 {
		t.Errorf("expected sources in options, got %v", params.Options["sources"])
	}
}

func TestBuildPromptOrdering(t *testing.T) {
	kc := &pipeline.KnowledgeContext{
		RelevantInfo: []pipeline.KnowledgeItem{{Content: "fact one", Score: 0.9}},
	}
	rr := &pipeline.ReasoningResult{KeyPoints: []string{"point one"}}

	prompt := BuildPrompt("what is X?", rr, kc)

	reqIdx := strings.Index(prompt, "Original request: what is X?")
	infoIdx := strings.Index(prompt, "Reference information:")
	pointsIdx := strings.Index(prompt, "Key points:")
	restatedIdx := strings.LastIndex(prompt, "respond to: what is X?")

	if reqIdx == -1 || infoIdx == -1 || pointsIdx == -1 || restatedIdx == -1 {
		t.Fatalf("prompt missing sections:\n%s", prompt)
	}
	if !(reqIdx < infoIdx && infoIdx < pointsIdx && pointsIdx < restatedIdx) {
		t.Errorf("prompt sections out of order:\n%s", prompt)
	}
}

func TestGenerateThreadsCredentialAndRecordsHistory(t *testing.T) {
	provider := &recordingProvider{response: "generated text"}
	stage := NewStage(provider, testLogger())

	rc := pipeline.NewRequestContext()
	content, err := stage.Generate(context.Background(), "hello", nil, nil, rc, nil, "sk-caller-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "generated text" {
		t.Errorf("unexpected content: %q", content)
	}
	if provider.lastOpts.Credential != "sk-caller-key" {
		t.Errorf("credential not threaded through options: %q", provider.lastOpts.Credential)
	}

	history := stage.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].Content != "generated text" {
		t.Errorf("history entry missing content: %+v", history[0])
	}
}

func TestGenerateThreadsSessionHistoryIntoChat(t *testing.T) {
	provider := &recordingProvider{response: "follow-up answer"}
	stage := NewStage(provider, testLogger())

	rc := pipeline.NewRequestContext()
	rc.History = []llm.Message{
		{Role: "user", Content: "what is X?"},
		{Role: "assistant", Content: "X is a thing."},
	}

	content, err := stage.Generate(context.Background(), "and Y?", nil, nil, rc, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "follow-up answer" {
		t.Errorf("unexpected content: %q", content)
	}

	if len(provider.chatHistory) != 3 {
		t.Fatalf("expected prior turns plus the new prompt, got %d messages", len(provider.chatHistory))
	}
	if provider.chatHistory[0].Content != "what is X?" || provider.chatHistory[1].Role != "assistant" {
		t.Errorf("prior turns not forwarded in order: %+v", provider.chatHistory)
	}
	last := provider.chatHistory[2]
	if last.Role != "user" || !strings.Contains(last.Content, "and Y?") {
		t.Errorf("final message must carry the enriched prompt: %+v", last)
	}
}

func TestGenerateWithoutHistoryUsesSinglePrompt(t *testing.T) {
	provider := &recordingProvider{response: "answer"}
	stage := NewStage(provider, testLogger())

	_, err := stage.Generate(context.Background(), "hello", nil, nil, pipeline.NewRequestContext(), nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.chatHistory != nil {
		t.Errorf("empty transcript must not switch to the chat path: %+v", provider.chatHistory)
	}
}

func TestGeneratePropagatesBackendFailure(t *testing.T) {
	provider := &recordingProvider{err: fmt.Errorf("backend down")}
	stage := NewStage(provider, testLogger())

	_, err := stage.Generate(context.Background(), "hello", nil, nil, pipeline.NewRequestContext(), nil, "")
	if err == nil {
		t.Fatal("generation must surface backend failures")
	}
	if len(stage.History()) != 0 {
		t.Errorf("failed generation must not be recorded in history")
	}
}
