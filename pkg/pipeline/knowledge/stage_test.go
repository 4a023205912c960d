package knowledge

import (
	"context"
	"fmt"
	"log"
	"os"
	"reflect"
	"testing"

	"ai-orchestrator-be/pkg/pipeline"
	"ai-orchestrator-be/pkg/search"
)

type fakeVectorSearcher struct {
	items []pipeline.KnowledgeItem
	err   error
	calls int
}

func (f *fakeVectorSearcher) Search(ctx context.Context, query string, limit int, threshold float64) ([]pipeline.KnowledgeItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

type fakeSearchProvider struct {
	results []search.Result
	err     error
	calls   int
}

func (f *fakeSearchProvider) Search(ctx context.Context, query string, count int) ([]search.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", log.LstdFlags)
}

func TestMergeDeduplicatesKeepingMaxScore(t *testing.T) {
	vector := []pipeline.KnowledgeItem{
		{Content: "alpha", Score: 0.9, Source: "doc-1"},
		{Content: "beta", Score: 0.5, Source: "doc-2"},
	}
	external := []pipeline.KnowledgeItem{
		{Content: "beta", Score: 0.7, Source: "web-1"},
		{Content: "gamma", Score: 0.7, Source: "web-2"},
	}

	merged := Merge(vector, external)

	if len(merged) != 3 {
		t.Fatalf("expected 3 merged items, got %d", len(merged))
	}
	seen := map[string]bool{}
	for _, item := range merged {
		if seen[item.Content] {
			t.Errorf("duplicate content survived merge: %s", item.Content)
		}
		seen[item.Content] = true
	}
	for _, item := range merged {
		if item.Content == "beta" && item.Score != 0.7 {
			t.Errorf("expected beta to keep max score 0.7, got %f", item.Score)
		}
	}
	for i := 1; i < len(merged); i++ {
		if merged[i-1].Score < merged[i].Score {
			t.Errorf("merged items not sorted descending at index %d", i)
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	vector := []pipeline.KnowledgeItem{
		{Content: "a", Score: 0.8, Source: "doc-1"},
		{Content: "b", Score: 0.8, Source: "doc-2"},
		{Content: "c", Score: 0.6, Source: "doc-3"},
	}
	external := []pipeline.KnowledgeItem{
		{Content: "d", Score: 0.7, Source: "web-1"},
	}

	first := Merge(vector, external)
	second := Merge(vector, external)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("merge is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestShouldSearchExternal(t *testing.T) {
	tests := []struct {
		name             string
		forced           bool
		vectorConfidence float64
		vectorHits       int
		want             bool
	}{
		{name: "forced always searches", forced: true, vectorConfidence: 0.99, vectorHits: 10, want: true},
		{name: "sufficient confidence skips", vectorConfidence: 0.9, vectorHits: 5, want: false},
		{name: "confidence exactly at threshold skips", vectorConfidence: 0.85, vectorHits: 5, want: false},
		{name: "too few hits searches", vectorConfidence: 0.5, vectorHits: 1, want: true},
		{name: "zero hits searches even when not forced", vectorConfidence: 0.0, vectorHits: 0, want: true},
		{name: "enough low-confidence hits still falls through to search", vectorConfidence: 0.5, vectorHits: 4, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := pipeline.NewRequestContext()
			rc.AlwaysSearchExternal = tt.forced
			got := shouldSearchExternal(rc, tt.vectorConfidence, tt.vectorHits)
			if got != tt.want {
				t.Errorf("shouldSearchExternal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetrieveEmptyStoreTriggersExternalSearch(t *testing.T) {
	vector := &fakeVectorSearcher{items: nil}
	external := &fakeSearchProvider{results: []search.Result{
		{Title: "MCP", Link: "https://example.com/mcp", Snippet: "MCP is a protocol."},
	}}
	stage := NewStage(vector, external, testLogger())

	rc := pipeline.NewRequestContext()
	rc.AlwaysSearchExternal = false

	kc := stage.Retrieve(context.Background(), "What is MCP?", rc)

	if external.calls != 1 {
		t.Fatalf("expected external search to run once, got %d calls", external.calls)
	}
	if len(kc.RelevantInfo) != 1 {
		t.Fatalf("expected 1 merged item, got %d", len(kc.RelevantInfo))
	}
	if kc.Confidence != pipeline.ExternalSearchConfidence {
		t.Errorf("expected confidence %.2f, got %.2f", pipeline.ExternalSearchConfidence, kc.Confidence)
	}
}

func TestRetrieveHighConfidenceSkipsExternal(t *testing.T) {
	vector := &fakeVectorSearcher{items: []pipeline.KnowledgeItem{
		{Content: "answer", Score: 0.92, Source: "doc-1"},
		{Content: "context", Score: 0.88, Source: "doc-2"},
	}}
	external := &fakeSearchProvider{}
	stage := NewStage(vector, external, testLogger())

	kc := stage.Retrieve(context.Background(), "known topic", pipeline.NewRequestContext())

	if external.calls != 0 {
		t.Errorf("expected no external search, got %d calls", external.calls)
	}
	if kc.Confidence != 0.92 {
		t.Errorf("expected confidence 0.92, got %f", kc.Confidence)
	}
}

func TestRetrieveTotalFailureReturnsEmptyContext(t *testing.T) {
	vector := &fakeVectorSearcher{err: fmt.Errorf("store down")}
	external := &fakeSearchProvider{err: fmt.Errorf("search down")}
	stage := NewStage(vector, external, testLogger())

	kc := stage.Retrieve(context.Background(), "anything", pipeline.NewRequestContext())

	if kc == nil {
		t.Fatal("retrieve must never return nil")
	}
	if len(kc.RelevantInfo) != 0 || len(kc.Sources) != 0 {
		t.Errorf("expected empty context, got %+v", kc)
	}
	if kc.Confidence != 0.0 {
		t.Errorf("expected confidence 0.0, got %f", kc.Confidence)
	}
	if kc.Outcome != pipeline.OutcomeDegraded {
		t.Errorf("expected degraded outcome, got %v", kc.Outcome)
	}
}
