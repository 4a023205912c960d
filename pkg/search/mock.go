package search

import (
	"context"
	"fmt"
)

// MockProvider returns deterministic results without network access.
// Used when no search credentials are configured, and in tests.
type MockProvider struct{}

var _ Provider = &MockProvider{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if count <= 0 {
		count = 3
	}
	results := make([]Result, count)
	for i := 0; i < count; i++ {
		results[i] = Result{
			Title:   fmt.Sprintf("Mock result %d for %q", i+1, query),
			Link:    fmt.Sprintf("https://example.com/results/%d", i+1),
			Snippet: fmt.Sprintf("Snippet %d describing %q.", i+1, query),
			Source:  "example.com",
		}
	}
	return results, nil
}
