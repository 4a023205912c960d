package search

import "context"

// Result is a single hit from an external search provider.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// Provider defines the contract for any web-search backend.
type Provider interface {
	Search(ctx context.Context, query string, count int) ([]Result, error)
}
