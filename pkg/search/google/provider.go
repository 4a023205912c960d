package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ai-orchestrator-be/pkg/search"
)

const (
	endpoint       = "https://www.googleapis.com/customsearch/v1"
	maxAttempts    = 3
	initialBackoff = 1 * time.Second
)

// GoogleProvider queries the Google Custom Search JSON API.
type GoogleProvider struct {
	APIKey   string
	EngineId string
	Client   *http.Client
}

var _ search.Provider = &GoogleProvider{}

func NewGoogleProvider(apiKey, engineId string) *GoogleProvider {
	return &GoogleProvider{
		APIKey:   apiKey,
		EngineId: engineId,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type searchResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
	} `json:"items"`
}

func (p *GoogleProvider) Search(ctx context.Context, query string, count int) ([]search.Result, error) {
	if count <= 0 {
		count = 3
	}
	if count > 10 {
		count = 10 // API maximum per request
	}

	params := url.Values{}
	params.Set("key", p.APIKey)
	params.Set("cx", p.EngineId)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", count))

	body, err := p.doWithRetry(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal search response: %w", err)
	}

	results := make([]search.Result, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		results = append(results, search.Result{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
			Source:  item.DisplayLink,
		})
	}
	return results, nil
}

func (p *GoogleProvider) doWithRetry(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := p.Client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("search request failed: %w", err)
		} else {
			bodyBytes, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("read response: %w", readErr)
			} else if resp.StatusCode == http.StatusOK {
				return bodyBytes, nil
			} else if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
				return nil, fmt.Errorf("search error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
			} else {
				lastErr = fmt.Errorf("search error: status %d", resp.StatusCode)
			}
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("search: all %d attempts failed: %w", maxAttempts, lastErr)
}
