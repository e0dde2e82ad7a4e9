package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
)

// TavilyURL is the public Tavily search endpoint.
const TavilyURL = "https://api.tavily.com/search"

const (
	defaultRateLimitRetries = 4
	defaultRetryDelay       = time.Second
	maxRetryDelay           = 30 * time.Second
)

// Tavily calls the Tavily search API.
type Tavily struct {
	APIKey string
	// Depth controls Tavily's search_depth parameter (basic or advanced).
	Depth      string
	MaxResults int
	URL        string
	// RateLimitRetries caps the retries after a 429 response.
	RateLimitRetries int
	RetryDelay       time.Duration
	client           *http.Client
}

// NewTavily constructs a Tavily search provider.
func NewTavily(apiKey, depth string, maxResults int) *Tavily {
	if depth == "" {
		depth = "advanced"
	}
	if maxResults <= 0 {
		maxResults = 3
	}
	return &Tavily{
		APIKey:           apiKey,
		Depth:            depth,
		MaxResults:       maxResults,
		URL:              TavilyURL,
		RateLimitRetries: defaultRateLimitRetries,
		RetryDelay:       defaultRetryDelay,
		client:           &http.Client{Timeout: 30 * time.Second},
	}
}

// Search posts a query to Tavily.
func (t *Tavily) Search(ctx context.Context, query string) ([]graph.SearchResult, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, fmt.Errorf("%w: tavily: %w", graph.ErrTransport, errors.New("API key is missing"))
	}

	payload, err := json.Marshal(map[string]any{
		"query":        query,
		"search_depth": t.Depth,
		"max_results":  t.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: tavily: %w", graph.ErrTransport, err)
	}

	var resp *http.Response
	delay := t.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("%w: tavily: %w", graph.ErrTransport, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+t.APIKey)

		resp, err = t.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: tavily: %w", graph.ErrTransport, err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()
		if attempt >= t.RateLimitRetries {
			return nil, fmt.Errorf("%w: tavily: rate limited after %d attempts", graph.ErrTransport, attempt+1)
		}

		// Back off and retry on 429, doubling the delay each time up to 30 s.
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: tavily: %w", graph.ErrTransport, ctx.Err())
		case <-time.After(delay):
		}
		delay = min(delay*2, maxRetryDelay)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tavily http %d", graph.ErrTransport, resp.StatusCode)
	}

	var response struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: tavily: decoding response: %w", graph.ErrTransport, err)
	}

	results := make([]graph.SearchResult, 0, len(response.Results))
	for _, r := range response.Results {
		results = append(results, graph.SearchResult{Title: r.Title, URL: r.URL, Content: r.Content})
		if len(results) >= t.MaxResults {
			break
		}
	}
	return results, nil
}
