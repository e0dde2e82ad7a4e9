package search

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
)

const cseScope = "https://www.googleapis.com/auth/cse"

// GoogleConfig configures the Custom Search JSON API. Either APIKey or
// CredentialsFile (a service account JSON key) must be set.
type GoogleConfig struct {
	APIKey          string
	CredentialsFile string
	EngineID        string
	MaxResults      int
}

// Google searches with a Programmable Search Engine.
type Google struct {
	svc *customsearch.Service
	cx  string
	num int64
}

// NewGoogle builds the Custom Search client. Extra options are appended after
// the credentials, so they can override the endpoint or HTTP client.
func NewGoogle(ctx context.Context, cfg GoogleConfig, extra ...option.ClientOption) (*Google, error) {
	if cfg.EngineID == "" {
		return nil, errors.New("google search: engine id is required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("google search: reading credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, cseScope)
		if err != nil {
			return nil, fmt.Errorf("google search: parsing credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(oauth2.ReuseTokenSource(nil, creds.TokenSource)))
	default:
		return nil, errors.New("google search: api key or credentials file is required")
	}

	svc, err := customsearch.NewService(ctx, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}

	num := int64(cfg.MaxResults)
	if num <= 0 || num > 10 {
		num = 3
	}
	return &Google{svc: svc, cx: cfg.EngineID, num: num}, nil
}

func (g *Google) Search(ctx context.Context, query string) ([]graph.SearchResult, error) {
	res, err := g.svc.Cse.List().Q(query).Cx(g.cx).Num(g.num).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: google search: %w", graph.ErrTransport, err)
	}
	results := make([]graph.SearchResult, 0, len(res.Items))
	for _, item := range res.Items {
		results = append(results, graph.SearchResult{
			Title:   item.Title,
			URL:     item.Link,
			Content: item.Snippet,
		})
	}
	return results, nil
}
