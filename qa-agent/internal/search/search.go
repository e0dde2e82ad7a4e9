// Package search provides WebSearch capabilities backed by Tavily or Google
// Programmable Search, with an optional Redis result cache.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
)

const (
	ProviderTavily = "tavily"
	ProviderGoogle = "google"
)

// Config selects a search provider.
type Config struct {
	Provider   string
	MaxResults int

	TavilyAPIKey string
	TavilyDepth  string

	Google GoogleConfig
}

// New builds the provider named by cfg.Provider.
func New(ctx context.Context, cfg Config) (graph.WebSearch, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderTavily, "":
		return NewTavily(cfg.TavilyAPIKey, cfg.TavilyDepth, cfg.MaxResults), nil
	case ProviderGoogle:
		gc := cfg.Google
		if gc.MaxResults == 0 {
			gc.MaxResults = cfg.MaxResults
		}
		return NewGoogle(ctx, gc)
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}
}

var (
	cacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rag_search_cache_hits_total",
			Help: "Total number of web search cache hits",
		},
	)
	cacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rag_search_cache_misses_total",
			Help: "Total number of web search cache misses",
		},
	)
)

func init() {
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(cacheMisses)
}
