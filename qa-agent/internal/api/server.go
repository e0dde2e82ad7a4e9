// Package api exposes the workflow engine over HTTP and a small MCP-style
// JSON-RPC endpoint.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/storage"
)

// Asker runs one question through the workflow.
type Asker interface {
	Run(ctx context.Context, question string) (*graph.State, error)
}

// Stats reads the query-log aggregates.
type Stats interface {
	CategoryCounts(ctx context.Context) ([]storage.CategoryCount, error)
	MonthlyCounts(ctx context.Context) ([]storage.MonthlyCount, error)
	MonthlyTotals(ctx context.Context) ([]storage.MonthlyTotal, error)
}

// ChunkCounter reports the size of the vector store.
type ChunkCounter interface {
	Count(ctx context.Context) (int, error)
}

type Server struct {
	engine  Asker
	stats   Stats
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewServer returns a Server. stats may be nil, in which case the stats
// endpoints and the query_stats tool report the feature as unavailable.
func NewServer(engine Asker, stats Stats, timeout time.Duration, log logrus.FieldLogger) *Server {
	return &Server{engine: engine, stats: stats, timeout: timeout, log: log}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(instrument)

	router.HandleFunc("/query", s.handleQuery).Methods("POST")
	router.HandleFunc("/stats/categories", s.handleCategoryStats).Methods("GET")
	router.HandleFunc("/stats/monthly", s.handleMonthlyStats).Methods("GET")

	// MCP endpoints
	router.HandleFunc("/mcp", s.handleMCP).Methods("POST")
	router.HandleFunc("/tools/list", handleToolsList).Methods("GET")

	router.HandleFunc("/health", handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler())
	return router
}

// TrackChunks refreshes the indexed-chunk gauge every interval until ctx
// is done.
func TrackChunks(ctx context.Context, c ChunkCounter, interval time.Duration, log logrus.FieldLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := c.Count(ctx); err == nil {
			indexedChunks.Set(float64(n))
		} else if ctx.Err() == nil {
			log.WithError(err).Debug("Chunk count failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
