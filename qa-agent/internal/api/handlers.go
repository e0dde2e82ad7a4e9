package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
)

type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the public view of a finished run. The web-search flag
// is internal to the workflow and not exposed.
type QueryResponse struct {
	Question   string           `json:"question"`
	Category   string           `json:"category,omitempty"`
	Generation string           `json:"generation"`
	Documents  []graph.Document `json:"documents"`
	Path       []graph.Stage    `json:"path"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

var errStatsUnavailable = errors.New("query log is not configured")

// maxBodyBytes bounds JSON request bodies on /query and /mcp.
const maxBodyBytes = 1 << 20

// decodeBody decodes a size-limited JSON body into v. It reports whether
// the body exceeded maxBodyBytes.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) (tooLarge bool, err error) {
	err = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe), err
}

func newQueryResponse(s *graph.State) QueryResponse {
	docs := s.Documents
	if docs == nil {
		docs = []graph.Document{}
	}
	return QueryResponse{
		Question:   s.Question,
		Category:   s.Category,
		Generation: s.Generation,
		Documents:  docs,
		Path:       s.Path,
	}
}

// ask runs one question under the server's timeout.
func (s *Server) ask(ctx context.Context, question string) (*graph.State, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.engine.Run(ctx, question)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if tooLarge, err := decodeBody(w, r, &req); err != nil {
		if tooLarge {
			writeJSONResponse(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSONResponse(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeJSONResponse(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}

	state, err := s.ask(r.Context(), question)
	if err != nil {
		status, body := s.runFailure(err)
		writeJSONResponse(w, status, body)
		return
	}
	writeJSONResponse(w, http.StatusOK, newQueryResponse(state))
}

func (s *Server) runFailure(err error) (int, errorResponse) {
	body := errorResponse{Error: err.Error()}
	stage, ok := graph.StageOf(err)
	if ok {
		body.Stage = string(stage)
	}
	s.log.WithError(err).WithField("stage", body.Stage).Error("Query failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, body
	case ok:
		return http.StatusBadGateway, body
	default:
		return http.StatusInternalServerError, body
	}
}

func (s *Server) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, errorResponse{Error: errStatsUnavailable.Error()})
		return
	}
	counts, err := s.stats.CategoryCounts(r.Context())
	if err != nil {
		s.log.WithError(err).Error("Category stats failed")
		writeJSONResponse(w, http.StatusInternalServerError, errorResponse{Error: "failed to query category stats"})
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"categories": counts})
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, errorResponse{Error: errStatsUnavailable.Error()})
		return
	}
	counts, err := s.stats.MonthlyCounts(r.Context())
	if err != nil {
		s.log.WithError(err).Error("Monthly stats failed")
		writeJSONResponse(w, http.StatusInternalServerError, errorResponse{Error: "failed to query monthly stats"})
		return
	}
	totals, err := s.stats.MonthlyTotals(r.Context())
	if err != nil {
		s.log.WithError(err).Error("Monthly totals failed")
		writeJSONResponse(w, http.StatusInternalServerError, errorResponse{Error: "failed to query monthly stats"})
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"monthly": counts, "totals": totals})
}
