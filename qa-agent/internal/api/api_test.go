package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/storage"
)

type stubAsker struct {
	state *graph.State
	err   error
	wait  bool
}

func (s *stubAsker) Run(ctx context.Context, question string) (*graph.State, error) {
	if s.wait {
		<-ctx.Done()
		return nil, &graph.StageError{Stage: graph.StageGenerate, Err: ctx.Err()}
	}
	if s.err != nil {
		return nil, s.err
	}
	st := *s.state
	st.Question = question
	return &st, nil
}

type stubStats struct{ err error }

func (s stubStats) CategoryCounts(context.Context) ([]storage.CategoryCount, error) {
	return []storage.CategoryCount{{Category: "Sleep", Count: 4}, {Category: "Diet", Count: 1}}, s.err
}

func (s stubStats) MonthlyCounts(context.Context) ([]storage.MonthlyCount, error) {
	return []storage.MonthlyCount{{YearMonth: "2024-05", Category: "Sleep", Count: 4}}, s.err
}

func (s stubStats) MonthlyTotals(context.Context) ([]storage.MonthlyTotal, error) {
	return []storage.MonthlyTotal{{YearMonth: "2024-05", Count: 4}, {YearMonth: "2024-04", Count: 1}}, s.err
}

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func answered() *stubAsker {
	return &stubAsker{state: &graph.State{
		Category:        "Sleep",
		Generation:      "Adults need 7-9 hours.",
		WebSearchNeeded: graph.SearchNo,
		Documents:       []graph.Document{{Content: "sleep doc", Metadata: map[string]string{"file_name": "sleep.pdf"}}},
		Path:            []graph.Stage{graph.StageRetrieve, graph.StageCategorize, graph.StageGrade, graph.StageGenerate},
	}}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQuery(t *testing.T) {
	h := NewServer(answered(), nil, time.Second, quiet()).Handler()

	rec := do(t, h, "POST", "/query", `{"question":"How much sleep?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "How much sleep?", resp.Question)
	assert.Equal(t, "Sleep", resp.Category)
	assert.Equal(t, "Adults need 7-9 hours.", resp.Generation)
	assert.Len(t, resp.Documents, 1)
	assert.Equal(t, graph.StageGenerate, resp.Path[3])
	assert.NotContains(t, rec.Body.String(), "web_search_needed")
	assert.NotContains(t, rec.Body.String(), "WebSearchNeeded")
}

func TestQueryBadRequest(t *testing.T) {
	h := NewServer(answered(), nil, time.Second, quiet()).Handler()

	for _, body := range []string{`{"question":"   "}`, `{}`, `not json`} {
		rec := do(t, h, "POST", "/query", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestOversizedBodiesRejected(t *testing.T) {
	asker := answered()
	h := NewServer(asker, nil, time.Second, quiet()).Handler()
	huge := `{"question":"` + strings.Repeat("a", maxBodyBytes+1) + `"}`

	rec := do(t, h, "POST", "/query", huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = do(t, h, "POST", "/mcp", `{"id":"1","method":"tools/call","params":{"name":"ask_question","arguments":{"question":"`+
		strings.Repeat("a", maxBodyBytes+1)+`"}}}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var resp MCPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidRequest, resp.Error.Code)
}

func TestQueryStageError(t *testing.T) {
	asker := &stubAsker{err: &graph.StageError{Stage: graph.StageWebSearch, Err: graph.ErrTransport}}
	h := NewServer(asker, nil, time.Second, quiet()).Handler()

	rec := do(t, h, "POST", "/query", `{"question":"q"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "web_search", body.Stage)
	assert.Contains(t, body.Error, "transport")
}

func TestQueryTimeout(t *testing.T) {
	h := NewServer(&stubAsker{wait: true}, nil, 20*time.Millisecond, quiet()).Handler()

	rec := do(t, h, "POST", "/query", `{"question":"q"}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stage":"generate_answer"`)
}

func TestQueryConfigError(t *testing.T) {
	h := NewServer(&stubAsker{err: errors.New("engine not ready")}, nil, time.Second, quiet()).Handler()
	rec := do(t, h, "POST", "/query", `{"question":"q"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStats(t *testing.T) {
	h := NewServer(answered(), stubStats{}, time.Second, quiet()).Handler()

	rec := do(t, h, "GET", "/stats/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"categories":[{"category":"Sleep","count":4},{"category":"Diet","count":1}]}`, rec.Body.String())

	rec = do(t, h, "GET", "/stats/monthly", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"monthly":[{"year_month":"2024-05","category":"Sleep","count":4}],
		"totals":[{"year_month":"2024-05","count":4},{"year_month":"2024-04","count":1}]
	}`, rec.Body.String())

	h = NewServer(answered(), stubStats{err: errors.New("db down")}, time.Second, quiet()).Handler()
	assert.Equal(t, http.StatusInternalServerError, do(t, h, "GET", "/stats/categories", "").Code)

	h = NewServer(answered(), nil, time.Second, quiet()).Handler()
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, "GET", "/stats/monthly", "").Code)
}

func mcpCall(t *testing.T, h http.Handler, body string) MCPResponse {
	t.Helper()
	rec := do(t, h, "POST", "/mcp", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp MCPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestMCPToolsList(t *testing.T) {
	h := NewServer(answered(), nil, time.Second, quiet()).Handler()

	resp := mcpCall(t, h, `{"id":"1","method":"tools/list"}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, "1", resp.ID)
	assert.Contains(t, fmtJSON(t, resp.Result), "ask_question")

	rec := do(t, h, "GET", "/tools/list", "")
	assert.Contains(t, rec.Body.String(), "query_stats")
}

func TestMCPAskQuestion(t *testing.T) {
	h := NewServer(answered(), stubStats{}, time.Second, quiet()).Handler()

	resp := mcpCall(t, h, `{"id":"7","method":"tools/call","params":{"name":"ask_question","arguments":{"question":"sleep?"}}}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, "7", resp.ID)
	assert.Contains(t, fmtJSON(t, resp.Result), "Adults need 7-9 hours.")

	resp = mcpCall(t, h, `{"id":"8","method":"tools/call","params":{"name":"ask_question","arguments":{}}}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestMCPAskQuestionFailure(t *testing.T) {
	asker := &stubAsker{err: &graph.StageError{Stage: graph.StageGrade, Err: graph.ErrModelInvocation}}
	h := NewServer(asker, nil, time.Second, quiet()).Handler()

	resp := mcpCall(t, h, `{"id":"1","method":"tools/call","params":{"name":"ask_question","arguments":{"question":"q"}}}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeRunFailed, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "grade_documents")
}

func TestMCPQueryStats(t *testing.T) {
	h := NewServer(answered(), stubStats{}, time.Second, quiet()).Handler()

	resp := mcpCall(t, h, `{"id":"1","method":"tools/call","params":{"name":"query_stats","arguments":{"kind":"monthly"}}}`)
	require.Nil(t, resp.Error)
	assert.Contains(t, fmtJSON(t, resp.Result), "2024-05")

	resp = mcpCall(t, h, `{"id":"2","method":"tools/call","params":{"name":"query_stats","arguments":{"kind":"totals"}}}`)
	require.Nil(t, resp.Error)
	assert.Contains(t, fmtJSON(t, resp.Result), `"kind":"totals"`)
	assert.Contains(t, fmtJSON(t, resp.Result), `{"year_month":"2024-04","count":1}`)

	resp = mcpCall(t, h, `{"id":"2","method":"tools/call","params":{"name":"query_stats","arguments":{"kind":"weekly"}}}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestMCPErrors(t *testing.T) {
	h := NewServer(answered(), nil, time.Second, quiet()).Handler()

	assert.Equal(t, codeParseError, mcpCall(t, h, `{`).Error.Code)
	assert.Equal(t, codeMethodNotFound, mcpCall(t, h, `{"id":"1","method":"resources/list"}`).Error.Code)
	assert.Equal(t, codeInvalidParams, mcpCall(t, h, `{"id":"1","method":"tools/call","params":{}}`).Error.Code)
	assert.Equal(t, codeMethodNotFound,
		mcpCall(t, h, `{"id":"1","method":"tools/call","params":{"name":"get_weather"}}`).Error.Code)
	assert.Equal(t, codeUnavailable,
		mcpCall(t, h, `{"id":"1","method":"tools/call","params":{"name":"query_stats"}}`).Error.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := NewServer(answered(), nil, time.Second, quiet()).Handler()

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "success"))
	rec := do(t, h, "GET", "/health", "")
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "success")))

	rec = do(t, h, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rag_http_requests_total")
}

type fixedCounter int

func (c fixedCounter) Count(context.Context) (int, error) { return int(c), nil }

func TestTrackChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		TrackChunks(ctx, fixedCounter(42), time.Hour, quiet())
		close(done)
	}()

	assert.Eventually(t, func() bool { return testutil.ToFloat64(indexedChunks) == 42 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func fmtJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
