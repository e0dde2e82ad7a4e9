package search

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
)

func TestTavilySearch(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tvly-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"results":[
			{"title":"t1","url":"https://1.example","content":"c1"},
			{"title":"t2","url":"https://2.example","content":"c2"},
			{"title":"t3","url":"https://3.example","content":"c3"},
			{"title":"t4","url":"https://4.example","content":"c4"}]}`)
	}))
	defer srv.Close()

	tv := NewTavily("tvly-key", "", 3)
	tv.URL = srv.URL

	results, err := tv.Search(context.Background(), "capital of India")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, graph.SearchResult{Title: "t1", URL: "https://1.example", Content: "c1"}, results[0])
	assert.Equal(t, "capital of India", body["query"])
	assert.Equal(t, "advanced", body["search_depth"])
	assert.EqualValues(t, 3, body["max_results"])
}

func TestTavilyRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, `{"results":[]}`)
	}))
	defer srv.Close()

	tv := NewTavily("k", "basic", 3)
	tv.URL = srv.URL
	results, err := tv.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTavilyGivesUpOnPersistentRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tv := NewTavily("k", "basic", 3)
	tv.URL = srv.URL
	tv.RateLimitRetries = 2
	tv.RetryDelay = time.Millisecond

	_, err := tv.Search(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrTransport)
	assert.Contains(t, err.Error(), "rate limited after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())
}

func TestTavilyErrorsAreTransport(t *testing.T) {
	_, err := NewTavily("", "", 0).Search(context.Background(), "q")
	assert.ErrorIs(t, err, graph.ErrTransport)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	tv := NewTavily("bad", "", 0)
	tv.URL = srv.URL
	_, err = tv.Search(context.Background(), "q")
	assert.ErrorIs(t, err, graph.ErrTransport)
	assert.Contains(t, err.Error(), "401")
}

func TestGoogleSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sleep hygiene", r.URL.Query().Get("q"))
		assert.Equal(t, "engine-1", r.URL.Query().Get("cx"))
		assert.Equal(t, "3", r.URL.Query().Get("num"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"items":[{"title":"Sleep","link":"https://sleep.example","snippet":"Keep a schedule."}]}`)
	}))
	defer srv.Close()

	g, err := NewGoogle(context.Background(),
		GoogleConfig{APIKey: "key", EngineID: "engine-1"},
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	results, err := g.Search(context.Background(), "sleep hygiene")
	require.NoError(t, err)
	assert.Equal(t, []graph.SearchResult{{Title: "Sleep", URL: "https://sleep.example", Content: "Keep a schedule."}}, results)
}

func TestNewGoogleValidation(t *testing.T) {
	_, err := NewGoogle(context.Background(), GoogleConfig{APIKey: "k"})
	assert.Error(t, err)
	_, err = NewGoogle(context.Background(), GoogleConfig{EngineID: "cx"})
	assert.Error(t, err)
	_, err = NewGoogle(context.Background(), GoogleConfig{EngineID: "cx", CredentialsFile: "/does/not/exist.json"})
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	p, err := New(context.Background(), Config{Provider: "tavily", TavilyAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &Tavily{}, p)

	_, err = New(context.Background(), Config{Provider: "bing"})
	assert.Error(t, err)
}

type countingSearch struct {
	calls atomic.Int32
	err   error
}

func (c *countingSearch) Search(context.Context, string) ([]graph.SearchResult, error) {
	c.calls.Add(1)
	return []graph.SearchResult{{Content: "fresh"}}, c.err
}

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCachedWithoutRedisPassesThrough(t *testing.T) {
	next := &countingSearch{}
	c := NewCached(next, nil, 0, quiet())

	for i := 0; i < 2; i++ {
		results, err := c.Search(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, "fresh", results[0].Content)
	}
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachedDegradesWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	next := &countingSearch{}
	c := NewCached(next, rdb, time.Minute, quiet())

	before := testutil.ToFloat64(cacheMisses)
	results, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "fresh", results[0].Content)
	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, before+1, testutil.ToFloat64(cacheMisses))

	next.err = errors.New("boom")
	_, err = c.Search(context.Background(), "q")
	assert.EqualError(t, err, "boom")
}

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func TestCachedServesRepeatedQueriesFromStore(t *testing.T) {
	next := &countingSearch{}
	store := newMemStore()
	c := NewCached(next, nil, 5*time.Minute, quiet())
	c.store = store

	hits := testutil.ToFloat64(cacheHits)
	results, err := c.Search(context.Background(), "Capital of India")
	require.NoError(t, err)
	assert.Equal(t, []graph.SearchResult{{Content: "fresh"}}, results)
	assert.Equal(t, 5*time.Minute, store.ttls[cacheKey("capital of india")])

	results, err = c.Search(context.Background(), "  capital   of india ")
	require.NoError(t, err)
	assert.Equal(t, []graph.SearchResult{{Content: "fresh"}}, results)
	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, hits+1, testutil.ToFloat64(cacheHits))
}

func TestCachedRoundTripsResults(t *testing.T) {
	c := NewCached(&countingSearch{}, nil, 0, quiet())
	c.store = newMemStore()

	want := []graph.SearchResult{
		{Title: "Delhi", URL: "https://delhi.example", Content: "New Delhi is the capital."},
		{Title: "India", URL: "https://india.example", Content: "Republic of India."},
	}
	require.NoError(t, c.set(context.Background(), "k", want))
	got, err := c.get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = c.get(context.Background(), "missing")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestCachedIgnoresCorruptEntries(t *testing.T) {
	next := &countingSearch{}
	store := newMemStore()
	store.data[cacheKey("q")] = []byte("not json")
	c := NewCached(next, nil, 0, quiet())
	c.store = store

	results, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "fresh", results[0].Content)
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCacheKeyNormalizes(t *testing.T) {
	assert.Equal(t, cacheKey("Capital  of India"), cacheKey(" capital of india "))
	assert.NotEqual(t, cacheKey("capital of india"), cacheKey("capital of france"))
	assert.Regexp(t, `^websearch:[0-9a-f]{64}$`, cacheKey("q"))
}
