package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
)

const (
	defaultCacheTTL = 10 * time.Minute
	cacheOpTimeout  = 2 * time.Second
)

// resultStore is the key-value surface Cached needs. A miss is redis.Nil.
type resultStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisStore struct{ rdb *redis.Client }

func (s redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.rdb.Get(ctx, key).Bytes()
}

func (s redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// Cached serves repeated queries from Redis. Cache failures only cost a
// call to the wrapped provider.
type Cached struct {
	next  graph.WebSearch
	store resultStore
	ttl   time.Duration
	log   logrus.FieldLogger
}

// NewCached wraps next. A nil rdb disables caching.
func NewCached(next graph.WebSearch, rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *Cached {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Cached{next: next, ttl: ttl, log: log}
	if rdb != nil {
		c.store = redisStore{rdb: rdb}
	}
	return c
}

func (c *Cached) Search(ctx context.Context, query string) ([]graph.SearchResult, error) {
	if c.store == nil {
		return c.next.Search(ctx, query)
	}

	key := cacheKey(query)
	results, err := c.get(ctx, key)
	if err == nil {
		cacheHits.Inc()
		return results, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.log.WithError(err).Warn("search cache read failed")
	}
	cacheMisses.Inc()

	results, err = c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := c.set(ctx, key, results); err != nil {
		c.log.WithError(err).Warn("search cache write failed")
	}
	return results, nil
}

func (c *Cached) get(ctx context.Context, key string) ([]graph.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	data, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var results []graph.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Cached) set(ctx context.Context, key string, results []graph.SearchResult) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheOpTimeout)
	defer cancel()

	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, data, c.ttl)
}

// cacheKey normalizes case and whitespace so trivially different phrasings
// share an entry.
func cacheKey(query string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(norm))
	return "websearch:" + hex.EncodeToString(sum[:])
}
