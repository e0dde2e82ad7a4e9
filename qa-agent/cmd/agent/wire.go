package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/classifier"
	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/llm"
	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/processing"
	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/search"
	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/storage"
)

// runtime holds the resources behind an engine so they can be closed.
type runtime struct {
	engine   *graph.Engine
	pool     *pgxpool.Pool
	vectors  *storage.VectorStore
	queryLog *storage.QueryLogStore
	redis    *redis.Client
}

func (r *runtime) Close() {
	r.engine.Wait()
	if r.queryLog != nil {
		r.queryLog.Close()
	}
	if r.redis != nil {
		r.redis.Close()
	}
	r.pool.Close()
}

func (a *app) openVectorStore(ctx context.Context) (*pgxpool.Pool, *storage.VectorStore, error) {
	pool, err := storage.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	vs := storage.NewVectorStore(pool, processing.EmbeddingDim)
	if err := vs.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool, vs, nil
}

// openQueryLog connects the category log. A failure is logged and the
// engine runs without one.
func (a *app) openQueryLog(ctx context.Context) *storage.QueryLogStore {
	url := a.cfg.QueryLogURL
	if url == "" {
		url = a.cfg.DatabaseURL
	}
	ql, err := storage.OpenQueryLog(ctx, url)
	if err == nil {
		err = ql.Migrate(ctx)
	}
	if err != nil {
		a.log.WithError(err).Warn("Query log unavailable, categories will not be recorded")
		if ql != nil {
			ql.Close()
		}
		return nil
	}
	return ql
}

func (a *app) openRedis(ctx context.Context) *redis.Client {
	if a.cfg.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		a.log.WithError(err).Warn("Redis unavailable, web search results will not be cached")
		rdb.Close()
		return nil
	}
	return rdb
}

func (a *app) buildRuntime(ctx context.Context) (*runtime, error) {
	cfg := a.cfg

	model, err := llm.NewChatModel(llm.Config{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		MaxTokens: cfg.LLM.MaxTokens,
		Retries:   cfg.LLM.Retries,
		RetryBase: cfg.LLM.RetryBase,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", graph.ErrConfiguration, err)
	}

	web, err := search.New(ctx, search.Config{
		Provider:     cfg.Search.Provider,
		MaxResults:   cfg.Search.MaxResults,
		TavilyAPIKey: cfg.Search.TavilyAPIKey,
		TavilyDepth:  cfg.Search.TavilyDepth,
		Google: search.GoogleConfig{
			APIKey:          cfg.Search.GoogleAPIKey,
			CredentialsFile: cfg.Search.GoogleCredFile,
			EngineID:        cfg.Search.GoogleEngineID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", graph.ErrConfiguration, err)
	}

	pool, vectors, err := a.openVectorStore(ctx)
	if err != nil {
		return nil, err
	}
	rt := &runtime{pool: pool, vectors: vectors, redis: a.openRedis(ctx)}

	caps := graph.Capabilities{
		Retriever: storage.NewVectorRetriever(
			processing.NewEmbedder(cfg.Embedding.URL, cfg.Embedding.Model), vectors),
		Grader:    llm.NewGrader(model),
		Rewriter:  llm.NewRewriter(model),
		WebSearch: search.NewCached(web, rt.redis, cfg.CacheTTL, a.log),
		Generator: llm.NewGenerator(model),
	}
	if cfg.Workflow.Categorize {
		caps.Categorizer = classifier.Keyword{}
		if rt.queryLog = a.openQueryLog(ctx); rt.queryLog != nil {
			caps.QueryLog = rt.queryLog
		}
	}

	rt.engine, err = graph.New(caps,
		graph.WithCategorization(cfg.Workflow.Categorize),
		graph.WithGradingConcurrency(cfg.Workflow.GradingConcurrency),
		graph.WithAsyncQueryLog(cfg.Workflow.AsyncQueryLog),
		graph.WithLogger(a.log),
	)
	if err != nil {
		if rt.queryLog != nil {
			rt.queryLog.Close()
		}
		if rt.redis != nil {
			rt.redis.Close()
		}
		pool.Close()
		return nil, err
	}
	return rt, nil
}
