// Package config loads agent settings from .env, an optional YAML file and
// the process environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
)

type Config struct {
	ListenAddr     string        `yaml:"listen_addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	DatabaseURL string        `yaml:"database_url"`
	QueryLogURL string        `yaml:"query_log_url"`
	RedisAddr   string        `yaml:"redis_addr"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`

	LLM       LLM       `yaml:"llm"`
	Embedding Embedding `yaml:"embedding"`
	Search    Search    `yaml:"search"`
	Workflow  Workflow  `yaml:"workflow"`
	Log       Log       `yaml:"log"`
}

type LLM struct {
	Provider  string        `yaml:"provider"`
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	MaxTokens int           `yaml:"max_tokens"`
	Retries   int           `yaml:"retries"`
	RetryBase time.Duration `yaml:"retry_base"`
}

type Embedding struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

type Search struct {
	Provider       string `yaml:"provider"`
	MaxResults     int    `yaml:"max_results"`
	TavilyAPIKey   string `yaml:"tavily_api_key"`
	TavilyDepth    string `yaml:"tavily_depth"`
	GoogleAPIKey   string `yaml:"google_api_key"`
	GoogleCredFile string `yaml:"google_credentials_file"`
	GoogleEngineID string `yaml:"google_engine_id"`
}

type Workflow struct {
	Categorize         bool `yaml:"categorize"`
	GradingConcurrency int  `yaml:"grading_concurrency"`
	AsyncQueryLog      bool `yaml:"async_query_log"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		ListenAddr:     ":8080",
		RequestTimeout: 2 * time.Minute,
		CacheTTL:       time.Hour,
		LLM: LLM{
			Provider:  "ollama",
			Model:     "llama3.2",
			Retries:   2,
			RetryBase: 500 * time.Millisecond,
		},
		Embedding: Embedding{Model: "nomic-embed-text"},
		Search:    Search{Provider: "tavily", MaxResults: 3, TavilyDepth: "advanced"},
		Workflow:  Workflow{Categorize: true, GradingConcurrency: 4},
		Log:       Log{Level: "info", Format: "text"},
	}
}

// Load reads .env (if present), the YAML file at path (if non-empty) and
// then environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %w", graph.ErrConfiguration, err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", graph.ErrConfiguration, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", graph.ErrConfiguration, path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)
	if port := os.Getenv("PORT"); port != "" {
		c.ListenAddr = ":" + port
	}
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.QueryLogURL = getEnv("QUERY_LOG_DATABASE_URL", c.QueryLogURL)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)

	c.LLM.Provider = getEnv("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.BaseURL = getEnv("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.APIKey = getEnv("LLM_API_KEY", c.LLM.APIKey)
	switch c.LLM.Provider {
	case "openai":
		c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	case "groq":
		c.LLM.APIKey = getEnv("GROQ_API_KEY", c.LLM.APIKey)
	case "anthropic":
		c.LLM.APIKey = getEnv("ANTHROPIC_API_KEY", c.LLM.APIKey)
	case "ollama":
		c.LLM.BaseURL = getEnv("OLLAMA_URL", c.LLM.BaseURL)
	}

	c.Embedding.URL = getEnv("EMBEDDING_URL", getEnv("OLLAMA_URL", c.Embedding.URL))
	c.Embedding.Model = getEnv("EMBEDDING_MODEL", c.Embedding.Model)

	c.Search.Provider = getEnv("SEARCH_PROVIDER", c.Search.Provider)
	c.Search.TavilyAPIKey = getEnv("TAVILY_API_KEY", c.Search.TavilyAPIKey)
	c.Search.TavilyDepth = getEnv("TAVILY_SEARCH_DEPTH", c.Search.TavilyDepth)
	c.Search.GoogleAPIKey = getEnv("GOOGLE_API_KEY", c.Search.GoogleAPIKey)
	c.Search.GoogleCredFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", c.Search.GoogleCredFile)
	c.Search.GoogleEngineID = getEnv("GOOGLE_CSE_ID", c.Search.GoogleEngineID)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	var err error
	if c.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.CacheTTL, err = envDuration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	if c.LLM.Retries, err = envInt("LLM_RETRIES", c.LLM.Retries); err != nil {
		return err
	}
	if c.Search.MaxResults, err = envInt("SEARCH_MAX_RESULTS", c.Search.MaxResults); err != nil {
		return err
	}
	if c.Workflow.GradingConcurrency, err = envInt("GRADING_CONCURRENCY", c.Workflow.GradingConcurrency); err != nil {
		return err
	}
	if c.Workflow.Categorize, err = envBool("CATEGORIZE", c.Workflow.Categorize); err != nil {
		return err
	}
	if c.Workflow.AsyncQueryLog, err = envBool("ASYNC_QUERY_LOG", c.Workflow.AsyncQueryLog); err != nil {
		return err
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case "ollama":
	case "openai", "groq", "anthropic":
		if c.LLM.APIKey == "" {
			errs = append(errs, fmt.Errorf("llm provider %s requires an API key", c.LLM.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm model is empty"))
	}
	if c.Search.MaxResults < 1 {
		errs = append(errs, errors.New("search max_results must be positive"))
	}
	if c.Workflow.GradingConcurrency < 1 {
		errs = append(errs, errors.New("grading_concurrency must be at least 1"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", graph.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", graph.ErrConfiguration, key, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", graph.ErrConfiguration, key, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", graph.ErrConfiguration, key, err)
	}
	return d, nil
}
