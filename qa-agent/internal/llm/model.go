// Package llm implements the language-model backed capabilities of the
// workflow: relevance grading, query rewriting and answer generation.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ChatModel completes a single system + user prompt pair.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Provider names accepted by NewChatModel.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// Config selects and configures a ChatModel.
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Retries   int
	RetryBase time.Duration
}

// NewChatModel builds the provider named by cfg.Provider, wrapped with
// retries when cfg.Retries > 0.
func NewChatModel(cfg Config) (ChatModel, error) {
	var m ChatModel
	switch strings.ToLower(cfg.Provider) {
	case ProviderOllama, "":
		m = NewOllama(cfg.BaseURL, cfg.Model)
	case ProviderOpenAI:
		m = NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case ProviderGroq:
		base := cfg.BaseURL
		if base == "" {
			base = GroqBaseURL
		}
		m = NewOpenAI(cfg.APIKey, base, cfg.Model)
	case ProviderAnthropic:
		m = NewAnthropic(cfg.APIKey, cfg.Model, cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if cfg.Retries > 0 {
		m = WithRetry(m, cfg.Retries, cfg.RetryBase)
	}
	return m, nil
}
