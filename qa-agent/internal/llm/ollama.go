package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
)

// DefaultOllamaURL is where a local Ollama daemon listens.
const DefaultOllamaURL = "http://localhost:11434"

// request body for Ollama
type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

// Ollama streaming response chunks look like { "response": "...", "done": false }
// We only care about "response".
type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Ollama talks to the /api/generate endpoint of an Ollama server.
type Ollama struct {
	URL    string
	Model  string
	client *http.Client
}

// NewOllama constructs an Ollama model. An empty baseURL means DefaultOllamaURL.
func NewOllama(baseURL, model string) *Ollama {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	return &Ollama{
		URL:    strings.TrimRight(baseURL, "/"),
		Model:  model,
		client: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (o *Ollama) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody, err := json.Marshal(ollamaRequest{
		Model:   o.Model,
		Prompt:  user,
		System:  system,
		Options: map[string]any{"temperature": 0},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encoding ollama request: %w", graph.ErrModelInvocation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.URL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("%w: creating ollama request: %w", graph.ErrModelInvocation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: calling ollama: %w", graph.ErrModelInvocation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: ollama http %d: %s", graph.ErrModelInvocation, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// Read streaming response
	var out strings.Builder
	decoder := json.NewDecoder(resp.Body)
	for {
		var chunk ollamaResponse
		if err := decoder.Decode(&chunk); err == io.EOF {
			break
		} else if err != nil {
			return "", fmt.Errorf("%w: decoding ollama response: %w", graph.ErrModelInvocation, err)
		}
		if chunk.Error != "" {
			return "", fmt.Errorf("%w: ollama: %s", graph.ErrModelInvocation, chunk.Error)
		}
		out.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}
	return out.String(), nil
}
