package processing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// EmbeddingDim is the dimension of nomic-embed-text vectors.
const EmbeddingDim = 768

const (
	defaultEmbedURL   = "http://localhost:11434"
	defaultEmbedModel = "nomic-embed-text"
)

// request struct for Ollama API
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// response struct from Ollama API
type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embedder produces vectors with an Ollama embeddings endpoint.
type Embedder struct {
	URL    string
	Model  string
	Dim    int
	client *http.Client
}

// NewEmbedder returns an Embedder; empty arguments fall back to a local
// Ollama serving nomic-embed-text.
func NewEmbedder(baseURL, model string) *Embedder {
	if baseURL == "" {
		baseURL = defaultEmbedURL
	}
	if model == "" {
		model = defaultEmbedModel
	}
	return &Embedder{
		URL:    strings.TrimRight(baseURL, "/"),
		Model:  model,
		Dim:    EmbeddingDim,
		client: &http.Client{Timeout: time.Minute},
	}
}

// EmbedChunks produces embeddings for each chunk.
func (e *Embedder) EmbedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, errors.New("no chunks")
	}

	out := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		emb, err := e.embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed embedding chunk %d: %w", i, err)
		}
		out[i] = emb
	}
	return out, nil
}

// QueryEmbedding produces an embedding for a query string.
func (e *Embedder) QueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("empty query")
	}
	return e.embed(ctx, query)
}

func (e *Embedder) embed(ctx context.Context, text string) ([]float32, error) {
	data, err := json.Marshal(ollamaRequest{Model: e.Model, Prompt: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL+"/api/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama error: %s", strings.TrimSpace(string(body)))
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return nil, fmt.Errorf("failed decode response: %w", err)
	}
	if e.Dim > 0 && len(oResp.Embedding) != e.Dim {
		return nil, fmt.Errorf("expected embedding dim %d, got %d", e.Dim, len(oResp.Embedding))
	}
	return oResp.Embedding, nil
}
