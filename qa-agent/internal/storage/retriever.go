package storage

import (
	"context"
	"fmt"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
)

// Retrieval defaults.
const (
	DefaultTopK          = 3
	DefaultMinSimilarity = 0.3
)

// QueryEmbedder turns a question into a vector.
type QueryEmbedder interface {
	QueryEmbedding(ctx context.Context, query string) ([]float32, error)
}

// SimilarityQuerier is the read side of VectorStore.
type SimilarityQuerier interface {
	QuerySimilar(ctx context.Context, emb []float32, k int, maxDistance float64) ([]Match, error)
}

// VectorRetriever implements graph.Retriever over the vector store.
type VectorRetriever struct {
	Embedder      QueryEmbedder
	Store         SimilarityQuerier
	K             int
	MinSimilarity float64
}

func NewVectorRetriever(e QueryEmbedder, s SimilarityQuerier) *VectorRetriever {
	return &VectorRetriever{Embedder: e, Store: s, K: DefaultTopK, MinSimilarity: DefaultMinSimilarity}
}

func (r *VectorRetriever) Fetch(ctx context.Context, question string) ([]graph.Document, error) {
	emb, err := r.Embedder.QueryEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %w", graph.ErrTransport, err)
	}

	matches, err := r.Store.QuerySimilar(ctx, emb, r.K, 1-r.MinSimilarity)
	if err != nil {
		return nil, fmt.Errorf("%w: vector query: %w", graph.ErrTransport, err)
	}

	docs := make([]graph.Document, 0, len(matches))
	for _, m := range matches {
		docs = append(docs, toDocument(m))
	}
	return docs, nil
}

func toDocument(m Match) graph.Document {
	meta := make(map[string]string, len(m.Metadata)+2)
	for k, v := range m.Metadata {
		meta[k] = v
	}
	meta["file_name"] = m.Filename
	meta["source"] = m.Source
	return graph.Document{Content: m.Content, Metadata: meta}
}
