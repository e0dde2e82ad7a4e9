package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Chunk is one embedded piece of an ingested file.
type Chunk struct {
	ID        int64
	Filename  string
	Source    string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// Match is a chunk returned by a similarity query with its cosine distance.
type Match struct {
	Chunk
	Distance float64
}

// Similarity converts cosine distance back to cosine similarity.
func (m Match) Similarity() float64 { return 1 - m.Distance }

// VectorStore keeps chunk embeddings in a pgvector column.
type VectorStore struct {
	pool *pgxpool.Pool
	dim  int
}

func NewVectorStore(pool *pgxpool.Pool, dim int) *VectorStore {
	return &VectorStore{pool: pool, dim: dim}
}

// Migrate creates the vector extension and documents table.
func (s *VectorStore) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		filename TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT 'local',
		content TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}',
		embedding vector(%d) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`, s.dim)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("migrate documents: %w", err)
	}
	return nil
}

// Insert adds a chunk with its embedding.
func (s *VectorStore) Insert(ctx context.Context, c Chunk) error {
	if s.dim > 0 && len(c.Embedding) != s.dim {
		return fmt.Errorf("embedding has dim %d, store expects %d", len(c.Embedding), s.dim)
	}
	meta := c.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	_, err := s.pool.Exec(ctx,
		"INSERT INTO documents (filename, source, content, metadata, embedding) VALUES ($1, $2, $3, $4, $5)",
		c.Filename, c.Source, c.Content, meta, pgvector.NewVector(c.Embedding))
	if err != nil {
		return fmt.Errorf("insert %s: %w", c.Filename, err)
	}
	return nil
}

// QuerySimilar returns up to k chunks whose cosine distance to emb is at
// most maxDistance, nearest first.
func (s *VectorStore) QuerySimilar(ctx context.Context, emb []float32, k int, maxDistance float64) ([]Match, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, filename, source, content, metadata, embedding <=> $1 AS distance
		FROM documents
		WHERE embedding <=> $1 <= $3
		ORDER BY distance
		LIMIT $2`,
		pgvector.NewVector(emb), k, maxDistance)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var results []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Filename, &m.Source, &m.Content, &m.Metadata, &m.Distance); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// Count returns the number of stored chunks.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents").Scan(&n)
	return n, err
}
