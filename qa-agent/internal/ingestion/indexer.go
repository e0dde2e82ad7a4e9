package ingestion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/processing"
	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/storage"
)

// ChunkEmbedder embeds a batch of chunks.
type ChunkEmbedder interface {
	EmbedChunks(ctx context.Context, chunks []string) ([][]float32, error)
}

// ChunkStore persists embedded chunks.
type ChunkStore interface {
	Insert(ctx context.Context, c storage.Chunk) error
}

// Indexer loads local files into the vector store.
type Indexer struct {
	Embedder     ChunkEmbedder
	Store        ChunkStore
	ChunkSize    int
	ChunkOverlap int
	Log          logrus.FieldLogger
}

// Report summarises one indexing pass.
type Report struct {
	Files   int
	Chunks  int
	Skipped []string
}

func NewIndexer(e ChunkEmbedder, s ChunkStore, log logrus.FieldLogger) *Indexer {
	return &Indexer{
		Embedder:     e,
		Store:        s,
		ChunkSize:    processing.DefaultChunkSize,
		ChunkOverlap: processing.DefaultChunkOverlap,
		Log:          log,
	}
}

// IndexPath ingests every supported file under root. Files that cannot be
// read are skipped and reported; embedding or storage failures abort. A
// zero ChunkSize uses the processing defaults.
func (ix *Indexer) IndexPath(ctx context.Context, root string) (Report, error) {
	var rep Report
	logger := ix.Log
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	files, err := LoadLocalFiles(root)
	if err != nil {
		return rep, fmt.Errorf("walk %s: %w", root, err)
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		log := logger.WithField("file", path)

		text, err := ExtractText(ctx, path)
		if err != nil || strings.TrimSpace(text) == "" {
			if err == nil {
				err = errors.New("no text")
			}
			log.WithError(err).Warn("Skipping file")
			rep.Skipped = append(rep.Skipped, path)
			continue
		}

		chunks := processing.ChunkTextSize(text, ix.ChunkSize, ix.ChunkOverlap)
		embs, err := ix.Embedder.EmbedChunks(ctx, chunks)
		if err != nil {
			return rep, fmt.Errorf("embed %s: %w", path, err)
		}

		now := time.Now()
		for i, chunk := range chunks {
			meta := processing.Metadata{Path: path, Source: "local", ImportedAt: now, Chunk: i}
			c := storage.Chunk{
				Filename:  filepath.Base(path),
				Source:    "local",
				Content:   chunk,
				Metadata:  meta.Map(),
				Embedding: embs[i],
			}
			if err := ix.Store.Insert(ctx, c); err != nil {
				return rep, err
			}
		}
		rep.Files++
		rep.Chunks += len(chunks)
		log.WithField("chunks", len(chunks)).Info("Indexed file")
	}
	return rep, nil
}
