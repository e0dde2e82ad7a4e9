package ingestion

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadLocalFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a")
	writeFile(t, dir, "sub/b.MD", "b")
	writeFile(t, dir, "c.png", "")
	writeFile(t, dir, ".git/d.txt", "d")

	files, err := LoadLocalFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "sub/b.MD")}, files)
}

func TestExtractText(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "notes.md", "# Sleep\n\nAdults need sleep.")

	text, err := ExtractText(context.Background(), p)
	require.NoError(t, err)
	assert.Contains(t, text, "Adults need sleep.")

	_, err = ExtractText(context.Background(), filepath.Join(dir, "x.docx"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestExtractTextRejectsBrokenPDF(t *testing.T) {
	p := writeFile(t, t.TempDir(), "broken.pdf", "this is not a pdf")

	_, err := ExtractText(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read pdf")
}

type recordingEmbedder struct{ err error }

func (e recordingEmbedder) EmbedChunks(_ context.Context, chunks []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(chunks))
	for i := range chunks {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

type memStore struct{ chunks []storage.Chunk }

func (m *memStore) Insert(_ context.Context, c storage.Chunk) error {
	m.chunks = append(m.chunks, c)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestIndexPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sleep.txt", "Sleep matters.\n\nNaps help.")
	writeFile(t, dir, "empty.md", "   ")

	store := &memStore{}
	rep, err := NewIndexer(recordingEmbedder{}, store, quietLogger()).IndexPath(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Files)
	assert.Equal(t, 2, rep.Chunks)
	assert.Equal(t, []string{filepath.Join(dir, "empty.md")}, rep.Skipped)
	require.Len(t, store.chunks, 2)
	assert.Equal(t, "sleep.txt", store.chunks[0].Filename)
	assert.Equal(t, "Naps help.", store.chunks[1].Content)
	assert.Equal(t, "1", store.chunks[1].Metadata["chunk"])
	assert.True(t, strings.HasSuffix(store.chunks[1].Metadata["path"], "sleep.txt"))
}

func TestIndexPathZeroValueIndexer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "long.txt", strings.Repeat("Caffeine • café ", 400))

	store := &memStore{}
	ix := &Indexer{Embedder: recordingEmbedder{}, Store: store}

	done := make(chan error, 1)
	go func() {
		_, err := ix.IndexPath(context.Background(), dir)
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("IndexPath did not return")
	}
	require.NotEmpty(t, store.chunks)
	for _, c := range store.chunks {
		assert.True(t, utf8.ValidString(c.Content))
	}
}

func TestIndexPathEmbedFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "text")

	_, err := NewIndexer(recordingEmbedder{err: errors.New("boom")}, &memStore{}, quietLogger()).
		IndexPath(context.Background(), dir)
	assert.ErrorContains(t, err, "boom")
}
