package processing

import (
	"path/filepath"
	"strconv"
	"time"
)

// Metadata keys stored alongside every chunk.
const (
	MetaFileName = "file_name"
	MetaPath     = "path"
	MetaSource   = "source"
	MetaChunk    = "chunk"
	MetaImported = "imported_at"
)

type Metadata struct {
	Path       string
	Source     string // "local" or "gdrive"
	ImportedAt time.Time
	Title      string
	Chunk      int
}

// Map flattens m into the string map carried by graph documents.
func (m Metadata) Map() map[string]string {
	out := map[string]string{
		MetaFileName: filepath.Base(m.Path),
		MetaPath:     m.Path,
		MetaSource:   m.Source,
		MetaChunk:    strconv.Itoa(m.Chunk),
	}
	if !m.ImportedAt.IsZero() {
		out[MetaImported] = m.ImportedAt.UTC().Format(time.RFC3339)
	}
	if m.Title != "" {
		out["title"] = m.Title
	}
	return out
}
