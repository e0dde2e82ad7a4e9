package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for files ExtractText cannot read.
var ErrUnsupported = errors.New("unsupported file type")

// ExtractText detects the file type and returns its plain text.
func ExtractText(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case ".pdf":
		return ExtractTextFromPDF(ctx, path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}
