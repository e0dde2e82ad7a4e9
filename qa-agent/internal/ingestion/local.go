package ingestion

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

var allowedExt = []string{".pdf", ".txt", ".md"}

// LoadLocalFiles walks root and returns every file ExtractText can read.
func LoadLocalFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if slices.Contains(allowedExt, strings.ToLower(filepath.Ext(path))) {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}
