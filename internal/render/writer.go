package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileWriter writes one output file below the output directory. The returned
// boolean reports whether bytes actually hit disk; implementations may skip
// writes whose content is unchanged from a previous run.
type FileWriter interface {
	WriteFile(rel string, data []byte) (bool, error)
}

// DiskWriter writes every file unconditionally, creating intermediate
// directories as needed. Paths are confined to the root.
type DiskWriter struct {
	Root string
}

// WriteFile implements FileWriter.
func (w *DiskWriter) WriteFile(rel string, data []byte) (bool, error) {
	full, err := w.Resolve(rel)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return false, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// Resolve validates rel and joins it below the root.
func (w *DiskWriter) Resolve(rel string) (string, error) {
	clean := filepath.Clean(rel)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", errors.New("output path escapes output directory")
	}
	return filepath.Join(w.Root, clean), nil
}
