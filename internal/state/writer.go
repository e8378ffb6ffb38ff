package state

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"git.home.luguber.info/inful/docpublish/internal/render"
)

// IncrementalWriter wraps another writer and skips files whose content hash
// matches the one recorded by a previous run.
type IncrementalWriter struct {
	next  render.FileWriter
	store *Store

	// Skipped counts files left untouched because their content was
	// unchanged.
	Skipped int
}

// NewIncrementalWriter layers skip-unchanged behavior over next.
func NewIncrementalWriter(next render.FileWriter, store *Store) *IncrementalWriter {
	return &IncrementalWriter{next: next, store: store}
}

// WriteFile writes rel through the wrapped writer unless the stored hash for
// rel matches the new content. The recorded hash is only updated after a
// successful write.
func (w *IncrementalWriter) WriteFile(rel string, data []byte) (bool, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	stored, ok, err := w.store.Hash(rel)
	if err != nil {
		return false, err
	}
	if ok && stored == hash {
		w.Skipped++
		slog.Debug("skipped unchanged file", slog.String("path", rel))
		return false, nil
	}

	written, err := w.next.WriteFile(rel, data)
	if err != nil {
		return false, err
	}
	if err := w.store.SetHash(rel, hash); err != nil {
		return written, err
	}
	return written, nil
}
