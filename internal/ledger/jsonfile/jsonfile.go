// Package jsonfile persists the payment collection as a single JSON array,
// the format the system has always used on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"mensalidades/internal/core"
)

// Store reads and writes the full record collection at path.
type Store struct {
	path string
}

// New creates a store for the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the collection. A missing file is an empty collection; a corrupt
// file is logged and treated as empty without touching it, so the data is
// preserved until the next explicit save.
func (s *Store) Load(ctx context.Context) ([]core.Payment, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.InfoContext(ctx, "No data file found, starting empty", "path", s.path)
			return nil, nil
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}

	var records []core.Payment
	if err := json.Unmarshal(data, &records); err != nil {
		slog.WarnContext(ctx, "Data file is corrupt, starting empty",
			"path", s.path, "error", err)
		return nil, nil
	}

	slog.InfoContext(ctx, "Data loaded", "path", s.path, "records", len(records))
	return records, nil
}

// Save writes the full collection atomically: the snapshot goes to a temp
// file in the same directory and is renamed over the old one, so a crash
// mid-write never corrupts the previous state.
func (s *Store) Save(ctx context.Context, records []core.Payment) error {
	if records == nil {
		records = []core.Payment{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".pagamentos-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace data file: %w", err)
	}

	slog.InfoContext(ctx, "Data saved", "path", s.path, "records", len(records))
	return nil
}
