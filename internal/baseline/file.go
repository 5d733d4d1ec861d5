package baseline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// FileStore persists the baseline as a single JSON document on disk. It is
// the default backend: the engine runs as a cron job and a flat file next to
// the binary survives between invocations with no infrastructure at all.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and decodes the baseline file.
func (s *FileStore) Load(_ context.Context) (*domain.Baseline, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrBaselineMissing
		}
		return nil, fmt.Errorf("baseline: read %s: %w", s.path, err)
	}

	var bl domain.Baseline
	if err := json.Unmarshal(data, &bl); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrBaselineCorrupt, s.path, err)
	}
	if bl.Timestamp.IsZero() {
		return nil, fmt.Errorf("%w: %s: missing capture timestamp", domain.ErrBaselineCorrupt, s.path)
	}
	return &bl, nil
}

// Save writes the baseline atomically: encode to a temp file in the same
// directory, then rename over the target. A run killed mid-write leaves the
// previous baseline intact rather than a truncated file.
func (s *FileStore) Save(_ context.Context, bl *domain.Baseline) error {
	data, err := json.Marshal(bl)
	if err != nil {
		return fmt.Errorf("baseline: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".baseline-*.json")
	if err != nil {
		return fmt.Errorf("baseline: create temp in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("baseline: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("baseline: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("baseline: rename to %s: %w", s.path, err)
	}
	return nil
}
