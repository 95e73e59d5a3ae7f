package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store persists one transcript file per chunk index so an interrupted run
// can resume without repeating completed remote work. Artifact names are
// stable across runs; presence of the file is the resume signal.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("transcript_chunk_%02d.md", index))
}

// Has reports whether a transcript for the chunk index exists.
func (s *Store) Has(index int) bool {
	fi, err := os.Stat(s.path(index))
	return err == nil && !fi.IsDir()
}

// Load returns the checkpointed transcript for the chunk index.
func (s *Store) Load(index int) (string, error) {
	b, err := os.ReadFile(s.path(index))
	if err != nil {
		return "", fmt.Errorf("load checkpoint %d: %w", index, err)
	}
	return string(b), nil
}

// Save writes the transcript for the chunk index, creating the store
// directory if needed. Distinct indices write distinct files, so concurrent
// saves need no locking.
func (s *Store) Save(index int, text string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	if err := os.WriteFile(s.path(index), []byte(text), 0o644); err != nil {
		return fmt.Errorf("save checkpoint %d: %w", index, err)
	}
	return nil
}
