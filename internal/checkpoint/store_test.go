package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())
	if s.Has(1) {
		t.Fatal("empty store must not report a checkpoint")
	}
	if err := s.Save(1, "hello transcript"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if !s.Has(1) {
		t.Fatal("Has must be true after Save")
	}
	got, err := s.Load(1)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != "hello transcript" {
		t.Fatalf("Load = %q", got)
	}
}

func TestStoreNaming(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)
	if err := s.Save(3, "x"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "transcript_chunk_03.md")); err != nil {
		t.Fatalf("expected zero-padded artifact name: %v", err)
	}
}

func TestStoreCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "chunks")
	s := New(dir)
	if err := s.Save(1, "x"); err != nil {
		t.Fatalf("Save must create the store directory: %v", err)
	}
	// A second save into the existing directory must also succeed.
	if err := s.Save(2, "y"); err != nil {
		t.Fatalf("Save into existing directory failed: %v", err)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := New(dir).Save(7, "persisted"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	reopened := New(dir)
	if !reopened.Has(7) {
		t.Fatal("checkpoint must be visible to a second run over the same directory")
	}
	got, err := reopened.Load(7)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != "persisted" {
		t.Fatalf("Load = %q", got)
	}
}
