package usecase

import (
	"fmt"
	"os"
	"path/filepath"
)

// WorkArea is the ephemeral staging directory a run assembles or unpacks
// backup contents in. It belongs to exactly one run and is removed,
// contents and all, on every exit path.
type WorkArea struct {
	Root string
}

func NewWorkArea() (*WorkArea, error) {
	root, err := os.MkdirTemp("", "wpback-")
	if err != nil {
		return nil, fmt.Errorf("failed to create working area: %w", err)
	}
	return &WorkArea{Root: root}, nil
}

// MkdirLayout creates the files/ and database/ subtrees for a backup run.
// Restore runs skip this so a missing subtree in the archive stays
// observable after extraction.
func (w *WorkArea) MkdirLayout() error {
	for _, dir := range []string{w.FilesDir(), w.DatabaseDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

func (w *WorkArea) FilesDir() string {
	return filepath.Join(w.Root, "files")
}

func (w *WorkArea) DatabaseDir() string {
	return filepath.Join(w.Root, "database")
}

func (w *WorkArea) Cleanup() {
	_ = os.RemoveAll(w.Root)
}
