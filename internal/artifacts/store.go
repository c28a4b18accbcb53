// Package artifacts manages the download directory. The files in it,
// under their canonical names, are the only state that survives a run.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is a flat directory of downloaded files.
type Store struct {
	dir string
}

// NewStore creates the download directory if it does not exist.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the absolute-or-relative path the store was created with.
func (s *Store) Dir() string {
	return s.dir
}

// Has reports whether a file with the given name already exists.
func (s *Store) Has(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

// Rename moves the first existing candidate to the canonical name. Sites
// mangle landed file names, so callers pass the expected raw name plus any
// known variants.
func (s *Store) Rename(candidates []string, canonical string) error {
	for _, cand := range candidates {
		src := filepath.Join(s.dir, cand)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.Rename(src, filepath.Join(s.dir, canonical)); err != nil {
			return fmt.Errorf("renaming %s: %w", cand, err)
		}
		return nil
	}
	return fmt.Errorf("no downloaded file matched %v: %w", candidates, os.ErrNotExist)
}
