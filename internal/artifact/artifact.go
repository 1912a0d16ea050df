// Package artifact stores generated test artifacts on local disk.
//
// Every SourceUnit maps to exactly one artifact: a source file named X is
// paired with {testsDir}/test_X. Artifacts are overwritten in place on every
// refinement and are never removed, even when a unit fails.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/robertgumeny/testgen/internal/types"
)

// Prefix is prepended to a source file's base name to form its artifact name.
const Prefix = "test_"

// Store reads and writes artifacts under a single directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created lazily on
// the first Write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Name returns the artifact file name for unit: test_<basename>.
func Name(unit types.SourceUnit) string {
	return Prefix + filepath.Base(unit.Path)
}

// Collisions groups units whose artifacts would share a file name, keyed by
// that name. Units in a group overwrite each other's artifact. Units without a
// collision are omitted; within a group, discovery order is kept.
func Collisions(units []types.SourceUnit) map[string][]types.SourceUnit {
	byName := make(map[string][]types.SourceUnit, len(units))
	for _, u := range units {
		name := Name(u)
		byName[name] = append(byName[name], u)
	}
	for name, group := range byName {
		if len(group) < 2 {
			delete(byName, name)
		}
	}
	return byName
}

// Path returns the absolute or caller-relative artifact path for unit.
func (s *Store) Path(unit types.SourceUnit) string {
	return filepath.Join(s.dir, Name(unit))
}

// Read returns the current artifact content for unit.
func (s *Store) Read(unit types.SourceUnit) (string, error) {
	data, err := os.ReadFile(s.Path(unit))
	if err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}
	return string(data), nil
}

// Write replaces the artifact for unit with content and returns its path.
// The store directory is created if needed. The write is atomic: content is
// written to a .tmp sibling and renamed over the target.
func (s *Store) Write(unit types.SourceUnit, content string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact directory %s: %w", s.dir, err)
	}
	path := s.Path(unit)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename %s -> %s: %w", tmp, path, err)
	}
	return path, nil
}
