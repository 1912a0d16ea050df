// Package discovery finds the source files testgen generates tests for.
package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/robertgumeny/testgen/internal/types"
)

// Options controls which files Discover collects.
type Options struct {
	// ExcludedDirs are directory base names that are never descended into.
	ExcludedDirs []string

	// Extensions are the accepted file extensions, including the leading dot.
	Extensions []string
}

// Discover walks projectRoot recursively and returns one SourceUnit per file
// whose extension is in opts.Extensions. Any directory whose name appears in
// opts.ExcludedDirs is skipped along with everything beneath it, so a file
// under build/, third_party/ or a virtual-env directory is never returned.
// The project root itself is never excluded. Results are in lexical order.
func Discover(projectRoot string, opts Options) ([]types.SourceUnit, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	excluded := make(map[string]bool, len(opts.ExcludedDirs))
	for _, d := range opts.ExcludedDirs {
		excluded[d] = true
	}
	extensions := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extensions[strings.ToLower(ext)] = true
	}

	var units []types.SourceUnit
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		units = append(units, types.SourceUnit{Path: path, Name: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return units, nil
}
