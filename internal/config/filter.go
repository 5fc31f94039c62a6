package config

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides which workspace paths are indexed and watched. Paths are
// relative to the workspace root
type Filter struct {
	include []string
	exclude []string
}

// NewFilter creates a filter. With no include globs every file is included
func NewFilter(include, exclude []string) *Filter {
	return &Filter{include: include, exclude: exclude}
}

// Excluded reports whether rel matches an exclude glob
func (f *Filter) Excluded(rel string) bool {
	return matchAny(f.exclude, filepath.ToSlash(rel))
}

// SkipDir reports whether a directory, and so everything below it, is excluded
func (f *Filter) SkipDir(rel string) bool {
	if rel == "." || rel == "" {
		return false
	}
	return f.Excluded(rel) || f.Excluded(rel+"/")
}

// Match reports whether a file should be indexed
func (f *Filter) Match(rel string) bool {
	if f.Excluded(rel) {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	return matchAny(f.include, filepath.ToSlash(rel))
}

func matchAny(patterns []string, path string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, path); err == nil && matched {
			return true
		}
	}
	return false
}

// validateGlobs checks that every pattern is a valid doublestar glob
func validateGlobs(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}
