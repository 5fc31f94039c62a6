// Package pattern holds ordered sets of precompiled regular expressions used to
// recognize header lines.
//
// A Set is tried in declaration order and stops at the first success. Two
// matching modes are offered: Match is anchored at the start of the line and
// Search finds the pattern anywhere in it
package pattern

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidPattern is returned when a pattern source fails to compile
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrEmptyPatternSet is returned when a set is built from no sources
	ErrEmptyPatternSet = errors.New("empty pattern set")
)

// entry keeps both compiled forms of one source
type entry struct {
	source   string
	anchored *regexp.Regexp
	anywhere *regexp.Regexp
}

// Set is an ordered list of compiled patterns. The zero value is not usable;
// build one with New
type Set struct {
	entries []entry
}

// New compiles the given sources, in order, into a Set.
// A single source is simply a one-element set
func New(sources ...string) (*Set, error) {
	if len(sources) == 0 {
		return nil, ErrEmptyPatternSet
	}

	s := &Set{entries: make([]entry, 0, len(sources))}
	for _, src := range sources {
		anywhere, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, src, err)
		}
		// Wrapping keeps alternations like "a|b" anchored as a whole
		anchored, err := regexp.Compile(`^(?:` + src + `)`)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, src, err)
		}
		s.entries = append(s.entries, entry{
			source:   src,
			anchored: anchored,
			anywhere: anywhere,
		})
	}
	return s, nil
}

// MustNew is like New but panics on error. Intended for package-level presets
func MustNew(sources ...string) *Set {
	s, err := New(sources...)
	if err != nil {
		panic(err)
	}
	return s
}

// Match reports whether any pattern matches at the start of line
func (s *Set) Match(line string) bool {
	_, ok := s.MatchIndex(line)
	return ok
}

// MatchIndex returns the position of the first pattern that matches at the
// start of line
func (s *Set) MatchIndex(line string) (int, bool) {
	for i, e := range s.entries {
		if e.anchored.MatchString(line) {
			return i, true
		}
	}
	return 0, false
}

// Search reports whether any pattern matches anywhere in line
func (s *Set) Search(line string) bool {
	for _, e := range s.entries {
		if e.anywhere.MatchString(line) {
			return true
		}
	}
	return false
}

// Sources returns the pattern sources in declaration order
func (s *Set) Sources() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.source
	}
	return out
}

// Len returns the number of patterns in the set
func (s *Set) Len() int {
	return len(s.entries)
}

func (s *Set) String() string {
	return fmt.Sprintf("%q", s.Sources())
}

// Named pairs a block name with the set that recognizes its header lines
type Named struct {
	Name string
	Set  *Set
}

// NewNamed compiles sources into a Named set
func NewNamed(name string, sources ...string) (Named, error) {
	s, err := New(sources...)
	if err != nil {
		return Named{}, fmt.Errorf("pattern %s: %w", name, err)
	}
	return Named{Name: name, Set: s}, nil
}

// First returns the name of the first set, in declaration order, whose
// patterns match at the start of line. Declaration order breaks ties when
// several sets could claim the same line
func First(sets []Named, line string) (string, bool) {
	for _, n := range sets {
		if n.Set.Match(line) {
			return n.Name, true
		}
	}
	return "", false
}
