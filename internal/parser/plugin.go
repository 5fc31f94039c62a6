package parser

import (
	"fmt"
	"sort"

	"github.com/jarredhawkins/linestruct/internal/pattern"
)

// Matcher defines how to recognize the header line of one kind of block
type Matcher interface {
	// Name returns the block name assigned to matching headers
	Name() string

	// Match tests if line opens a block of this kind
	Match(line string) bool

	// Priority for ordering (higher = earlier). Equal priorities keep
	// registration order
	Priority() int
}

// PatternMatcher is a Matcher backed by a pattern set matched at line start
type PatternMatcher struct {
	named    pattern.Named
	priority int
}

// NewPatternMatcher creates a matcher for a named set with priority 0
func NewPatternMatcher(n pattern.Named) *PatternMatcher {
	return &PatternMatcher{named: n}
}

// WithPriority returns a copy of the matcher with the given priority
func (m *PatternMatcher) WithPriority(p int) *PatternMatcher {
	c := *m
	c.priority = p
	return &c
}

func (m *PatternMatcher) Name() string           { return m.named.Name }
func (m *PatternMatcher) Priority() int          { return m.priority }
func (m *PatternMatcher) Match(line string) bool { return m.named.Set.Match(line) }

// Set returns the pattern set behind the matcher
func (m *PatternMatcher) Set() *pattern.Set { return m.named.Set }

// Registry holds all registered matchers in priority order. Registration is
// not safe for concurrent use; a fully registered Registry is read-only and may
// be shared by any number of scanners.
type Registry struct {
	matchers []Matcher
}

// NewRegistry creates a new empty registry
func NewRegistry() *Registry {
	return &Registry{
		matchers: make([]Matcher, 0),
	}
}

// Register adds a matcher after every matcher of equal or higher priority
func (r *Registry) Register(m Matcher) {
	at := sort.Search(len(r.matchers), func(i int) bool {
		return r.matchers[i].Priority() < m.Priority()
	})
	r.matchers = append(r.matchers, nil)
	copy(r.matchers[at+1:], r.matchers[at:])
	r.matchers[at] = m
}

// RegisterNamed adds one PatternMatcher per named set, in order
func (r *Registry) RegisterNamed(sets ...pattern.Named) {
	for _, n := range sets {
		r.Register(NewPatternMatcher(n))
	}
}

// Matchers returns all registered matchers in priority order
func (r *Registry) Matchers() []Matcher {
	return r.matchers
}

// Len returns the number of registered matchers
func (r *Registry) Len() int {
	return len(r.matchers)
}

// Classify returns the matcher that claims line, first in priority order
func (r *Registry) Classify(line string) (Matcher, bool) {
	for _, m := range r.Matchers() {
		if m.Match(line) {
			return m, true
		}
	}
	return nil, false
}

// presets maps preset names to their registration functions
var presets = map[string]func(*Registry){
	"python": RegisterPython,
	"ruby":   RegisterRuby,
}

// Presets returns the names of the built-in pattern presets
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterPreset adds the matchers of a built-in preset
func RegisterPreset(r *Registry, name string) error {
	register, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q (available: %v)", name, Presets())
	}
	register(r)
	return nil
}

// RegisterDefaults adds the default (Python) matchers to the registry
func RegisterDefaults(r *Registry) {
	RegisterPython(r)
}
