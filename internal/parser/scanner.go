package parser

import (
	"github.com/jarredhawkins/linestruct/internal/lines"
	"github.com/jarredhawkins/linestruct/internal/pattern"
	"github.com/jarredhawkins/linestruct/internal/types"
)

// Scanner cuts source lines into named blocks and threads them into a tree
type Scanner struct {
	registry *Registry
	depth    DepthFunc
}

// NewScanner creates a new scanner with the given registry
func NewScanner(registry *Registry) *Scanner {
	return &Scanner{
		registry: registry,
		depth:    LinesDepth,
	}
}

// WithDepth returns a scanner that measures block depth with fn
func (s *Scanner) WithDepth(fn DepthFunc) *Scanner {
	return &Scanner{
		registry: s.registry,
		depth:    fn,
	}
}

// headerFunc is called for every line that opens a block
type headerFunc func(lineNum int, m Matcher)

// scanLines runs the core line-by-line loop, reporting header lines to onHeader
func (s *Scanner) scanLines(src []string, onHeader headerFunc, onLine func(lineNum int, line string)) {
	matchers := s.registry.Matchers()

	for lineNum, line := range src {
		for _, m := range matchers {
			if m.Match(line) {
				onHeader(lineNum, m)
				break
			}
		}
		onLine(lineNum, line)
	}
}

// Tag splits src into a flat, chronological list of blocks. Each header line
// opens a block named after its matcher; every line, header or not, is
// appended to the open block. Lines before the first header form an unnamed
// leading block, dropped when there are none
func (s *Scanner) Tag(src []string) []*types.Block {
	open := &types.Block{Parent: -1}
	flat := []*types.Block{open}

	s.scanLines(src,
		func(lineNum int, m Matcher) {
			open = &types.Block{
				Name:    m.Name(),
				Pattern: matcherSet(m),
				Line:    lineNum,
				Parent:  -1,
			}
			flat = append(flat, open)
		},
		func(lineNum int, line string) {
			open.Lines = append(open.Lines, line)
		},
	)

	if len(flat[0].Lines) == 0 {
		flat = flat[1:]
	}
	return flat
}

// Parse tags src and builds the block tree, returning the top-level blocks
func (s *Scanner) Parse(src []string) []*types.Block {
	return NewBuilder(s.depth).Build(s.Tag(src))
}

// ParseText is Parse over raw file content
func (s *Scanner) ParseText(content []byte) []*types.Block {
	return s.Parse(lines.FromText(string(content)))
}

// matcherSet returns the pattern set behind m, when it has one
func matcherSet(m Matcher) *pattern.Set {
	if pm, ok := m.(interface{ Set() *pattern.Set }); ok {
		return pm.Set()
	}
	return nil
}
