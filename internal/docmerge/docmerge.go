// Package docmerge fills in missing function docstrings in Python source.
//
// The source is split into per-function groups, each group without a
// docstring is handed to a Generator, and the docstrings found in the
// generated code are spliced back after the matching function signature
package docmerge

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jarredhawkins/linestruct/internal/lines"
	"github.com/jarredhawkins/linestruct/internal/pattern"
	"github.com/jarredhawkins/linestruct/internal/region"
)

// Generator produces a documented copy of one function group
type Generator interface {
	Generate(ctx context.Context, group []string) ([]string, error)
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, group []string) ([]string, error)

func (f GeneratorFunc) Generate(ctx context.Context, group []string) ([]string, error) {
	return f(ctx, group)
}

var (
	// funcHeader starts a group at every column-0 def
	funcHeader = pattern.MustNew(`def .*`)

	signatureEnd = region.TrimmedSuffix("):")
	docQuote     = region.TrimmedPrefix(`"""`)
	fence        = func(line string) bool { return strings.HasPrefix(line, "```") }
)

// MarkerLines is the separator written before every def by Markers
var MarkerLines = []string{
	"# ------------------------------------\n",
	"# dump part, for debug\n",
	"# ------------------------------------\n",
}

// Groups splits src into function groups
func Groups(src []string) [][]string {
	return lines.Split(src, funcHeader)
}

// HasDocstring reports whether a docstring line directly follows a line
// ending the signature
func HasDocstring(group []string) bool {
	found, _ := region.PairMatch(group, signatureEnd, docQuote)
	return found
}

// isFunc reports whether any line of group contains a def
func isFunc(group []string) bool {
	for _, l := range group {
		if strings.Contains(l, "def ") {
			return true
		}
	}
	return false
}

// NeedsDoc reports whether group holds a function without a docstring
func NeedsDoc(group []string) bool {
	return isFunc(group) && !HasDocstring(group)
}

// Pending returns the groups that need a docstring
func Pending(groups [][]string) [][]string {
	var out [][]string
	for _, g := range groups {
		if NeedsDoc(g) {
			out = append(out, g)
		}
	}
	return out
}

// Markers returns src with MarkerLines inserted before every line holding a
// def, for inspecting the split points
func Markers(src []string) []string {
	return lines.Insert(src, MarkerLines, funcHeader, true)
}

// FencedCode returns the lines inside the first ``` fenced block of a
// generator reply, each terminated with a newline. A reply with an opening
// fence but no closing one yields everything after the opening fence
func FencedCode(text string) []string {
	raw := strings.Split(text, "\n")
	block, _ := region.Extract(raw, fence, fence)
	if len(block) == 0 {
		return nil
	}

	body := block[1:]
	if n := len(body); n > 0 && fence(body[n-1]) {
		body = body[:n-1]
	}
	return lines.AppendNewlines(body)
}

// IndexDocs maps the header line of every generated function to the
// docstring found in its body
func IndexDocs(generated []string) map[string][]string {
	docs := make(map[string][]string)
	for _, g := range Groups(generated) {
		header := g[0]
		if !strings.HasPrefix(header, "def ") {
			continue
		}
		if doc := docstring(g); len(doc) > 0 {
			docs[header] = doc
		}
	}
	return docs
}

// docstring returns the first """ delimited region of group. A docstring
// opened and closed on the same line is that line alone
func docstring(group []string) []string {
	doc, _ := region.Extract(group, docQuote, docQuote)
	if len(doc) == 0 {
		return nil
	}
	first := strings.TrimSpace(doc[0])
	if len(first) >= 6 && strings.HasSuffix(first, `"""`) {
		return doc[:1]
	}
	return doc
}

// Splice inserts doc after the last signature line of group. It reports
// false when the group already carries a docstring or has no signature end
func Splice(group, doc []string) ([]string, bool) {
	found, at := region.ContinueMatch(group, signatureEnd, region.Not(docQuote))
	if !found {
		return group, false
	}

	out := make([]string, 0, len(group)+len(doc))
	out = append(out, group[:at+1]...)
	out = append(out, doc...)
	out = append(out, group[at+1:]...)
	return out, true
}

// Merger runs the docstring workflow against a Generator
type Merger struct {
	gen    Generator
	logger *zap.Logger
}

// New creates a merger; a nil logger discards log output
func New(gen Generator, logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{gen: gen, logger: logger}
}

// Generated calls the generator for every group that needs a docstring and
// concatenates the replies. Every group contributes a trailing blank line,
// and groups that need nothing contribute only that line
func (m *Merger) Generated(ctx context.Context, groups [][]string) ([]string, error) {
	var out []string
	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if NeedsDoc(g) {
			m.logger.Info("generating docstring",
				zap.Int("group", i),
				zap.String("header", strings.TrimSpace(g[0])))

			reply, err := m.gen.Generate(ctx, g)
			if err != nil {
				return nil, fmt.Errorf("generate group %d: %w", i, err)
			}
			out = append(out, reply...)
		}
		out = append(out, "\n")
	}
	return out, nil
}

// Apply splices docs into the matching groups and concatenates the result.
// Groups without a doc entry, or whose signature cannot be located, are kept
// as they are
func (m *Merger) Apply(groups [][]string, docs map[string][]string) []string {
	var out []string
	for _, g := range groups {
		doc, ok := docs[g[0]]
		if !ok || !strings.HasPrefix(g[0], "def ") {
			out = append(out, g...)
			continue
		}

		merged, ok := Splice(g, doc)
		if !ok {
			m.logger.Debug("signature not found, group kept",
				zap.String("header", strings.TrimSpace(g[0])))
		}
		out = append(out, merged...)
	}
	return out
}

// Merge applies the docstrings found in generated to src
func (m *Merger) Merge(src, generated []string) []string {
	docs := IndexDocs(generated)
	m.logger.Debug("indexed generated docstrings", zap.Int("count", len(docs)))
	return m.Apply(Groups(src), docs)
}

// Run documents every undocumented function of src
func (m *Merger) Run(ctx context.Context, src []string) ([]string, error) {
	groups := Groups(src)
	generated, err := m.Generated(ctx, groups)
	if err != nil {
		return nil, err
	}
	return m.Apply(groups, IndexDocs(generated)), nil
}
