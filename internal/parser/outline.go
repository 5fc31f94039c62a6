package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/jarredhawkins/linestruct/internal/types"
)

// Walk visits blocks depth-first in source order. Returning false from fn
// skips the children of that block
func Walk(blocks []*types.Block, fn func(b *types.Block, depth int) bool) {
	walk(blocks, 0, fn)
}

func walk(blocks []*types.Block, depth int, fn func(b *types.Block, depth int) bool) {
	for _, b := range blocks {
		if fn(b, depth) {
			walk(b.Body, depth+1, fn)
		}
	}
}

// Count returns the number of blocks in the tree
func Count(blocks []*types.Block) int {
	n := 0
	Walk(blocks, func(*types.Block, int) bool {
		n++
		return true
	})
	return n
}

// Flatten returns the lines of every block in the tree, parents before
// children. For a tree built from a file this reproduces the file, minus
// any all-blank leading lines
func Flatten(blocks []*types.Block) []string {
	var out []string
	Walk(blocks, func(b *types.Block, _ int) bool {
		out = append(out, b.Lines...)
		return true
	})
	return out
}

// Render writes an indented outline of the tree, one separator per block
// followed by its lines
func Render(w io.Writer, blocks []*types.Block) error {
	var err error
	Walk(blocks, func(b *types.Block, depth int) bool {
		if err != nil {
			return false
		}
		pad := strings.Repeat("    ", depth)
		name := b.Name
		if name == "" {
			name = "-"
		}
		if _, err = fmt.Fprintf(w, "%s----- %s (indent %d, line %d)\n", pad, name, b.Indent, b.Line+1); err != nil {
			return false
		}
		for _, l := range b.Lines {
			if _, err = fmt.Fprintf(w, "%s%s\n", pad, strings.TrimRight(l, "\n")); err != nil {
				return false
			}
		}
		return true
	})
	return err
}

// Summary writes one line per block: its name and trimmed header
func Summary(w io.Writer, blocks []*types.Block) error {
	var err error
	Walk(blocks, func(b *types.Block, depth int) bool {
		if err == nil {
			_, err = fmt.Fprintf(w, "%s%s: %s\n", strings.Repeat("  ", depth), b.Name, b.Header())
		}
		return err == nil
	})
	return err
}
