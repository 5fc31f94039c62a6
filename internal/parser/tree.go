package parser

import (
	"github.com/jarredhawkins/linestruct/internal/indent"
	"github.com/jarredhawkins/linestruct/internal/types"
)

// DepthFunc computes the nesting depth of a block. Returning false leaves the
// block out of the tree
type DepthFunc func(b *types.Block) (int, bool)

// LinesDepth measures a block by the indent of its first non-blank line
func LinesDepth(b *types.Block) (int, bool) {
	return indent.Depth(b.Lines)
}

// Builder threads a flat list of blocks into a tree. Blocks are kept in an
// arena and refer to their parent by arena index
type Builder struct {
	depth DepthFunc
	arena []*types.Block
	ranks map[int]int
}

// NewBuilder creates a builder; a nil fn selects LinesDepth
func NewBuilder(fn DepthFunc) *Builder {
	if fn == nil {
		fn = LinesDepth
	}
	return &Builder{depth: fn}
}

// threadState is the ancestor bookkeeping carried from one block to the next
type threadState struct {
	topIndent     int
	currentIndent int
	rank          int
	ranks         map[int]int // depth -> rank, in first-seen order

	current  int   // arena index of the last block at the current depth
	previous int   // arena index of the parent of the current depth, -1 at the roots
	stack    []int // saved previous pointers, one per deeper step
}

// Build classifies every block with the depth function and links it to its
// parent: the nearest preceding block with a strictly smaller depth. The
// first classified block fixes the top depth. Every block at or above that
// depth is a root and resets the ancestor chain, so the returned slice holds
// the top-depth blocks plus any shallower ones. Depths are compared only
// with <, > and ==, so irregular indentation widths thread correctly
func (bd *Builder) Build(flat []*types.Block) []*types.Block {
	bd.arena = nil

	var top []*types.Block
	st := threadState{
		ranks:    make(map[int]int),
		current:  -1,
		previous: -1,
	}

	for _, b := range flat {
		d, ok := bd.depth(b)
		b.Indent, b.HasIndent = d, ok
		b.Parent = -1
		b.Body = nil
		if !ok {
			continue
		}

		idx := len(bd.arena)
		bd.arena = append(bd.arena, b)

		switch {
		case st.current < 0:
			st.topIndent = d
			st.enterRoot(d)

		case d <= st.topIndent:
			st.enterRoot(d)

		case d > st.currentIndent:
			st.stack = append(st.stack, st.previous)
			st.previous = st.current
			st.rank++
			st.record(d)

		case d < st.currentIndent:
			for st.previous >= 0 && bd.arena[st.previous].Indent >= d && len(st.stack) > 0 {
				st.previous = st.stack[len(st.stack)-1]
				st.stack = st.stack[:len(st.stack)-1]
				st.rank--
			}
			st.record(d)
		}

		st.current = idx
		st.currentIndent = d
		b.Level = st.rank

		if st.previous >= 0 {
			parent := bd.arena[st.previous]
			parent.Body = append(parent.Body, b)
			b.Parent = st.previous
		} else {
			top = append(top, b)
		}
	}

	bd.ranks = st.ranks
	return top
}

// enterRoot resets the ancestor chain for a block at or above the top depth
func (st *threadState) enterRoot(d int) {
	st.stack = st.stack[:0]
	st.previous = -1
	st.rank = 0
	st.record(d)
}

// record assigns the current rank to d unless d was seen before
func (st *threadState) record(d int) {
	if _, seen := st.ranks[d]; !seen {
		st.ranks[d] = st.rank
	}
}

// Arena returns every classified block of the last Build, in source order
func (bd *Builder) Arena() []*types.Block {
	return bd.arena
}

// ParentOf returns the parent of b, or nil for a root
func (bd *Builder) ParentOf(b *types.Block) *types.Block {
	if b.IsRoot() || b.Parent >= len(bd.arena) {
		return nil
	}
	return bd.arena[b.Parent]
}

// Ranks returns the depth -> rank table built by the last Build
func (bd *Builder) Ranks() map[int]int {
	return bd.ranks
}
