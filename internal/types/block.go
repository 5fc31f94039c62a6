package types

import (
	"strings"

	"github.com/jarredhawkins/linestruct/internal/pattern"
)

// Block is a named run of lines that starts at a header line, plus the blocks
// nested below it
type Block struct {
	Name    string       // Name of the pattern set that opened the block, "" for leading lines
	Pattern *pattern.Set // Set that matched the header, nil for leading lines
	Lines   []string     // Header line and every following line up to the next header
	Line    int          // 0-indexed position of the first line in the source

	Indent    int  // Leading indent width of the first non-blank line
	HasIndent bool // False for all-blank blocks, which are left out of the tree
	Level     int  // Logical depth rank assigned while threading

	Parent int      // Arena index of the parent block, -1 for roots
	Body   []*Block // Children in source order
}

// Header returns the first line of the block without surrounding whitespace
func (b *Block) Header() string {
	if len(b.Lines) == 0 {
		return ""
	}
	return strings.TrimSpace(b.Lines[0])
}

// EndLine returns the 0-indexed last source line covered by the block and
// everything nested in it
func (b *Block) EndLine() int {
	end := b.Line + len(b.Lines) - 1
	if n := len(b.Body); n > 0 {
		if last := b.Body[n-1].EndLine(); last > end {
			end = last
		}
	}
	return end
}

// IsRoot reports whether the block has no parent
func (b *Block) IsRoot() bool {
	return b.Parent < 0
}

// Reference is a textual occurrence of a word in an indexed file
type Reference struct {
	FilePath string
	Line     int    // 1-indexed
	Column   int    // 0-indexed
	Length   int    // Length of the matched text
	LineText string // Full line text for display
}
