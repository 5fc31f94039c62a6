// Package lines provides pure transforms over line sequences: splitting on
// header patterns, pattern-anchored insertion and lookup. None of them modify
// their input
package lines

import (
	"github.com/jarredhawkins/linestruct/internal/pattern"
)

// Split cuts src into contiguous groups. A new group starts at every line that
// matches set at its start; that line is always the first line of its group.
// Empty groups are dropped, so content before the first match still forms a
// group and input without any match comes back as a single group
func Split(src []string, set *pattern.Set) [][]string {
	var groups [][]string
	var current []string

	for _, line := range src {
		if set.Match(line) && len(current) > 0 {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups
}

// Insert splices a copy of block before or after every line in which set
// finds a match anywhere. When nothing matches, src itself is returned so
// callers can detect the no-op
func Insert(src, block []string, set *pattern.Set, before bool) []string {
	var out []string
	changed := false

	for _, line := range src {
		if !set.Search(line) {
			out = append(out, line)
			continue
		}

		if !before {
			out = append(out, line)
		}
		out = append(out, block...)
		if before {
			out = append(out, line)
		}
		changed = true
	}

	if !changed {
		return src
	}
	return out
}

// Find reports whether any line matches set at its start
func Find(src []string, set *pattern.Set) bool {
	for _, line := range src {
		if set.Match(line) {
			return true
		}
	}
	return false
}

// Concat joins groups back into one sequence
func Concat(groups [][]string) []string {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]string, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
