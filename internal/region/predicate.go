package region

import (
	"strings"

	"github.com/jarredhawkins/linestruct/internal/pattern"
)

// TrimmedPrefix holds when the line, stripped of surrounding whitespace,
// starts with p
func TrimmedPrefix(p string) Predicate {
	return func(line string) bool {
		return strings.HasPrefix(strings.TrimSpace(line), p)
	}
}

// TrimmedSuffix holds when the line, stripped of surrounding whitespace,
// ends with s
func TrimmedSuffix(s string) Predicate {
	return func(line string) bool {
		return strings.HasSuffix(strings.TrimSpace(line), s)
	}
}

// Contains holds when the line contains sub
func Contains(sub string) Predicate {
	return func(line string) bool {
		return strings.Contains(line, sub)
	}
}

// Matches holds when set matches at the start of the line
func Matches(set *pattern.Set) Predicate {
	return set.Match
}

// Searches holds when set matches anywhere in the line
func Searches(set *pattern.Set) Predicate {
	return set.Search
}

// Not negates p
func Not(p Predicate) Predicate {
	return func(line string) bool {
		return !p(line)
	}
}
