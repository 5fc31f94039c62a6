// Package indent measures leading indentation of lines and groups of lines
package indent

import (
	"errors"
	"strings"
)

// ErrNoIndentFound is returned when every examined line is blank
var ErrNoIndentFound = errors.New("no indented line found")

// blank reports whether line holds only whitespace
func blank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// prefix returns the literal run of spaces and tabs that starts line
func prefix(line string) string {
	end := 0
	for end < len(line) && (line[end] == ' ' || line[end] == '\t') {
		end++
	}
	return line[:end]
}

// LeadingIndent returns the spaces and tabs preceding the first non-whitespace
// character of the first non-blank line
func LeadingIndent(lines ...string) (string, error) {
	for _, line := range lines {
		if !blank(line) {
			return prefix(line), nil
		}
	}
	return "", ErrNoIndentFound
}

// Depth returns the character count of the leading indent of the first
// non-blank line of group. It reports false for an empty or all-blank group
func Depth(group []string) (int, bool) {
	ind, err := LeadingIndent(group...)
	if err != nil {
		return 0, false
	}
	return len(ind), true
}

// IndentAfter finds the first line whose trimmed text starts with header and
// returns the indent of the next non-blank line, i.e. the body indent of a
// definition such as "def name"
func IndentAfter(lines []string, header string) (string, error) {
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || !strings.HasPrefix(trimmed, header) {
			continue
		}
		if ind, err := LeadingIndent(lines[i+1:]...); err == nil {
			return ind, nil
		}
	}
	return "", ErrNoIndentFound
}
