package region

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jarredhawkins/linestruct/internal/pattern"
)

func equals(s string) Predicate {
	return func(line string) bool { return line == s }
}

func always(string) bool { return true }

func TestPairMatch(t *testing.T) {
	signature := TrimmedSuffix("):")
	docstring := TrimmedPrefix(`"""`)

	tests := []struct {
		name      string
		lines     []string
		first     Predicate
		second    Predicate
		wantFound bool
		wantIndex int
	}{
		{"empty", nil, always, always, false, 0},
		{"single line never matches", []string{"a"}, always, always, false, 0},
		{
			name:      "docstring on next line",
			lines:     []string{"def foo():\n", "    \"\"\"doc\"\"\"\n", "    pass\n"},
			first:     signature,
			second:    docstring,
			wantFound: true,
			wantIndex: 1,
		},
		{
			name:      "no docstring",
			lines:     []string{"def foo():\n", "    pass\n"},
			first:     signature,
			second:    docstring,
			wantFound: false,
			wantIndex: 0,
		},
		{
			name:      "same line satisfies both",
			lines:     []string{"x", "ab", "y"},
			first:     Contains("a"),
			second:    Contains("b"),
			wantFound: true,
			wantIndex: 1,
		},
		{
			name:      "last line is not tested as first",
			lines:     []string{"x", "ab"},
			first:     Contains("a"),
			second:    Contains("b"),
			wantFound: false,
			wantIndex: 0,
		},
		{
			name:      "first satisfying position wins",
			lines:     []string{"a", "b", "a", "b"},
			first:     equals("a"),
			second:    equals("b"),
			wantFound: true,
			wantIndex: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, idx := PairMatch(tt.lines, tt.first, tt.second)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantIndex, idx)
		})
	}
}

func TestContinueMatch(t *testing.T) {
	isA := equals("a")
	isY := equals("y")

	tests := []struct {
		name      string
		lines     []string
		wantFound bool
		wantIndex int
	}{
		{"count above one does not match", []string{"a", "x", "a", "a", "y"}, false, 0},
		{"exactly one", []string{"x", "a", "x", "y"}, true, 3},
		{"zero count resets", []string{"y", "a", "y"}, true, 2},
		{"reset after spurious second", []string{"a", "a", "y", "a", "y"}, true, 4},
		{"empty", nil, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, idx := ContinueMatch(tt.lines, isA, isY)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantIndex, idx)
		})
	}
}

func TestContinueMatchSignatureBody(t *testing.T) {
	group := []string{
		"def foo(a,\n",
		"        b):\n",
		"    return a + b\n",
	}

	found, idx := ContinueMatch(group, TrimmedSuffix("):"), Not(TrimmedPrefix(`"""`)))
	assert.True(t, found)
	assert.Equal(t, 1, idx)
}

func TestExtract(t *testing.T) {
	group := []string{"def foo():\n", "    \"\"\"doc\"\"\"\n", "    pass\n"}

	region, end := Extract(group, TrimmedSuffix("):"), TrimmedPrefix(`"""`))
	assert.Equal(t, []string{"def foo():\n", "    \"\"\"doc\"\"\"\n"}, region)
	assert.Equal(t, 1, end)
}

func TestExtractEntryLineDoesNotFinish(t *testing.T) {
	quote := TrimmedPrefix(`"""`)
	group := []string{
		"def foo():\n",
		"    \"\"\"Summary.\n",
		"\n",
		"    Details.\n",
		"    \"\"\"\n",
		"    pass\n",
	}

	region, end := Extract(group, quote, quote)
	assert.Equal(t, group[1:5], region)
	assert.Equal(t, 4, end)
}

func TestExtractRunsToEnd(t *testing.T) {
	group := []string{"x", "start", "a", "b"}

	region, end := Extract(group, equals("start"), equals("finish"))
	assert.Equal(t, []string{"start", "a", "b"}, region)
	assert.Equal(t, len(group), end)

	region, end = Extract(group, equals("missing"), equals("b"))
	assert.Empty(t, region)
	assert.Equal(t, len(group), end)
}

func TestPatternPredicates(t *testing.T) {
	set := pattern.MustNew(`def `)

	assert.True(t, Matches(set)("def a"))
	assert.False(t, Matches(set)("  def a"))
	assert.True(t, Searches(set)("  def a"))
	assert.True(t, Not(Matches(set))("  def a"))
}
