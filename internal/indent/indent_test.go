package indent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadingIndent(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    string
		wantErr bool
	}{
		{"no indent", []string{"def a():\n"}, "", false},
		{"spaces", []string{"    return 1\n"}, "    ", false},
		{"tabs and spaces kept literally", []string{"\t  x\n"}, "\t  ", false},
		{"skips blank lines", []string{"\n", "   \n", "  y\n"}, "  ", false},
		{"all blank", []string{"\n", " \t\n"}, "", true},
		{"nothing", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LeadingIndent(tt.lines...)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoIndentFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		name   string
		group  []string
		want   int
		wantOK bool
	}{
		{"top level", []string{"class A:\n", "    pass\n"}, 0, true},
		{"method", []string{"    def m(self):\n", "        pass\n"}, 4, true},
		{"tab counts as one", []string{"\tdef m(self):\n"}, 1, true},
		{"leading blank skipped", []string{"\n", "  x = 1\n"}, 2, true},
		{"empty", nil, 0, false},
		{"blank", []string{"\n", "    \n"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Depth(tt.group)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndentAfter(t *testing.T) {
	src := []string{
		"import os\n",
		"\n",
		"def helper(x):\n",
		"\n",
		"  return x\n",
		"class A:\n",
		"\tdef method(self):\n",
		"\t\tpass\n",
	}

	got, err := IndentAfter(src, "def helper")
	require.NoError(t, err)
	assert.Equal(t, "  ", got)

	got, err = IndentAfter(src, "def method")
	require.NoError(t, err)
	assert.Equal(t, "\t\t", got)

	_, err = IndentAfter(src, "def missing")
	assert.ErrorIs(t, err, ErrNoIndentFound)

	_, err = IndentAfter([]string{"def last():\n", "\n"}, "def last")
	assert.ErrorIs(t, err, ErrNoIndentFound)
}
