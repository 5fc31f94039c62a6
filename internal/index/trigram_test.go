package index

import (
	"testing"
)

func TestTrigramSearch(t *testing.T) {
	idx := NewTrigramIndex()

	content := `def load_config(path):
    return parse(path)

def main():
    cfg = load_config("a.yaml")
    reload_config = load_config
`

	idx.AddFile("/test/file.py", []byte(content))

	refs := idx.Search("load_config")

	for _, ref := range refs {
		t.Logf("  Line %d, Col %d, Len %d: %s", ref.Line, ref.Column, ref.Length, ref.LineText)
	}

	// 1 definition + 2 uses; reload_config is a different word
	if len(refs) != 3 {
		t.Fatalf("Expected 3 references, got %d", len(refs))
	}
	if refs[0].Line != 1 || refs[0].Column != 4 || refs[0].Length != len("load_config") {
		t.Errorf("unexpected first reference %+v", refs[0])
	}
	if refs[2].Line != 6 || refs[2].Column != 20 {
		t.Errorf("unexpected last reference %+v", refs[2])
	}
}

func TestTrigramSearchShortWord(t *testing.T) {
	idx := NewTrigramIndex()
	idx.AddFile("/test/a.py", []byte("x = 1\nxy = x\n"))
	idx.AddFile("/test/b.py", []byte("y = 2\n"))

	refs := idx.Search("x")
	if len(refs) != 2 {
		t.Errorf("Expected 2 references, got %d", len(refs))
	}
}

func TestTrigramRemoveAndReplace(t *testing.T) {
	idx := NewTrigramIndex()
	idx.AddFile("/test/a.py", []byte("def alpha():\n"))
	idx.AddFile("/test/a.py", []byte("def beta():\n"))

	if refs := idx.Search("alpha"); len(refs) != 0 {
		t.Errorf("replaced content still found: %+v", refs)
	}
	if refs := idx.Search("beta"); len(refs) != 1 {
		t.Errorf("Expected 1 reference, got %d", len(refs))
	}

	idx.RemoveFile("/test/a.py")
	if idx.Len() != 0 || len(idx.trigrams) != 0 {
		t.Errorf("index not empty after remove: %d files, %d trigrams", idx.Len(), len(idx.trigrams))
	}
}

func TestWordPattern(t *testing.T) {
	tests := []struct {
		word        string
		text        string
		shouldMatch bool
	}{
		{"foo", "foo(bar)", true},
		{"foo", "foobar", false},
		{"foo", "_foo", false},
		{"@cache", "    @cache", true},
		{"@cache", "@cached", false},
		{"self.x", "self.x = 1", true},
		{"self.x", "myself.x", false},
		{"__init__", "def __init__(self):", true},
	}

	for _, tc := range tests {
		re := wordPattern(tc.word)
		matched := re.MatchString(tc.text)
		if matched != tc.shouldMatch {
			t.Errorf("Word %q against %q: expected match=%v, got %v (regex: %s)",
				tc.word, tc.text, tc.shouldMatch, matched, re.String())
		}
	}
}
