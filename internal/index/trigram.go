package index

import (
	"bufio"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/jarredhawkins/linestruct/internal/types"
)

// TrigramIndex provides word search across the indexed files
type TrigramIndex struct {
	mu sync.RWMutex

	// Inverted index: trigram -> set of file paths
	trigrams map[string]map[string]struct{}

	// File content kept for verification
	files map[string]string
}

// NewTrigramIndex creates a new trigram index
func NewTrigramIndex() *TrigramIndex {
	return &TrigramIndex{
		trigrams: make(map[string]map[string]struct{}),
		files:    make(map[string]string),
	}
}

// AddFile indexes a file's content, replacing any previous content
func (t *TrigramIndex) AddFile(path string, content []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.removeLocked(path)

	contentStr := string(content)
	t.files[path] = contentStr

	for i := 0; i <= len(contentStr)-3; i++ {
		tri := contentStr[i : i+3]
		if t.trigrams[tri] == nil {
			t.trigrams[tri] = make(map[string]struct{})
		}
		t.trigrams[tri][path] = struct{}{}
	}
}

// RemoveFile removes a file from the index
func (t *TrigramIndex) RemoveFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.removeLocked(path)
}

func (t *TrigramIndex) removeLocked(path string) {
	content, ok := t.files[path]
	if !ok {
		return
	}

	delete(t.files, path)

	for i := 0; i <= len(content)-3; i++ {
		tri := content[i : i+3]
		if files, ok := t.trigrams[tri]; ok {
			delete(files, path)
			if len(files) == 0 {
				delete(t.trigrams, tri)
			}
		}
	}
}

// Len returns the number of indexed files
func (t *TrigramIndex) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.files)
}

// Search finds whole-word occurrences of word, ordered by path, line and column
func (t *TrigramIndex) Search(word string) []*types.Reference {
	if word == "" {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	candidates := t.findCandidates(word)
	if len(candidates) == 0 {
		return nil
	}

	re := wordPattern(word)

	var refs []*types.Reference
	for path := range candidates {
		if content, ok := t.files[path]; ok {
			refs = append(refs, searchContent(path, content, re)...)
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return refs
}

// SearchFile finds whole-word occurrences of word in a single indexed file
func (t *TrigramIndex) SearchFile(path, word string) []*types.Reference {
	if word == "" {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	content, ok := t.files[path]
	if !ok {
		return nil
	}
	return searchContent(path, content, wordPattern(word))
}

// findCandidates uses trigram intersection to find candidate files
func (t *TrigramIndex) findCandidates(word string) map[string]struct{} {
	if len(word) < 3 {
		// Too short for trigrams, every file is a candidate
		result := make(map[string]struct{}, len(t.files))
		for path := range t.files {
			result[path] = struct{}{}
		}
		return result
	}

	var candidates map[string]struct{}

	for i := 0; i <= len(word)-3; i++ {
		files, ok := t.trigrams[word[i:i+3]]
		if !ok {
			return nil
		}

		if candidates == nil {
			candidates = make(map[string]struct{}, len(files))
			for path := range files {
				candidates[path] = struct{}{}
			}
		} else {
			for path := range candidates {
				if _, ok := files[path]; !ok {
					delete(candidates, path)
				}
			}
		}

		if len(candidates) == 0 {
			return nil
		}
	}

	return candidates
}

// searchContent verifies matches line by line
func searchContent(path, content string, re *regexp.Regexp) []*types.Reference {
	var refs []*types.Reference

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		for _, match := range re.FindAllStringIndex(line, -1) {
			refs = append(refs, &types.Reference{
				FilePath: path,
				Line:     lineNum,
				Column:   match[0],
				Length:   match[1] - match[0],
				LineText: line,
			})
		}
	}

	return refs
}

// wordPattern matches word with a word boundary on each edge that is an
// identifier character. Edges such as "@" or "(" match as is
func wordPattern(word string) *regexp.Regexp {
	expr := regexp.QuoteMeta(word)
	if isWordByte(word[0]) {
		expr = `\b` + expr
	}
	if isWordByte(word[len(word)-1]) {
		expr += `\b`
	}
	return regexp.MustCompile(expr)
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
