package lines

import (
	"os"
	"strings"
)

// FromText splits text into lines that keep their trailing "\n". A final line
// without a terminator is kept as is
func FromText(text string) []string {
	if text == "" {
		return nil
	}
	out := strings.SplitAfter(text, "\n")
	if out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// Text joins lines without adding separators
func Text(src []string) string {
	var b strings.Builder
	for _, l := range src {
		b.WriteString(l)
	}
	return b.String()
}

// StripNewlines returns a copy of src with trailing "\n" removed from each line
func StripNewlines(src []string) []string {
	out := make([]string, len(src))
	for i, l := range src {
		out[i] = strings.TrimSuffix(l, "\n")
	}
	return out
}

// AppendNewlines returns a copy of src with "\n" appended to each line
func AppendNewlines(src []string) []string {
	out := make([]string, len(src))
	for i, l := range src {
		out[i] = l + "\n"
	}
	return out
}

// Load reads a text file into lines. With strip set the trailing newline of
// each line is removed
func Load(path string, strip bool) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := FromText(string(content))
	if strip {
		out = StripNewlines(out)
	}
	return out, nil
}

// Dump writes lines to path, appending "\n" to each one when terminate is set
func Dump(src []string, path string, terminate bool) error {
	if terminate {
		src = AppendNewlines(src)
	}

	return os.WriteFile(path, []byte(Text(src)), 0644)
}
