package docmerge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellGenerator(t *testing.T) {
	script := `read -r header
printf '%s\n' 'Here you go:' '` + "```python" + `' "$header" "    \"\"\"$DOC\"\"\"" '` + "```" + `' 'Bye.'
`
	gen, err := NewShellGenerator(script, t.TempDir())
	require.NoError(t, err)
	gen = gen.WithEnv("DOC=Generated.")

	out, err := gen.Generate(context.Background(), []string{"def f(x):\n", "    return x\n"})
	require.NoError(t, err)
	assert.Equal(t, []string{"def f(x):\n", "    \"\"\"Generated.\"\"\"\n"}, out)
}

func TestShellGeneratorErrors(t *testing.T) {
	t.Run("syntax error", func(t *testing.T) {
		_, err := NewShellGenerator("if then fi (", "")
		assert.Error(t, err)
	})

	t.Run("non-zero exit", func(t *testing.T) {
		gen, err := NewShellGenerator("echo oops >&2; exit 3", "")
		require.NoError(t, err)
		_, err = gen.Generate(context.Background(), []string{"def f():\n"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 3")
		assert.Contains(t, err.Error(), "oops")
	})

	t.Run("no fenced block", func(t *testing.T) {
		gen, err := NewShellGenerator("echo 'no code here'", "")
		require.NoError(t, err)
		_, err = gen.Generate(context.Background(), []string{"def f():\n"})
		assert.ErrorIs(t, err, ErrNoCode)
	})
}
