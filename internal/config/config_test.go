package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "python", cfg.Preset)
	assert.Equal(t, []string{"**/*.py"}, cfg.Include)
	assert.Equal(t, 100*time.Millisecond, cfg.Debounce())
	require.NoError(t, cfg.Validate())

	r, err := cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, 4, r.Len())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
preset: ruby
patterns:
  - name: task
    match: ['task\s+:\w+']
    priority: 5
include: ["lib/**/*.rb", "Rakefile"]
debounce_ms: 250
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ruby", cfg.Preset)
	assert.Equal(t, []string{"lib/**/*.rb", "Rakefile"}, cfg.Include)
	assert.Equal(t, DefaultExcludes(), cfg.Exclude)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 8, cfg.Concurrency)

	r, err := cfg.Registry()
	require.NoError(t, err)
	m, ok := r.Classify("task :build do")
	require.True(t, ok)
	assert.Equal(t, "task", m.Name())

	m, ok = r.Classify("  def run")
	require.True(t, ok)
	assert.Equal(t, "method", m.Name())
}

func TestLoadCustomOnly(t *testing.T) {
	path := writeConfig(t, `
preset: none
patterns:
  - name: section
    match: ['\[\w+\]']
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	r, err := cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	_, ok := r.Classify("def f():")
	assert.False(t, ok)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "preset: [", "failed to parse config"},
		{"unknown preset", "preset: cobol", "unknown preset"},
		{"no patterns", "preset: none", ErrNoPatterns.Error()},
		{"bad regexp", "patterns: [{name: x, match: ['(']}]", "patterns[0]"},
		{"unnamed pattern", "patterns: [{match: ['x']}]", "missing name"},
		{"empty pattern list", "patterns: [{name: x}]", "patterns[0]"},
		{"bad glob", "include: ['[']", "invalid include pattern"},
		{"bad concurrency", "concurrency: 0", "concurrency must be at least 1"},
		{"negative cache", "cache_size: -1", "cache_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateWrapsSentinel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Concurrency = 0
	cfg.DebounceMS = -5

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "debounce_ms")
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Patterns = []PatternConfig{{Name: "cell", Match: []string{`# %%`}}}
	cfg.Generator = "cat"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadWorkspace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("cache_size: 3\n"), 0644))

	cfg, err := LoadWorkspace(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.CacheSize)
}
