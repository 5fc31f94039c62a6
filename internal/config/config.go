// Package config loads the linestruct settings file
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jarredhawkins/linestruct/internal/parser"
	"github.com/jarredhawkins/linestruct/internal/pattern"
)

// DefaultFile is looked up in the workspace root when no path is given
const DefaultFile = ".linestruct.yaml"

// PresetNone disables the built-in matchers so only custom patterns apply
const PresetNone = "none"

var (
	// ErrNoPatterns is returned when neither a preset nor custom patterns are configured
	ErrNoPatterns = errors.New("no preset or patterns configured")

	// ErrInvalidConfig wraps every validation failure
	ErrInvalidConfig = errors.New("invalid config")
)

// Config holds all linestruct settings
type Config struct {
	// Preset names a built-in matcher set, "none" for custom patterns only
	Preset string `yaml:"preset"`

	// Patterns are custom block headers, registered ahead of the preset
	Patterns []PatternConfig `yaml:"patterns"`

	// Include and Exclude are doublestar globs relative to the workspace root
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	CacheSize   int `yaml:"cache_size"`  // parsed outlines kept in memory
	DebounceMS  int `yaml:"debounce_ms"` // quiet period before a change batch is handled
	Concurrency int `yaml:"concurrency"` // files parsed in parallel while indexing

	// Generator is a shell script run once per undocumented function by "docs merge"
	Generator string `yaml:"generator,omitempty"`

	Logging LoggingConfig `yaml:"logging"`
}

// PatternConfig declares one named block header
type PatternConfig struct {
	Name     string   `yaml:"name"`
	Match    []string `yaml:"match"`
	Priority int      `yaml:"priority,omitempty"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file,omitempty"`
}

// DefaultConfig returns the settings used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Preset:      "python",
		Include:     []string{"**/*.py"},
		Exclude:     DefaultExcludes(),
		CacheSize:   512,
		DebounceMS:  100,
		Concurrency: 8,
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

var defaultExcludes = []string{
	"**/.git/**",
	"**/vendor/**",
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/*.swp",
	"**/*~",
}

// DefaultExcludes returns a copy of the built-in exclude globs
func DefaultExcludes() []string {
	out := make([]string, len(defaultExcludes))
	copy(out, defaultExcludes)
	return out
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults; keys absent from the file keep their default values
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWorkspace loads DefaultFile from root
func LoadWorkspace(root string) (*Config, error) {
	return Load(filepath.Join(root, DefaultFile))
}

// Save writes the configuration to a YAML file
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks preset names, regular expressions, globs and limits
func (c *Config) Validate() error {
	var errs []error

	if (c.Preset == "" || c.Preset == PresetNone) && len(c.Patterns) == 0 {
		errs = append(errs, ErrNoPatterns)
	}
	if c.Preset != "" && c.Preset != PresetNone {
		if err := parser.RegisterPreset(parser.NewRegistry(), c.Preset); err != nil {
			errs = append(errs, err)
		}
	}

	for i, p := range c.Patterns {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("patterns[%d]: missing name", i))
			continue
		}
		if _, err := pattern.NewNamed(p.Name, p.Match...); err != nil {
			errs = append(errs, fmt.Errorf("patterns[%d]: %w", i, err))
		}
	}

	if err := validateGlobs(c.Include, "include"); err != nil {
		errs = append(errs, err)
	}
	if err := validateGlobs(c.Exclude, "exclude"); err != nil {
		errs = append(errs, err)
	}

	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize))
	}
	if c.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMS))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Registry builds the matcher registry: custom patterns first, then the preset
func (c *Config) Registry() (*parser.Registry, error) {
	r := parser.NewRegistry()

	for _, p := range c.Patterns {
		named, err := pattern.NewNamed(p.Name, p.Match...)
		if err != nil {
			return nil, err
		}
		r.Register(parser.NewPatternMatcher(named).WithPriority(p.Priority))
	}

	if c.Preset != "" && c.Preset != PresetNone {
		if err := parser.RegisterPreset(r, c.Preset); err != nil {
			return nil, err
		}
	}

	if r.Len() == 0 {
		return nil, ErrNoPatterns
	}
	return r, nil
}

// Debounce returns the watcher quiet period
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Filter returns the include/exclude matcher for workspace paths
func (c *Config) Filter() *Filter {
	return NewFilter(c.Include, c.Exclude)
}
