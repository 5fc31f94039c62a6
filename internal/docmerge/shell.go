package docmerge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/jarredhawkins/linestruct/internal/lines"
)

// ShellGenerator runs a shell script for every group. The group is written to
// the script's stdin and the first fenced code block of its stdout is the
// generated code. The script runs in an embedded POSIX shell, so it behaves
// the same on every platform
type ShellGenerator struct {
	prog *syntax.File
	dir  string
	env  []string
}

// NewShellGenerator parses script; dir is the working directory, "" for the
// current one
func NewShellGenerator(script, dir string) (*ShellGenerator, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "generator")
	if err != nil {
		return nil, fmt.Errorf("parse generator script: %w", err)
	}
	return &ShellGenerator{prog: prog, dir: dir, env: os.Environ()}, nil
}

// WithEnv returns a copy of the generator that also exports the given
// KEY=VALUE pairs
func (g *ShellGenerator) WithEnv(pairs ...string) *ShellGenerator {
	c := *g
	c.env = append(append([]string(nil), g.env...), pairs...)
	return &c
}

func (g *ShellGenerator) Generate(ctx context.Context, group []string) ([]string, error) {
	var stdout, stderr bytes.Buffer

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(g.env...)),
		interp.StdIO(strings.NewReader(lines.Text(group)), &stdout, &stderr),
	}
	if g.dir != "" {
		opts = append(opts, interp.Dir(g.dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create interpreter: %w", err)
	}

	if err := runner.Run(ctx, g.prog); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return nil, fmt.Errorf("generator exited with status %d: %s", status, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("run generator: %w", err)
	}

	code := FencedCode(stdout.String())
	if code == nil {
		return nil, ErrNoCode
	}
	return code, nil
}

// ErrNoCode is returned when a generator reply holds no fenced code block
var ErrNoCode = errors.New("generator reply has no fenced code block")
