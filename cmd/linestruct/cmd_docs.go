package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jarredhawkins/linestruct/internal/docmerge"
	"github.com/jarredhawkins/linestruct/internal/lines"
)

var errNoGenerator = errors.New("no generator: pass --generator or set generator in the config file")

func (a *app) docsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Find and fill in missing Python docstrings",
		Long: `Find and fill in missing Python docstrings.

A file is cut into function groups at every column-0 "def". Groups without a
docstring are handed to a generator script, and the docstrings found in its
replies are spliced in after each signature.`,
	}

	cmd.AddCommand(
		a.docsPendingCmd(),
		a.docsMarkersCmd(),
		a.docsGenerateCmd(),
		a.docsMergeCmd(),
	)
	return cmd
}

func (a *app) docsPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending FILE",
		Short: "List functions without a docstring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := lines.Load(args[0], false)
			if err != nil {
				return err
			}

			pending := docmerge.Pending(docmerge.Groups(src))
			for _, g := range pending {
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(g[0], "\r\n"))
			}
			a.logger.Debug("pending functions", zap.Int("count", len(pending)))
			return nil
		},
	}
}

func (a *app) docsMarkersCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "markers FILE",
		Short: "Print the file with a separator before every function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := lines.Load(args[0], false)
			if err != nil {
				return err
			}
			return output(cmd, docmerge.Markers(src), outPath)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the result to a file instead of stdout")
	return cmd
}

// envFile holds KEY=VALUE pairs exported to the generator, typically API keys
const envFile = ".env"

// generator builds the shell generator from the flag or the config file. Pairs
// from the workspace env file are added to the process environment
func (a *app) generator(script string) (*docmerge.ShellGenerator, error) {
	if script == "" {
		script = a.cfg.Generator
	}
	if script == "" {
		return nil, errNoGenerator
	}

	gen, err := docmerge.NewShellGenerator(script, a.workspace)
	if err != nil {
		return nil, err
	}

	vars, err := godotenv.Read(filepath.Join(a.workspace, envFile))
	if errors.Is(err, fs.ErrNotExist) {
		return gen, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", envFile, err)
	}

	pairs := make([]string, 0, len(vars))
	for k, v := range vars {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	a.logger.Debug("generator environment loaded", zap.Int("vars", len(pairs)))
	return gen.WithEnv(pairs...), nil
}

func (a *app) docsGenerateCmd() *cobra.Command {
	var (
		script  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "generate FILE",
		Short: "Run the generator for every function without a docstring",
		Long: `Run the generator for every function without a docstring and print the
concatenated replies. The output can be reviewed and passed to
"docs merge --generated".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := a.generator(script)
			if err != nil {
				return err
			}
			src, err := lines.Load(args[0], false)
			if err != nil {
				return err
			}

			generated, err := docmerge.New(gen, a.logger).Generated(cmd.Context(), docmerge.Groups(src))
			if err != nil {
				return err
			}
			return output(cmd, generated, outPath)
		},
	}

	cmd.Flags().StringVarP(&script, "generator", "g", "", "Generator shell script (default: generator from the config file)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the result to a file instead of stdout")
	return cmd
}

func (a *app) docsMergeCmd() *cobra.Command {
	var (
		generatedPath string
		script        string
		outPath       string
		write         bool
	)

	cmd := &cobra.Command{
		Use:   "merge FILE",
		Short: "Splice generated docstrings into a file",
		Long: `Splice generated docstrings into a file.

Docstrings are read from --generated, a file written by "docs generate", or
produced on the fly by the generator script.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := lines.Load(args[0], false)
			if err != nil {
				return err
			}

			var merged []string
			if generatedPath != "" {
				generated, err := lines.Load(generatedPath, false)
				if err != nil {
					return err
				}
				merged = docmerge.New(nil, a.logger).Merge(src, generated)
			} else {
				gen, err := a.generator(script)
				if err != nil {
					return err
				}
				if merged, err = docmerge.New(gen, a.logger).Run(cmd.Context(), src); err != nil {
					return err
				}
			}

			if write {
				outPath = args[0]
			}
			a.logger.Info("docstrings merged",
				zap.String("file", args[0]),
				zap.Int("added_lines", len(merged)-len(src)))
			return output(cmd, merged, outPath)
		},
	}

	cmd.Flags().StringVar(&generatedPath, "generated", "", "File holding generated functions")
	cmd.Flags().StringVarP(&script, "generator", "g", "", "Generator shell script (default: generator from the config file)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().BoolVar(&write, "write", false, "Rewrite FILE in place")
	cmd.MarkFlagsMutuallyExclusive("generated", "generator")
	cmd.MarkFlagsMutuallyExclusive("write", "output")
	return cmd
}
