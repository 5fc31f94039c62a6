package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jarredhawkins/linestruct/internal/indent"
	"github.com/jarredhawkins/linestruct/internal/lines"
	"github.com/jarredhawkins/linestruct/internal/parser"
	"github.com/jarredhawkins/linestruct/internal/pattern"
	"github.com/jarredhawkins/linestruct/internal/region"
)

var (
	errNoRegion = errors.New("no matching region")
	errNoMatch  = errors.New("no line matched")
)

func (a *app) splitCmd() *cobra.Command {
	var patterns []string

	cmd := &cobra.Command{
		Use:   "split FILE",
		Short: "Cut a file into groups at lines matching a header pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := pattern.New(patterns...)
			if err != nil {
				return err
			}
			src, err := lines.Load(args[0], false)
			if err != nil {
				return err
			}

			groups := lines.Split(src, set)
			a.logger.Debug("split file", zap.String("file", args[0]), zap.Int("groups", len(groups)))

			out := cmd.OutOrStdout()
			for i, g := range groups {
				fmt.Fprintf(out, "----- group %d (%d lines)\n", i+1, len(g))
				fmt.Fprint(out, lines.Text(g))
				if last := g[len(g)-1]; !strings.HasSuffix(last, "\n") {
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&patterns, "pattern", "p", []string{`def .*`}, "Header pattern, repeatable; matched at line start")
	return cmd
}

func (a *app) treeCmd() *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the block tree of a file",
		Long: `Print the block tree of a file using the configured header patterns.

Blocks nest by the indentation of their first non-blank line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := a.registry()
			if err != nil {
				return err
			}
			src, err := lines.Load(args[0], false)
			if err != nil {
				return err
			}

			blocks := parser.NewScanner(registry).Parse(src)
			a.logger.Debug("parsed file",
				zap.String("file", args[0]),
				zap.Int("roots", len(blocks)),
				zap.Int("blocks", parser.Count(blocks)))

			if summary {
				return parser.Summary(cmd.OutOrStdout(), blocks)
			}
			return parser.Render(cmd.OutOrStdout(), blocks)
		},
	}

	cmd.Flags().BoolVarP(&summary, "summary", "s", false, "Print only block headers")
	return cmd
}

func (a *app) insertCmd() *cobra.Command {
	var (
		patterns []string
		block    []string
		before   bool
		bodyOf   string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "insert FILE",
		Short: "Insert lines before or after every line matching a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := pattern.New(patterns...)
			if err != nil {
				return err
			}
			src, err := lines.Load(args[0], false)
			if err != nil {
				return err
			}

			prefix := ""
			if bodyOf != "" {
				if prefix, err = indent.IndentAfter(src, bodyOf); err != nil {
					return fmt.Errorf("body indent of %q: %w", bodyOf, err)
				}
			}
			inserted := make([]string, len(block))
			for i, l := range block {
				inserted[i] = prefix + l + "\n"
			}

			result := lines.Insert(src, inserted, set, before)
			if sameLines(result, src) {
				a.logger.Warn("pattern matched no line, file unchanged", zap.Strings("pattern", patterns))
			}
			return output(cmd, result, outPath)
		},
	}

	cmd.Flags().StringArrayVarP(&patterns, "pattern", "p", nil, "Anchor pattern, repeatable; searched anywhere in the line")
	cmd.Flags().StringArrayVarP(&block, "line", "l", nil, "Line to insert, repeatable")
	cmd.Flags().BoolVarP(&before, "before", "b", false, "Insert before the anchor instead of after")
	cmd.Flags().StringVar(&bodyOf, "body-of", "", "Indent inserted lines like the body of the first definition starting with this text")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the result to a file instead of stdout")
	_ = cmd.MarkFlagRequired("pattern")
	_ = cmd.MarkFlagRequired("line")
	return cmd
}

// sameLines reports whether a and b are the same slice, which is how Insert
// signals that nothing matched
func sameLines(a, b []string) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

// predicate builds a line predicate from a pattern, anchored unless search is set
func predicate(source string, search bool) (region.Predicate, error) {
	set, err := pattern.New(source)
	if err != nil {
		return nil, err
	}
	if search {
		return region.Searches(set), nil
	}
	return region.Matches(set), nil
}

func (a *app) extractCmd() *cobra.Command {
	var (
		start, finish string
		search        bool
	)

	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Print the lines from a start pattern to the next finish pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startP, err := predicate(start, search)
			if err != nil {
				return err
			}
			finishP, err := predicate(finish, search)
			if err != nil {
				return err
			}
			src, err := lines.Load(args[0], false)
			if err != nil {
				return err
			}

			found, end := region.Extract(src, startP, finishP)
			if len(found) == 0 {
				return errNoRegion
			}
			if end == len(src) {
				a.logger.Debug("finish pattern not found, region runs to end of file")
			}
			return output(cmd, found, "")
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Pattern of the entry line")
	cmd.Flags().StringVar(&finish, "finish", "", "Pattern of the closing line")
	cmd.Flags().BoolVar(&search, "search", false, "Match patterns anywhere in the line")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("finish")
	return cmd
}

func (a *app) locateCmd() *cobra.Command {
	var (
		first, second string
		search        bool
		cont          bool
	)

	cmd := &cobra.Command{
		Use:   "locate FILE",
		Short: "Print the line number where a two-pattern scan succeeds",
		Long: `Print the 1-based line number where a two-pattern scan succeeds.

By default adjacent lines are paired: the first pattern must hold on a line
and the second on that line or the next. With --continue the scan counts
lines matching the first pattern and stops at a line matching the second
when exactly one was counted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			firstP, err := predicate(first, search)
			if err != nil {
				return err
			}
			secondP, err := predicate(second, search)
			if err != nil {
				return err
			}
			src, err := lines.Load(args[0], false)
			if err != nil {
				return err
			}

			scan := region.PairMatch
			if cont {
				scan = region.ContinueMatch
			}
			found, at := scan(src, firstP, secondP)
			if !found {
				return errNoMatch
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), at+1)
			return err
		},
	}

	cmd.Flags().StringVar(&first, "first", "", "First pattern")
	cmd.Flags().StringVar(&second, "second", "", "Second pattern")
	cmd.Flags().BoolVar(&search, "search", false, "Match patterns anywhere in the line")
	cmd.Flags().BoolVar(&cont, "continue", false, "Count first-pattern lines instead of pairing adjacent lines")
	_ = cmd.MarkFlagRequired("first")
	_ = cmd.MarkFlagRequired("second")
	return cmd
}
