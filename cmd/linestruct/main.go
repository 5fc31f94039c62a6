package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jarredhawkins/linestruct/internal/config"
	"github.com/jarredhawkins/linestruct/internal/lines"
	"github.com/jarredhawkins/linestruct/internal/parser"
)

// app carries global flags and the state built from them
type app struct {
	verbose    bool
	logFile    string
	configPath string
	workspace  string
	preset     string

	logger *zap.Logger
	cfg    *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "linestruct",
		Short: "Line-oriented structure tools for source files",
		Long: `linestruct cuts source files into blocks at header lines matched by
regular expressions, threads the blocks into a tree by indentation, and
splices lines at pattern-anchored positions.

It also serves block outlines over the Language Server Protocol.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&a.logFile, "log", "", "Log file path (defaults to stderr)")
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default: <workspace>/"+config.DefaultFile+")")
	rootCmd.PersistentFlags().StringVarP(&a.workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&a.preset, "preset", "", "Header preset, overriding the config file")

	rootCmd.AddCommand(
		a.splitCmd(),
		a.treeCmd(),
		a.insertCmd(),
		a.extractCmd(),
		a.locateCmd(),
		a.docsCmd(),
		a.serveCmd(),
	)
	return rootCmd
}

// setup loads the configuration and initializes the logger from it; the
// --verbose and --log flags override the logging section
func (a *app) setup(cmd *cobra.Command, args []string) error {
	var err error
	if a.workspace == "" {
		if a.workspace, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	if a.configPath != "" {
		a.cfg, err = config.Load(a.configPath)
	} else {
		a.cfg, err = config.LoadWorkspace(a.workspace)
	}
	if err != nil {
		return err
	}

	if a.preset != "" {
		a.cfg.Preset = a.preset
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}

	logConfig := zap.NewProductionConfig()
	if level := a.cfg.Logging.Level; level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		logConfig.Level = lvl
	}
	if a.verbose {
		logConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logFile := a.cfg.Logging.File
	if a.logFile != "" {
		logFile = a.logFile
	}
	if logFile != "" {
		logConfig.OutputPaths = []string{logFile}
		logConfig.ErrorOutputPaths = []string{logFile}
	}

	a.logger, err = logConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger.Debug("configuration loaded",
		zap.String("workspace", a.workspace),
		zap.String("preset", a.cfg.Preset),
		zap.Int("patterns", len(a.cfg.Patterns)))
	return nil
}

// registry builds the header registry from the configuration
func (a *app) registry() (*parser.Registry, error) {
	return a.cfg.Registry()
}

// output writes result lines to path, or to the command's stdout when path is empty
func output(cmd *cobra.Command, src []string, path string) error {
	if path != "" {
		return lines.Dump(src, path, false)
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), lines.Text(src))
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
