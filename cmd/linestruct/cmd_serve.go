package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jarredhawkins/linestruct/internal/index"
	"github.com/jarredhawkins/linestruct/internal/lsp"
	"github.com/jarredhawkins/linestruct/internal/watcher"
)

func (a *app) serveCmd() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve block outlines over the Language Server Protocol on stdio",
		Long: `Index the workspace and serve document symbols, folding ranges,
workspace symbols, definitions and references over the Language Server
Protocol on stdin/stdout.

Logs go to stderr unless --log is set; stdout carries the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), !noWatch)
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not re-index files when they change on disk")
	return cmd
}

func (a *app) serve(ctx context.Context, watch bool) error {
	a.logger.Info("linestruct starting",
		zap.String("root", a.workspace),
		zap.String("version", lsp.Version))

	registry, err := a.registry()
	if err != nil {
		return err
	}

	idx, err := index.New(a.workspace, registry, index.OptionsFromConfig(a.cfg, a.logger))
	if err != nil {
		return err
	}
	if err := idx.Build(ctx); err != nil {
		return err
	}

	if watch {
		w, err := watcher.New(a.workspace, func(changed, removed []string) {
			for _, path := range removed {
				idx.RemoveFile(path)
			}
			for _, path := range changed {
				if !idx.Accepts(path) {
					continue
				}
				if err := idx.UpdateFile(path); err != nil {
					a.logger.Warn("failed to update file", zap.String("path", path), zap.Error(err))
				}
			}
		}, watcher.Options{
			Filter:   a.cfg.Filter(),
			Debounce: a.cfg.Debounce(),
			Logger:   a.logger,
		})
		if err != nil {
			return err
		}
		defer w.Close()

		if err := w.Start(); err != nil {
			return err
		}
	}

	server := lsp.NewServer(idx, a.logger)
	err = server.Serve(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	a.logger.Info("linestruct shutdown complete")
	return err
}
