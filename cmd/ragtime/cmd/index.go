package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ragtime-dev/ragtime/internal/fetch"
	"github.com/ragtime-dev/ragtime/internal/index"
	"github.com/ragtime-dev/ragtime/internal/ui"
	"github.com/ragtime-dev/ragtime/internal/watcher"
)

func newIndexCmd() *cobra.Command {
	var watch bool
	var concurrency int

	cmd := &cobra.Command{
		Use:   "index [DATA_DIR]",
		Short: "Index the data directory into the document store",
		Long: `Fetch every URL listed in <data_dir>/links/*.txt, read every local
file under the data directory, embed the content, and store it with
deduplication by source.

DATA_DIR overrides the configured data directory.

Examples:
  # One-shot indexing run
  ragtime index

  # Index a specific directory
  ragtime index ./docs

  # Keep watching the data directory and re-index on changes
  ragtime index --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir := ""
			if len(args) == 1 {
				dataDir = args[0]
			}
			return runIndex(cmd, dataDir, watch, concurrency)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Re-index whenever the data directory changes")
	cmd.Flags().IntVar(&concurrency, "concurrency", index.DefaultFetchConcurrency, "Maximum concurrent URL fetches")

	return cmd
}

func runIndex(cmd *cobra.Command, dataDir string, watch bool, concurrency int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	renderer := ui.NewRenderer(ui.Config{
		Output:     cmd.OutOrStdout(),
		ForcePlain: plainOutput,
		NoColor:    ui.DetectNoColor(),
	})

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	runner := index.NewRunner(s, embedder, fetch.NewFetcher(0), slog.Default(), concurrency)

	if err := runOnce(ctx, runner, renderer, cfg.DataDir, embedder.ModelName()); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	return watchAndReindex(ctx, cmd, runner, renderer, cfg.DataDir, embedder.ModelName())
}

func runOnce(ctx context.Context, runner *index.Runner, renderer ui.Renderer, dataDir, model string) error {
	renderer.UpdateProgress(ui.ProgressEvent{
		Stage:   ui.StageCollecting,
		Message: "collecting sources from " + dataDir,
	})

	result, err := runner.Run(ctx, dataDir)
	if err != nil {
		renderer.AddError(ui.ErrorEvent{Source: dataDir, Err: err})
		return err
	}

	renderer.Complete(ui.CompletionStats{
		Indexed:  result.Indexed,
		Skipped:  result.Skipped,
		Failed:   result.Failed,
		Duration: result.Duration,
		Model:    model,
	})
	return nil
}

// watchAndReindex re-runs indexing whenever the data directory changes.
// Batches arrive already debounced, so a burst of file writes triggers
// a single run.
func watchAndReindex(ctx context.Context, cmd *cobra.Command, runner *index.Runner, renderer ui.Renderer, dataDir, model string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.NewDataWatcher(watcher.Options{})
	if err != nil {
		return err
	}
	if err := w.Start(ctx, dataDir); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintln(cmd.OutOrStdout(), "Watching", dataDir, "for changes (Ctrl+C to stop)")

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			renderer.AddError(ui.ErrorEvent{Source: dataDir, Err: err, IsWarn: true})
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			slog.Info("data_dir_changed", "events", len(batch))
			if err := runOnce(ctx, runner, renderer, dataDir, model); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				// one failed run must not kill the watch loop
				renderer.AddError(ui.ErrorEvent{Source: dataDir, Err: err, IsWarn: true})
			}
		}
	}
}
