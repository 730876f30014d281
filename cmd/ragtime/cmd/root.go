// Package cmd provides the CLI commands for ragtime.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragtime-dev/ragtime/internal/config"
	"github.com/ragtime-dev/ragtime/internal/embed"
	"github.com/ragtime-dev/ragtime/internal/gen"
	"github.com/ragtime-dev/ragtime/internal/logging"
	"github.com/ragtime-dev/ragtime/internal/store"
	"github.com/ragtime-dev/ragtime/pkg/version"
)

var (
	configDir      string
	debugMode      bool
	plainOutput    bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the ragtime CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ragtime",
		Short: "Local RAG question answering over your documents",
		Long: `Ragtime indexes web pages and local files into a SQLite store,
embeds them with a local Ollama model, and answers questions against
the indexed content with retrieval-augmented generation.

Put documents in your data directory, list URLs in data/links/*.txt,
then run 'ragtime index' followed by 'ragtime chat'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("ragtime version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory containing "+config.FileName+" (default: current directory)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "Force plain output (no colors or styling)")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = teardownLogging

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func setupLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	}
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func teardownLogging(_ *cobra.Command, _ []string) {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
}

// loadConfig resolves configuration for the current invocation.
func loadConfig() (*config.Config, error) {
	dir := configDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = wd
	}
	return config.Load(dir)
}

// newEmbedder builds the embedding backend from config. A reachable
// Ollama instance is required; failure here means the model is not
// available and every downstream operation would fail too.
func newEmbedder(ctx context.Context, cfg *config.Config) (embed.Embedder, error) {
	return embed.NewEmbedder(ctx, embed.FactoryConfig{
		Host:          cfg.Embedder.Host,
		Model:         cfg.Embedder.Model,
		Dimensions:    cfg.Embedder.Dimensions,
		ContextTokens: cfg.Budgets.MaxTokens,
		BatchSize:     cfg.Embedder.BatchSize,
		CacheSize:     cfg.Embedder.CacheSize,
		Timeout:       cfg.Embedder.Timeout,
	})
}

func newGenerator(ctx context.Context, cfg *config.Config) (*gen.OllamaGenerator, error) {
	return gen.NewOllamaGenerator(ctx, gen.OllamaConfig{
		Host:  cfg.Generator.Host,
		Model: cfg.Generator.Model,
	})
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.ResolvedStorePath())
}
