package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ragtime-dev/ragtime/internal/qa"
)

func newAskCmd() *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Ask a single question against the indexed documents",
		Long: `Ask one question and print the answer.

The question is embedded, matched against the stored documents, and
answered by the generation model using the retrieved context. The
exchange is recorded in chat history.

Examples:
  ragtime ask "What does the deployment guide say about rollbacks?"
  ragtime ask --session work how do I configure retries`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, session, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "Chat session ID to record the exchange under (default: new session)")

	return cmd
}

func runAsk(cmd *cobra.Command, session, question string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

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

	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer generator.Close()

	engine := qa.NewEngine(s, embedder, generator, session, qa.Options{
		TopK:             cfg.Retrieval.TopK,
		MinSimilarity:    cfg.Retrieval.MinSimilarity,
		SummaryBudget:    cfg.Budgets.SummaryBudget,
		MaxPromptTokens:  cfg.Budgets.MaxPromptTokens,
		MaxHistoryTokens: cfg.Budgets.MaxHistoryTokens,
	}, slog.Default())

	answer, err := engine.Answer(ctx, question)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
