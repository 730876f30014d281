package cmd

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ragtime-dev/ragtime/internal/qa"
	"github.com/ragtime-dev/ragtime/internal/tui"
)

func newChatCmd() *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Open a terminal chat over the indexed documents.

Each question is answered with retrieval-augmented generation and the
conversation carries across turns. Pass --session to resume recording
into an existing session ID.

Keys:
  Enter        submit question
  Ctrl+C / Ctrl+D   quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, session)
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "Chat session ID (default: new session)")

	return cmd
}

func runChat(cmd *cobra.Command, session string) error {
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

	model := tui.New(ctx, engine)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
