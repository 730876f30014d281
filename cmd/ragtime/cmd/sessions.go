package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage chat sessions",
		Long: `List chat sessions or inspect and delete their history.

Examples:
  # List all sessions, most recently active first
  ragtime sessions

  # Show the full history of one session
  ragtime sessions show 2f0c1a9e

  # Delete a session's history
  ragtime sessions clear 2f0c1a9e`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSessionsList(cmd)
		},
	}

	cmd.AddCommand(newSessionsShowCmd())
	cmd.AddCommand(newSessionsClearCmd())

	return cmd
}

func newSessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show SESSION_ID",
		Short: "Print the chat history of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsShow(cmd, args[0])
		},
	}
}

func newSessionsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear SESSION_ID",
		Short: "Delete all history for a session",
		Long: `Delete all recorded exchanges for a session.

Clearing an unknown session is not an error. Indexed documents are
never touched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsClear(cmd, args[0])
		},
	}
}

func runSessionsList(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	sessions, err := s.ListSessions(cmd.Context())
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No chat sessions recorded.")
		return nil
	}
	for _, id := range sessions {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

func runSessionsShow(cmd *cobra.Command, sessionID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.HistoryBySession(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No history for session %s.\n", sessionID)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, rec := range records {
		fmt.Fprintf(w, "[%s]\tYou:\t%s\n", rec.Timestamp.Format("2006-01-02 15:04"), rec.UserMessage)
		fmt.Fprintf(w, "\tBot:\t%s\n", rec.BotAnswer)
	}
	return w.Flush()
}

func runSessionsClear(cmd *cobra.Command, sessionID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteHistory(cmd.Context(), sessionID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared history for session %s.\n", sessionID)
	return nil
}
