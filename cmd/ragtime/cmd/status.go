package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what is currently indexed",
		Long: `Print the store location, the document count, and every indexed
source with its type.`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
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
	count, err := s.CountDocuments(ctx)
	if err != nil {
		return err
	}
	sources, err := s.ListSources(ctx)
	if err != nil {
		return err
	}
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Store:     %s\n", s.Path())
	fmt.Fprintf(out, "Documents: %d\n", count)
	fmt.Fprintf(out, "Sessions:  %d\n", len(sessions))

	if len(sources) == 0 {
		fmt.Fprintln(out, "\nNothing indexed yet. Run 'ragtime index' first.")
		return nil
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tSOURCE")
	for _, src := range sources {
		fmt.Fprintf(w, "%s\t%s\n", src.Type, src.Source)
	}
	return w.Flush()
}
