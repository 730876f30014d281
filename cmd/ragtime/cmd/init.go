package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ragtime-dev/ragtime/configs"
	"github.com/ragtime-dev/ragtime/internal/config"
	"github.com/ragtime-dev/ragtime/internal/index"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [DIR]",
		Short: "Create a starter configuration and data directory",
		Long: `Write an annotated ` + config.FileName + ` into DIR (default: current
directory) and create the data directory layout next to it:

  DIR/
    ` + config.FileName + `
    data/
      links/

Drop documents into data/ and URL lists into data/links/*.txt, then run
'ragtime index'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing "+config.FileName)

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if !force {
		if _, err := os.Stat(cfgPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
		}
	}

	linksDir := filepath.Join(dir, "data", index.LinksDirName)
	if err := os.MkdirAll(linksDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(cfgPath, []byte(configs.ConfigTemplate), 0o644); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Created", cfgPath)
	fmt.Fprintln(out, "Created", linksDir)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Put documents under data/ and URLs in data/links/*.txt")
	fmt.Fprintln(out, "  2. Run 'ragtime index'")
	fmt.Fprintln(out, "  3. Run 'ragtime chat'")
	return nil
}
