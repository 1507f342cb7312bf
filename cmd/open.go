package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/panekit/internal/config"
	"github.com/zjrosen/panekit/internal/pane"
	"github.com/zjrosen/panekit/internal/presentation"
)

var openSplit bool

var openCmd = &cobra.Command{
	Use:   "open <file>...",
	Short: "Open files without the TUI and print the resulting layout",
	Long: `Open files into a workspace and print the workspace snapshot as JSON.

Files already open in the active pane are focused, not added again.

Examples:
  # Open two files into one pane
  panekit open main.go README.md

  # Give each file after the first its own pane
  panekit open --split main.go main_test.go

  # Show the titles in the active pane
  panekit open a.go b.go | jq '.layout.pane.items[].title'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := initLogging(cfg.Log, "panekit-open")
		if err != nil {
			return err
		}
		defer cleanup()

		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		c := cfg
		c.Watch = false
		return runOpen(cmd.Context(), c, rootFlags, args, openSplit, os.Stdout)
	},
}

func init() {
	openCmd.Flags().BoolVarP(&openSplit, "split", "s", false, "split right before opening each file after the first")
	rootCmd.AddCommand(openCmd)
}

func runOpen(ctx context.Context, c config.Config, roots, files []string, split bool, w io.Writer) error {
	env, err := newEnvironment(ctx, c, roots)
	if err != nil {
		return err
	}
	defer env.Close()

	for i, f := range files {
		if split && i > 0 {
			if _, err := env.workspace.SplitActivePane(ctx, pane.Horizontal); err != nil {
				return err
			}
		}
		if _, err := env.openArg(ctx, f); err != nil {
			return err
		}
	}

	snap, err := env.workspace.Snapshot(ctx)
	if err != nil {
		return err
	}
	return presentation.NewFormatter(w).FormatWorkspace(presentation.FromSnapshot(snap))
}
