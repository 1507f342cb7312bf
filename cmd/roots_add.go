package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/zjrosen/panekit/internal/config"
)

var rootsAddCmd = &cobra.Command{
	Use:   "roots:add <dir>...",
	Short: "Add project root directories to the config file",
	Long: `Add directories to the roots list of the active config file. Paths are
stored absolute. Directories already listed are skipped.

Examples:
  panekit roots:add .
  panekit roots:add ~/src/api ~/src/web`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addRoots(cmd, configPath(), cfg.Roots, args)
	},
}

func init() {
	rootCmd.AddCommand(rootsAddCmd)
}

func addRoots(cmd *cobra.Command, path string, current, dirs []string) error {
	roots := slices.Clone(current)
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", d, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("adding root %s: %w", abs, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("adding root %s: not a directory", abs)
		}

		changed, err := config.AddRoot(path, roots, abs)
		if err != nil {
			return err
		}
		if changed {
			roots = append(roots, abs)
			cmd.Printf("added %s\n", abs)
		} else {
			cmd.Printf("already present %s\n", abs)
		}
	}
	return nil
}
