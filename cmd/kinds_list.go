package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/panekit/internal/items"
	"github.com/zjrosen/panekit/internal/presentation"
	"github.com/zjrosen/panekit/internal/registry"
)

var kindsListCmd = &cobra.Command{
	Use:   "kinds:list",
	Short: "List the registered model kinds and the items built for them",
	Long: `List every model kind panekit can open and the pane item kind built for
it, as JSON.

Examples:
  panekit kinds:list
  panekit kinds:list | jq '.[].model_kind'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeKinds(os.Stdout, items.DefaultSettings())
	},
}

func init() {
	rootCmd.AddCommand(kindsListCmd)
}

func writeKinds(w io.Writer, s items.Settings) error {
	reg := registry.Default()
	items.RegisterAll(reg, s)
	return presentation.NewFormatter(w).FormatRegistrations(presentation.FromRegistrations(reg.Registrations()))
}
