package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fundiary/fundiary/internal/paths"
	"github.com/fundiary/fundiary/internal/sqlite"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize fundiary storage",
		Long:  "Create the configuration and data directories, then initialize the database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Fundiary initialized successfully")
				fmt.Fprintln(out, "  config:", paths.ConfigFile(a.configDir))
				fmt.Fprintln(out, "  data:  ", b.Path())
				return nil
			})
		},
	}
}
