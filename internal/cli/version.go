package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fundiary/fundiary/pkg/fundiary"
)

const modulePath = "github.com/fundiary/fundiary"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fundiary version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "fundiary v%s\nmodule: %s\n", fundiary.Version, modulePath)
			return nil
		},
	}
}
