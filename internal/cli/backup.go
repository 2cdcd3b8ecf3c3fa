package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fundiary/fundiary/internal/sqlite"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write all templates, diaries, and images to JSONL files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				rep, err := b.Export(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printReport(cmd, a, "exported", rep)
			})
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Load JSONL files written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				rep, err := b.Import(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printReport(cmd, a, "imported", rep)
			})
		},
	}
}

func printReport(cmd *cobra.Command, a *app, verb string, rep sqlite.Report) error {
	if a.jsonMode {
		return printJSON(cmd.OutOrStdout(), rep)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d templates, %d diaries, %d images", verb, rep.Templates, rep.Diaries, rep.Images)
	if rep.Skipped > 0 {
		fmt.Fprint(cmd.OutOrStdout(), red.Sprintf(" (%d skipped)", rep.Skipped))
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
