package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fundiary/fundiary/internal/sqlite"
	"github.com/fundiary/fundiary/pkg/types"
)

func newTemplateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates"},
		Short:   "Manage diary templates",
	}
	cmd.AddCommand(newTemplateCreateCmd(a))
	cmd.AddCommand(newTemplateListCmd(a))
	cmd.AddCommand(newTemplateShowCmd(a))
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				if err := b.Templates().Rename(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "renamed", args[0])
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a template; diaries made from it are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				if err := b.Templates().Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
				return nil
			})
		},
	})
	return cmd
}

func newTemplateCreateCmd(a *app) *cobra.Command {
	var (
		paneArgs []string
		sets     []string
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a template from panes",
		Long: `Create a template. Each --pane is identifier[@x,y][/WxH]; panes without a
position go to the first free slot. Each --set is index.key=value and sets a
field on the pane at that index.

Example:
  fundiary template create Daily --pane base:text@0,0/2x1 --pane base:image --set 0.text=Title`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			panes, err := buildPanes(a.registry, paneArgs)
			if err != nil {
				return err
			}
			if err := applyAssignments(a.registry, panes, sets); err != nil {
				return err
			}
			tmpl := &types.Template{Name: args[0], Panes: panes}
			return a.withBackend(func(b *sqlite.Backend) error {
				if _, err := b.Templates().Save(cmd.Context(), tmpl); err != nil {
					return err
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), tmpl)
				}
				fmt.Fprintln(cmd.OutOrStdout(), tmpl.TemplateID)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&paneArgs, "pane", nil, "pane to add: identifier[@x,y][/WxH] (repeatable)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value: index.key=value (repeatable)")
	return cmd
}

func newTemplateListCmd(a *app) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				results, err := b.Templates().List(cmd.Context(), limit, offset)
				if err != nil {
					return err
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), viewResults(results))
				}
				tbl := newTable("ID", "NAME", "PANES", "GRID", "UPDATED")
				for _, r := range results {
					if !r.OK() {
						tbl.AddRow(r.ID, invalid(r.Err))
						continue
					}
					t := r.Value
					tbl.AddRow(t.TemplateID, t.Name, len(t.Panes),
						fmt.Sprintf("%dx%d", t.ColSize, t.RowSize), t.UpdatedAt.Local().Format(timeFormat))
				}
				fmt.Fprintln(cmd.OutOrStdout(), tbl)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	return cmd
}

func newTemplateShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a template and its panes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				t, err := b.Templates().Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.jsonMode {
					return printJSON(out, t)
				}
				fmt.Fprintf(out, "ID:       %s\n", t.TemplateID)
				fmt.Fprintf(out, "Name:     %s\n", t.Name)
				fmt.Fprintf(out, "Grid:     %dx%d\n", t.ColSize, t.RowSize)
				fmt.Fprintf(out, "Created:  %s\n", t.CreatedAt.Local().Format(timeFormat))
				fmt.Fprintf(out, "Updated:  %s\n\n", t.UpdatedAt.Local().Format(timeFormat))
				printPanes(out, a.registry, t.Panes)
				return nil
			})
		},
	}
}
