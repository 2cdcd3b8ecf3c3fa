package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/types"
)

// paneView is the JSON form of a registered pane type.
type paneView struct {
	Identifier string                 `json:"identifier"`
	Name       string                 `json:"name"`
	Size       types.Size             `json:"size"`
	Schema     pane.Schema            `json:"schema"`
	Defaults   map[string]any         `json:"defaults"`
	Fields     []pane.FieldDescriptor `json:"fields"`
	Resize     *pane.ResizePolicy     `json:"resize,omitempty"`
}

func viewPane(d pane.Descriptor) paneView {
	return paneView{
		Identifier: d.Identifier,
		Name:       d.Name,
		Size:       d.Size,
		Schema:     d.Schema,
		Defaults:   d.Default(),
		Fields:     d.Fields,
		Resize:     d.Resize,
	}
}

func newPaneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pane",
		Short: "Inspect registered pane types",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pane types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			descs := a.registry.List()
			if a.jsonMode {
				views := make([]paneView, 0, len(descs))
				for _, d := range descs {
					views = append(views, viewPane(d))
				}
				return printJSON(cmd.OutOrStdout(), views)
			}
			tbl := newTable("IDENTIFIER", "NAME", "SIZE", "FIELDS")
			for _, d := range descs {
				keys := make([]string, 0, len(d.Fields))
				for _, f := range d.Fields {
					keys = append(keys, f.DataKey)
				}
				tbl.AddRow(d.Identifier, d.Name, fmt.Sprintf("%dx%d", d.Size.Width, d.Size.Height), strings.Join(keys, ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <identifier>",
		Short: "Show the fields of a pane type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ok := a.registry.Get(args[0])
			if !ok {
				return fmt.Errorf("pane %q: %w", args[0], types.ErrUnknownPane)
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), viewPane(d))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%dx%d)\n\n", bold.Sprint(d.Identifier), d.Name, d.Size.Width, d.Size.Height)
			defaults := d.Default()
			tbl := newTable("KEY", "NAME", "INPUT", "TYPE", "PARAM", "DEFAULT")
			for _, f := range d.Fields {
				param := ""
				if f.IsParam {
					param = "yes"
				}
				tbl.AddRow(f.DataKey, f.Name, f.Input.Kind, d.Schema[f.DataKey].Type, param, formatValue(f, defaults[f.DataKey]))
			}
			fmt.Fprintln(out, tbl)
			return nil
		},
	})
	return cmd
}
