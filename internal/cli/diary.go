package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/fundiary/fundiary/internal/sqlite"
	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/template"
	"github.com/fundiary/fundiary/pkg/types"
)

func newDiaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "diary",
		Aliases: []string{"diaries"},
		Short:   "Manage diaries",
	}
	cmd.AddCommand(newDiaryNewCmd(a))
	cmd.AddCommand(newDiaryListCmd(a))
	cmd.AddCommand(newDiaryShowCmd(a))
	cmd.AddCommand(newDiarySetCmd(a))
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a diary; images it references are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				if err := b.Diaries().Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
				return nil
			})
		},
	})
	return cmd
}

func newDiaryNewCmd(a *app) *cobra.Command {
	var (
		paneArgs []string
		sets     []string
		reset    bool
	)
	cmd := &cobra.Command{
		Use:   "new [template-id]",
		Short: "Create a diary, optionally from a template",
		Long: `Create a diary. With a template id the diary starts as a copy of the
template's panes and --set may only fill param fields. Without one the diary
is built from --pane flags like template create.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				ctx := cmd.Context()
				var diary *types.Diary
				if len(args) == 1 {
					if len(paneArgs) > 0 {
						return fmt.Errorf("--pane cannot be combined with a template: %w", errUsage)
					}
					var opts []template.Option
					if reset {
						opts = append(opts, template.WithResetParams())
					}
					draft, err := template.NewInstantiator(b.Templates(), a.registry, opts...).Instantiate(ctx, args[0])
					if err != nil {
						return err
					}
					if err := setParams(a.registry, draft, sets); err != nil {
						return err
					}
					if err := draft.Validate(); err != nil {
						return err
					}
					diary = draft.Diary()
				} else {
					panes, err := buildPanes(a.registry, paneArgs)
					if err != nil {
						return err
					}
					if err := applyAssignments(a.registry, panes, sets); err != nil {
						return err
					}
					diary = &types.Diary{Panes: panes}
				}

				if _, err := b.Diaries().Save(ctx, diary); err != nil {
					return err
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), diary)
				}
				fmt.Fprintln(cmd.OutOrStdout(), diary.DiaryID)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&paneArgs, "pane", nil, "pane to add: identifier[@x,y][/WxH] (repeatable)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value: index.key=value (repeatable)")
	cmd.Flags().BoolVar(&reset, "reset-params", false, "start param fields from pane defaults instead of the template")
	return cmd
}

// setParams applies "index.key=value" arguments through the draft so that
// only param fields can change.
func setParams(registry *pane.Registry, draft *template.Draft, args []string) error {
	panes := draft.Diary().Panes
	for _, arg := range args {
		asg, err := parseAssignment(arg)
		if err != nil {
			return err
		}
		p, desc, err := asg.target(registry, panes)
		if err != nil {
			return err
		}
		v, err := parseValue(desc, asg.key, asg.raw)
		if err != nil {
			return err
		}
		if err := draft.SetParam(p.ID, asg.key, v); err != nil {
			return err
		}
	}
	return nil
}

func newDiaryListCmd(a *app) *cobra.Command {
	var (
		limit, offset int
		date          string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List diaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var day time.Time
			if date != "" {
				d, err := time.ParseInLocation(pane.DateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("--date %q: expected YYYY-MM-DD: %w", date, errUsage)
				}
				day = d
			}
			return a.withBackend(func(b *sqlite.Backend) error {
				var (
					results []types.Result[types.Diary]
					err     error
				)
				if date != "" {
					results, err = b.Diaries().ListByDate(cmd.Context(), day)
				} else {
					results, err = b.Diaries().List(cmd.Context(), limit, offset)
				}
				if err != nil {
					return err
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), viewResults(results))
				}
				tbl := newTable("ID", "TEMPLATE", "PANES", "GRID", "CREATED")
				for _, r := range results {
					if !r.OK() {
						tbl.AddRow(r.ID, invalid(r.Err))
						continue
					}
					d := r.Value
					label := d.TemplateLabel()
					if d.TemplateID == nil {
						label = faint.Sprint(label)
					}
					tbl.AddRow(d.DiaryID, label, len(d.Panes),
						fmt.Sprintf("%dx%d", d.ColSize, d.RowSize), d.CreatedAt.Local().Format(timeFormat))
				}
				fmt.Fprintln(cmd.OutOrStdout(), tbl)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().StringVar(&date, "date", "", "only diaries created on this local day (YYYY-MM-DD)")
	return cmd
}

func newDiaryShowCmd(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a diary and its panes",
		Long: `Show a diary. --query evaluates a gjson path over the diary's JSON form,
for example "data.0.data.text" or "data.#.pane".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				d, err := b.Diaries().Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if query != "" {
					data, err := json.Marshal(d)
					if err != nil {
						return fmt.Errorf("marshal diary: %w", err)
					}
					res := gjson.GetBytes(data, query)
					if !res.Exists() {
						return fmt.Errorf("query %q: %w", query, types.ErrNotFound)
					}
					if a.jsonMode {
						fmt.Fprintln(out, res.Raw)
					} else {
						fmt.Fprintln(out, res.String())
					}
					return nil
				}
				if a.jsonMode {
					return printJSON(out, d)
				}
				fmt.Fprintf(out, "ID:       %s\n", d.DiaryID)
				fmt.Fprintf(out, "Template: %s\n", d.TemplateLabel())
				fmt.Fprintf(out, "Grid:     %dx%d\n", d.ColSize, d.RowSize)
				fmt.Fprintf(out, "Created:  %s\n", d.CreatedAt.Local().Format(timeFormat))
				fmt.Fprintf(out, "Updated:  %s\n\n", d.UpdatedAt.Local().Format(timeFormat))
				printPanes(out, a.registry, d.Panes)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "gjson path to print instead of the diary")
	return cmd
}

func newDiarySetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <index.key=value>...",
		Short: "Change pane fields of a saved diary",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				d, err := b.Diaries().Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := applyAssignments(a.registry, d.Panes, args[1:]); err != nil {
					return err
				}
				if _, err := b.Diaries().Save(cmd.Context(), d); err != nil {
					return err
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), d)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "updated", d.DiaryID)
				return nil
			})
		},
	}
}
