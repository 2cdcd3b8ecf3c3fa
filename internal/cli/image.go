package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fundiary/fundiary/internal/sqlite"
	"github.com/fundiary/fundiary/pkg/media"
	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/types"
)

func newImageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "image",
		Aliases: []string{"images"},
		Short:   "Manage stored images",
	}
	cmd.AddCommand(newImageAddCmd(a))
	cmd.AddCommand(newImageListCmd(a))
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show image metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				m, err := b.Images().GetMetadata(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.jsonMode {
					return printJSON(out, m)
				}
				fmt.Fprintf(out, "ID:       %s\n", m.ImageID)
				fmt.Fprintf(out, "Name:     %s\n", m.Name)
				fmt.Fprintf(out, "Type:     %s\n", m.MimeType)
				fmt.Fprintf(out, "Size:     %d bytes\n", m.Size)
				fmt.Fprintf(out, "Pixels:   %s\n", dimensions(m))
				fmt.Fprintf(out, "Created:  %s\n", m.CreatedAt.Local().Format(timeFormat))
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "url <id>",
		Short: "Print an image as a data URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				url, err := b.Images().DataURL(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an image; panes referencing it are not changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				if err := b.Images().Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
				return nil
			})
		},
	})
	return cmd
}

func newImageAddCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Store an image file",
		Long:  "Store an image file. The file must be accepted by the image pane's imageId field.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %v: %w", args[0], err, errUsage)
			}
			if name == "" {
				name = filepath.Base(args[0])
			}
			img, err := media.NewImage(name, data, pane.ImageRef.Erase().Input)
			if err != nil {
				return err
			}
			return a.withBackend(func(b *sqlite.Backend) error {
				if _, err := b.Images().Save(cmd.Context(), img); err != nil {
					return err
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), img.ImageMetadata)
				}
				fmt.Fprintln(cmd.OutOrStdout(), img.ImageID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "image name (default: file name)")
	return cmd
}

func newImageListCmd(a *app) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List images, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				results, err := b.Images().List(cmd.Context(), limit, offset)
				if err != nil {
					return err
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), viewResults(results))
				}
				tbl := newTable("ID", "NAME", "TYPE", "BYTES", "PIXELS", "CREATED")
				for _, r := range results {
					if !r.OK() {
						tbl.AddRow(r.ID, invalid(r.Err))
						continue
					}
					m := r.Value
					tbl.AddRow(m.ImageID, m.Name, m.MimeType, m.Size, dimensions(m), m.CreatedAt.Local().Format(timeFormat))
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

func dimensions(m *types.ImageMetadata) string {
	if m.Width == nil || m.Height == nil {
		return faint.Sprint("unknown")
	}
	return fmt.Sprintf("%dx%d", *m.Width, *m.Height)
}
