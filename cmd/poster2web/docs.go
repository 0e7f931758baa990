package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/poster-to-web/internal/poster"
	"github.com/thywilljoshua/poster-to-web/internal/store"
)

func docsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "List and edit stored documents",
		Long: `Docs works on the documents saved by "extract --save" or uploaded to the
server. Section edits follow the editor rules: the six header fields can be
edited but not removed or moved, and content section titles stay unique.`,
	}
	cmd.AddCommand(
		docsListCmd(a),
		docsShowCmd(a),
		docsSetCmd(a),
		docsAddCmd(a),
		docsRemoveCmd(a),
		docsMoveCmd(a),
		docsResetCmd(a),
		docsDeleteCmd(a),
	)
	return cmd
}

// withStore opens the store for the duration of fn.
func (a *app) withStore(fn func(*store.Store) error) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// edit applies fn to a stored document and prints the updated content
// sections.
func (a *app) edit(cmd *cobra.Command, id string, fn func(*poster.Document) error) error {
	return a.withStore(func(st *store.Store) error {
		rec, err := st.Update(cmd.Context(), id, fn)
		if err != nil {
			return err
		}
		return printSections(cmd, rec.Document)
	})
}

func printSections(cmd *cobra.Command, doc poster.Document) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tTITLE\tCHARS")
	for i, s := range doc.ContentSections() {
		fmt.Fprintf(w, "%d\t%s\t%s %s\t%d\n", i, s.ID, s.Icon, s.Title, len([]rune(s.Content)))
	}
	return w.Flush()
}

func docsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored documents, most recently changed first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st *store.Store) error {
				docs, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSTATUS\tUPDATED\tSOURCE\tTITLE")
				for _, d := range docs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Status, d.UpdatedAt.Local().Format("2006-01-02 15:04"), d.Source, d.Title)
				}
				return w.Flush()
			})
		},
	}
}

func docsShowCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st *store.Store) error {
				rec, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printValue(cmd.OutOrStdout(), output, rec)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output encoding: json|yaml")
	return cmd
}

func docsSetCmd(a *app) *cobra.Command {
	var title, content, icon, chart, image string
	cmd := &cobra.Command{
		Use:   "set <id> <section-id>",
		Short: "Change the title, content, icon, chart data or image of a section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p poster.Patch
			for flag, dst := range map[string]**string{
				"title":   &p.Title,
				"content": &p.Content,
				"icon":    &p.Icon,
				"chart":   &p.ChartData,
				"image":   &p.Image,
			} {
				if cmd.Flags().Changed(flag) {
					v, _ := cmd.Flags().GetString(flag)
					*dst = &v
				}
			}
			if p.ChartData != nil {
				hasChart := *p.ChartData != ""
				p.HasChart = &hasChart
			}
			return a.edit(cmd, args[0], func(d *poster.Document) error {
				return d.Update(args[1], p)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new section title")
	cmd.Flags().StringVar(&content, "content", "", "new section content")
	cmd.Flags().StringVar(&icon, "icon", "", "new section icon")
	cmd.Flags().StringVar(&chart, "chart", "", "chart data; empty removes the chart")
	cmd.Flags().StringVar(&image, "image", "", "image URL or data URI")
	return cmd
}

func docsAddCmd(a *app) *cobra.Command {
	var content, icon string
	cmd := &cobra.Command{
		Use:   "add <id> [title]",
		Short: "Append a content section",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var title string
			if len(args) == 2 {
				title = args[1]
			}
			return a.edit(cmd, args[0], func(d *poster.Document) error {
				_, err := d.Add(title, content, icon)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "section content")
	cmd.Flags().StringVar(&icon, "icon", "", "section icon")
	return cmd
}

func docsRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id> <section-id>",
		Short: "Remove a content section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, args[0], func(d *poster.Document) error {
				return d.Remove(args[1])
			})
		},
	}
}

func docsMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <id> <section-id> <index>",
		Short: "Move a content section to a position among the content sections",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			return a.edit(cmd, args[0], func(d *poster.Document) error {
				return d.Move(args[1], index)
			})
		},
	}
}

func docsResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <id>",
		Short: "Discard every edit and return to the blank template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, args[0], func(d *poster.Document) error {
				d.Reset()
				return nil
			})
		},
	}
}

func docsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st *store.Store) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				a.log.WithField("id", args[0]).Info("document deleted")
				return nil
			})
		},
	}
}
