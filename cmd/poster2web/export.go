package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/poster-to-web/internal/convert"
	"github.com/thywilljoshua/poster-to-web/internal/export"
	"github.com/thywilljoshua/poster-to-web/internal/poster"
)

func exportCmd(a *app) *cobra.Command {
	var format, outDir, scheme, font, layout, siteName string
	var fromID string

	cmd := &cobra.Command{
		Use:   "export [pdf]",
		Short: "Write a website for a poster",
		Long: `Export renders a poster as a standalone HTML page, a React component,
a Next.js page, a Mintlify MDX site, or a YAML/JSON document. The poster is
either extracted from the given PDF or loaded from the store with --id.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if (fromID == "") == (len(args) == 0) {
				return fmt.Errorf("give either a PDF or --id")
			}

			for flag, dst := range map[string]*string{
				"format":    &a.cfg.Export.Format,
				"out":       &a.cfg.Export.OutDir,
				"scheme":    &a.cfg.Export.ColorScheme,
				"font":      &a.cfg.Export.Font,
				"layout":    &a.cfg.Export.Layout,
				"site-name": &a.cfg.Export.SiteName,
			} {
				if cmd.Flags().Changed(flag) {
					v, _ := cmd.Flags().GetString(flag)
					*dst = v
				}
			}
			opts, err := a.exportOptions(ctx)
			if err != nil {
				return err
			}

			var doc poster.Document
			if fromID != "" {
				st, err := a.openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				rec, err := st.Get(ctx, fromID)
				if err != nil {
					return err
				}
				doc = rec.Document
			} else {
				res, err := convert.Run(ctx, args[0], a.convertConfig(ctx))
				if err != nil {
					return err
				}
				doc = res.Document
			}

			files, err := export.Write(ctx, a.cfg.Export.OutDir, doc, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(files, "\n"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "standalone|react|nextjs|mdx|yaml|json")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory")
	cmd.Flags().StringVar(&scheme, "scheme", "", "color scheme: clinical|research|pharma|modern|academic|nature|custom")
	cmd.Flags().StringVar(&font, "font", "", "font family: professional|academic|modern")
	cmd.Flags().StringVar(&layout, "layout", "", "page layout: single|sections|slides")
	cmd.Flags().StringVar(&siteName, "site-name", "", "site name for the MDX docs.json")
	cmd.Flags().StringVar(&fromID, "id", "", "export a stored document instead of a PDF")
	return cmd
}
