package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/thywilljoshua/poster-to-web/internal/convert"
	"github.com/thywilljoshua/poster-to-web/internal/store"
)

type extractOutput struct {
	convert.Result `yaml:",inline"`

	ID string `json:"id,omitempty" yaml:"id,omitempty"`
}

func extractCmd(a *app) *cobra.Command {
	var save bool
	var output string
	var aiExclusive bool

	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Extract the poster structure from a PDF and print it",
		Long: `Extract rebuilds the text lines of a poster PDF, recognizes the header
fields and content sections and prints the resulting document. Files that
are not PDFs, or have no text layer, yield the blank editable template.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "yaml" {
				return fmt.Errorf("--output must be json or yaml, got %q", output)
			}
			if cmd.Flags().Changed("ai-exclusive") {
				a.cfg.AI.Exclusive = aiExclusive
			}

			res, err := convert.Run(cmd.Context(), args[0], a.convertConfig(cmd.Context()))
			if err != nil {
				return err
			}
			out := extractOutput{Result: res}
			if save {
				st, err := a.openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				rec := store.Record{Source: filepath.Base(args[0]), Status: string(res.Status), Document: res.Document}
				if err := st.Save(cmd.Context(), &rec); err != nil {
					return err
				}
				out.ID = rec.ID
				a.log.WithField("id", rec.ID).Info("document saved")
			}
			return printValue(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "store the document for later editing")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output encoding: json|yaml")
	cmd.Flags().BoolVar(&aiExclusive, "ai-exclusive", false, "ask the AI provider first, falling back to heuristics")
	return cmd
}

func printValue(w io.Writer, encoding string, v any) error {
	if encoding == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
