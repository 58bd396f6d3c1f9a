// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/advisor-match/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store as a dataset file",
	Long: `Export writes every advisor, publication, and authorship in the store
as YAML or JSON. The output can be loaded back with load.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}
	ds, err := st.Export(cmd.Context(), w, format)
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "exported %d advisors, %d publications, %d authorships to %s\n",
			len(ds.Advisors), len(ds.Publications), len(ds.Authorships), output)
	}
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(exportCmd)
}
