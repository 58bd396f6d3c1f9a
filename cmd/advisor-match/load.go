// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/advisor-match/internal/store"
)

var loadCmd = &cobra.Command{
	Use:   "load FILE",
	Short: "Import advisors, publications, and authorships from a dataset file",
	Long: `Load reads a YAML or JSON dataset (advisors, publications, authorships)
and upserts it into the store in one transaction. Records that fail
validation are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ds, err := store.ReadDataset(args[0])
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := st.Import(cmd.Context(), ds, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed to import", summary.Failed)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
