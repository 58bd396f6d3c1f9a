// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/advisor-match/internal/httputil"
	"github.com/pdiddy/advisor-match/internal/ingest"
	"github.com/pdiddy/advisor-match/internal/openalex"
	"github.com/pdiddy/advisor-match/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest ROSTER",
	Short: "Populate the store from OpenAlex for a roster of advisors",
	Long: `Ingest reads a YAML roster of advisors, resolves each one to an OpenAlex
author (preferring authors affiliated with ingest.affiliation_hint), and
stores their most recent works with author position and primary-author
status. Requests are rate limited and retried on HTTP 429 and 503.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if n, _ := cmd.Flags().GetInt("max-works"); n > 0 {
		cfg.Ingest.MaxWorksPerAdvisor = n
	}

	roster, err := ingest.ReadRoster(args[0])
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	client := &openalex.Client{
		HTTP:      httputil.NewClient(&http.Client{Timeout: cfg.Ingest.Timeout}, cfg.Ingest.RequestsPerSecond),
		Email:     cfg.Ingest.Email,
		UserAgent: cfg.Ingest.UserAgent,
	}

	summary, err := ingest.Run(cmd.Context(), client, st, roster, ingest.Options{
		MaxWorks:        cfg.Ingest.MaxWorksPerAdvisor,
		AffiliationHint: cfg.Ingest.AffiliationHint,
	}, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d advisor(s) failed to ingest", summary.Failed)
	}
	return nil
}

func init() {
	ingestCmd.Flags().Int("max-works", 0, "works fetched per advisor (overrides ingest.max_works_per_advisor)")

	rootCmd.AddCommand(ingestCmd)
}
