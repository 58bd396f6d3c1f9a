// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/advisor-match/internal/match"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Rank advisors for a research interest",
	Long: `Search retrieves publications matching the query, aggregates them per
advisor, and prints the top advisors with their score components: average
similarity of their best papers, recency weight, and activity bonus.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	topK, _ := cmd.Flags().GetInt("top-k")
	pubs, _ := cmd.Flags().GetBool("publications")
	noSpell, _ := cmd.Flags().GetBool("no-spell")

	resp, err := a.service.Search(ctx, match.Request{
		Query:               strings.Join(args, " "),
		TopK:                topK,
		IncludePublications: pubs,
		Correct:             !noSpell,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(os.Stdout, resp, jsonOutput)
}

func formatSearchOutput(w io.Writer, resp *match.Response, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if resp.CorrectedQuery != "" {
		fmt.Fprintf(w, "Showing results for %q\n\n", resp.CorrectedQuery)
	}
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No advisors found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-30s  %-25s  %-6s  %-6s  %-6s  %-6s  %s\n",
		"Rank", "Advisor", "Department", "Score", "Sim", "Recent", "Bonus", "Papers")
	fmt.Fprintln(w, strings.Repeat("-", 102))

	for i, r := range resp.Results {
		fmt.Fprintf(w, "%-4d  %-30s  %-25s  %-6.3f  %-6.3f  %-6.3f  %-6.3f  %d\n",
			i+1, truncate(r.Name, 30), truncate(r.Department, 25),
			r.FinalScore, r.AvgSimilarity, r.RecencyWeight, r.ActivityBonus, r.MatchingPaperCount)
		for _, p := range r.TopPublications {
			fmt.Fprintf(w, "      - %s (%d) %.3f\n", truncate(p.Title, 70), p.Year, p.Similarity)
		}
	}

	fmt.Fprintf(w, "\n%d advisors (%s, %.1f ms)\n", resp.TotalResults, resp.Backend, resp.SearchTimeMS)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	searchCmd.Flags().Int("top-k", 0, "number of advisors to return (default ranking.top_k)")
	searchCmd.Flags().Bool("publications", false, "show each advisor's top matching publications")
	searchCmd.Flags().Bool("no-spell", false, "disable query spelling correction")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
