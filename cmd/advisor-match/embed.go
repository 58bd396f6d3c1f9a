// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/advisor-match/internal/retrieve"
	"github.com/pdiddy/advisor-match/internal/store"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Compute embeddings for publications that have none",
	Long: `Embed sends the title and abstract of every publication without a
vector for the configured model to the embeddings API and stores the
results. The dense retrieval backend searches these vectors.`,
	RunE: runEmbed,
}

func runEmbed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Retrieval.Embedding.APIKey == "" && cfg.Retrieval.Embedding.BaseURL == "" {
		return fmt.Errorf("no embeddings API key: set retrieval.embedding.api_key or .secrets/openai-api-key")
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	batch, _ := cmd.Flags().GetInt("batch-size")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	limit, _ := cmd.Flags().GetInt("limit")

	emb := retrieve.NewOpenAIEmbedder(cfg.Retrieval.Embedding)
	summary, err := retrieve.Backfill(cmd.Context(), st, emb, retrieve.BackfillOptions{
		BatchSize:   batch,
		Concurrency: concurrency,
		Limit:       limit,
	}, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d publication(s) failed to embed", summary.Failed)
	}
	return nil
}

func init() {
	embedCmd.Flags().Int("batch-size", 32, "publications per embeddings request")
	embedCmd.Flags().Int("concurrency", 2, "embeddings requests in flight")
	embedCmd.Flags().Int("limit", 0, "maximum publications to embed (0 for all)")

	rootCmd.AddCommand(embedCmd)
}
