// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/advisor-match/pkg/types"
)

// BackfillStore is the store capability needed to backfill embeddings.
type BackfillStore interface {
	PublicationsMissingEmbedding(ctx context.Context, model string, limit int) ([]types.Publication, error)
	PutEmbedding(ctx context.Context, paperID, model string, vec []float32) error
}

// BackfillOptions controls batching and parallelism of Backfill.
type BackfillOptions struct {
	// BatchSize is the number of publications per embeddings request (default 32).
	BatchSize int

	// Concurrency is the number of requests in flight (default 2).
	Concurrency int

	// Limit caps the publications embedded in one run. Zero means no cap.
	Limit int
}

// BackfillSummary holds counts from an embedding backfill run.
type BackfillSummary struct {
	Embedded int
	Failed   int
}

// Backfill embeds every publication that has no vector for the
// embedder's model and stores the results. A failed batch is reported on
// w and counted; the remaining batches still run.
func Backfill(ctx context.Context, st BackfillStore, emb Embedder, opts BackfillOptions, w io.Writer) (BackfillSummary, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 2
	}

	pubs, err := st.PublicationsMissingEmbedding(ctx, emb.Model(), opts.Limit)
	if err != nil {
		return BackfillSummary{}, err
	}

	var (
		mu      sync.Mutex
		summary BackfillSummary
	)
	record := func(embedded, failed int, msg string) {
		mu.Lock()
		defer mu.Unlock()
		summary.Embedded += embedded
		summary.Failed += failed
		if msg != "" {
			fmt.Fprintln(w, msg)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for start := 0; start < len(pubs); start += opts.BatchSize {
		batch := pubs[start:min(start+opts.BatchSize, len(pubs))]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			texts := make([]string, len(batch))
			for i, p := range batch {
				texts[i] = EmbeddingText(p)
			}
			vecs, err := emb.Embed(gctx, texts)
			if err == nil && len(vecs) != len(batch) {
				err = fmt.Errorf("got %d vectors", len(vecs))
			}
			if err != nil {
				record(0, len(batch), fmt.Sprintf("failed  batch of %d starting at %s: %v", len(batch), batch[0].PaperID, err))
				return nil
			}
			done := 0
			for i, p := range batch {
				if err := st.PutEmbedding(gctx, p.PaperID, emb.Model(), vecs[i]); err != nil {
					record(0, 1, fmt.Sprintf("failed  %s: %v", p.PaperID, err))
					continue
				}
				done++
			}
			record(done, 0, fmt.Sprintf("embedded %d publications", done))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	fmt.Fprintf(w, "\nembedded: %d, failed: %d\n", summary.Embedded, summary.Failed)
	return summary, nil
}

// EmbeddingText is the text embedded for a publication: its title, then
// its abstract.
func EmbeddingText(p types.Publication) string {
	return strings.TrimSpace(p.Title + ". " + p.Abstract)
}
