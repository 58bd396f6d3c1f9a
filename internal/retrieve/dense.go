// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/advisor-match/internal/store"
	"github.com/pdiddy/advisor-match/pkg/types"
)

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Model() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingSource is the store capability needed to build an Index.
type EmbeddingSource interface {
	Embeddings(ctx context.Context, model string) ([]store.Embedding, error)
}

// Index is an immutable set of L2-normalized publication vectors.
type Index struct {
	ids  []string
	vecs [][]float32
	dim  int
}

// NewIndex normalizes and indexes embeddings. All vectors must share one
// dimension; zero vectors are skipped since they have no direction.
func NewIndex(embeddings []store.Embedding) (*Index, error) {
	idx := &Index{}
	for _, e := range embeddings {
		if len(e.Vector) == 0 {
			continue
		}
		if idx.dim == 0 {
			idx.dim = len(e.Vector)
		}
		if len(e.Vector) != idx.dim {
			return nil, fmt.Errorf("embedding for %s has dimension %d, want %d", e.PaperID, len(e.Vector), idx.dim)
		}
		v, ok := normalize(e.Vector)
		if !ok {
			continue
		}
		idx.ids = append(idx.ids, e.PaperID)
		idx.vecs = append(idx.vecs, v)
	}
	return idx, nil
}

// LoadIndex builds an Index from every vector src holds for model.
func LoadIndex(ctx context.Context, src EmbeddingSource, model string) (*Index, error) {
	embs, err := src.Embeddings(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("loading embeddings: %w", err)
	}
	return NewIndex(embs)
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int { return len(idx.ids) }

// Dim returns the vector dimension, or 0 for an empty index.
func (idx *Index) Dim() int { return idx.dim }

// Search returns the k vectors with the highest inner product against
// the normalized query, which approximates cosine similarity. Ties are
// ordered by document id.
func (idx *Index) Search(query []float32, k int) ([]types.Hit, error) {
	if k <= 0 || len(idx.ids) == 0 {
		return nil, nil
	}
	if len(query) != idx.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), idx.dim)
	}
	q, ok := normalize(query)
	if !ok {
		return nil, nil
	}

	hits := make([]types.Hit, len(idx.ids))
	for i, v := range idx.vecs {
		var dot float64
		for j := range v {
			dot += float64(v[j]) * float64(q[j])
		}
		hits[i] = types.Hit{DocumentID: idx.ids[i], Score: dot}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func normalize(v []float32) ([]float32, bool) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, false
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out, true
}

// Dense embeds the query and searches a prebuilt Index.
type Dense struct {
	embedder Embedder
	index    *Index
}

// NewDense returns a dense retriever. The index must have been built
// from vectors produced by the same embedding model.
func NewDense(embedder Embedder, index *Index) *Dense {
	return &Dense{embedder: embedder, index: index}
}

// Name returns the backend identifier.
func (d *Dense) Name() string { return types.BackendDense }

// Retrieve embeds query and returns its nearest publications.
func (d *Dense) Retrieve(ctx context.Context, query string, k int) ([]types.Hit, error) {
	if strings.TrimSpace(query) == "" || k <= 0 {
		return nil, nil
	}
	if d.index == nil || d.index.Len() == 0 {
		return nil, fmt.Errorf("%w: dense: index is empty", ErrUnavailable)
	}

	vecs, err := d.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: dense: embedding query: %v", ErrUnavailable, err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: dense: embedder returned %d vectors for one query", ErrUnavailable, len(vecs))
	}

	hits, err := d.index.Search(vecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("%w: dense: %v", ErrUnavailable, err)
	}
	return hits, nil
}
