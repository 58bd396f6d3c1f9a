// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/advisor-match/internal/store"
	"github.com/pdiddy/advisor-match/pkg/types"
)

// --- mocks ---

type mockSearcher struct {
	hits  []types.Hit
	err   error
	calls int
}

func (m *mockSearcher) SearchLexical(_ context.Context, _ string, k int) ([]types.Hit, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.hits) > k {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

// fakeEmbedder maps known texts to fixed vectors.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Model() string { return "fake-model" }

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			v = []float32{1, 1, 1}
		}
		out[i] = v
	}
	return out, nil
}

// --- Lexical ---

func TestLexicalRetrieve(t *testing.T) {
	m := &mockSearcher{hits: []types.Hit{{DocumentID: "a", Score: 3}, {DocumentID: "b", Score: 1}}}
	l := NewLexical(m)

	hits, err := l.Retrieve(context.Background(), "graphs", 1)
	require.NoError(t, err)
	assert.Equal(t, []types.Hit{{DocumentID: "a", Score: 3}}, hits)
	assert.Equal(t, types.BackendLexical, l.Name())
}

func TestLexicalEmptyQuerySkipsBackend(t *testing.T) {
	m := &mockSearcher{err: errors.New("must not be called")}
	hits, err := NewLexical(m).Retrieve(context.Background(), "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Zero(t, m.calls)
}

func TestLexicalFailureIsUnavailable(t *testing.T) {
	m := &mockSearcher{err: errors.New("database is locked")}
	_, err := NewLexical(m).Retrieve(context.Background(), "graphs", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "database is locked")
}

// --- Index ---

func TestIndexSearchCosine(t *testing.T) {
	idx, err := NewIndex([]store.Embedding{
		{PaperID: "x", Vector: []float32{10, 0}},
		{PaperID: "y", Vector: []float32{0, 2}},
		{PaperID: "xy", Vector: []float32{1, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 2, idx.Dim())

	hits, err := idx.Search([]float32{3, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "x", hits[0].DocumentID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, "xy", hits[1].DocumentID)
	assert.InDelta(t, 0.70710678, hits[1].Score, 1e-6)
}

func TestIndexTiesOrderedByID(t *testing.T) {
	idx, err := NewIndex([]store.Embedding{
		{PaperID: "b", Vector: []float32{1, 0}},
		{PaperID: "a", Vector: []float32{2, 0}},
	})
	require.NoError(t, err)
	hits, err := idx.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].DocumentID)
	assert.Equal(t, "b", hits[1].DocumentID)
}

func TestIndexRejectsMixedDimensions(t *testing.T) {
	_, err := NewIndex([]store.Embedding{
		{PaperID: "a", Vector: []float32{1, 0}},
		{PaperID: "b", Vector: []float32{1, 0, 0}},
	})
	assert.Error(t, err)
}

func TestIndexSkipsZeroVectors(t *testing.T) {
	idx, err := NewIndex([]store.Embedding{
		{PaperID: "zero", Vector: []float32{0, 0}},
		{PaperID: "a", Vector: []float32{0, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestIndexQueryDimensionMismatch(t *testing.T) {
	idx, err := NewIndex([]store.Embedding{{PaperID: "a", Vector: []float32{1, 0}}})
	require.NoError(t, err)
	_, err = idx.Search([]float32{1, 0, 0}, 1)
	assert.Error(t, err)
}

// --- Dense ---

func TestDenseRetrieve(t *testing.T) {
	idx, err := NewIndex([]store.Embedding{
		{PaperID: "bio", Vector: []float32{0, 1, 0}},
		{PaperID: "ml", Vector: []float32{1, 0, 0}},
	})
	require.NoError(t, err)
	emb := &fakeEmbedder{vectors: map[string][]float32{"neural nets": {0.9, 0.1, 0}}}

	d := NewDense(emb, idx)
	hits, err := d.Retrieve(context.Background(), "neural nets", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "ml", hits[0].DocumentID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, types.BackendDense, d.Name())
}

func TestDenseEmbedderFailureIsUnavailable(t *testing.T) {
	idx, err := NewIndex([]store.Embedding{{PaperID: "a", Vector: []float32{1, 0, 0}}})
	require.NoError(t, err)

	d := NewDense(&fakeEmbedder{err: errors.New("503 from upstream")}, idx)
	_, err = d.Retrieve(context.Background(), "anything", 10)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDenseEmptyIndexIsUnavailable(t *testing.T) {
	idx, err := NewIndex(nil)
	require.NoError(t, err)
	_, err = NewDense(&fakeEmbedder{}, idx).Retrieve(context.Background(), "q", 10)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDenseEmptyQuery(t *testing.T) {
	d := NewDense(&fakeEmbedder{err: errors.New("must not be called")}, nil)
	hits, err := d.Retrieve(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

// Both backends satisfy the same contract: at most k hits, descending.
func TestBackendsShareContract(t *testing.T) {
	idx, err := NewIndex([]store.Embedding{
		{PaperID: "a", Vector: []float32{1, 0, 0}},
		{PaperID: "b", Vector: []float32{0, 1, 0}},
		{PaperID: "c", Vector: []float32{1, 1, 0}},
	})
	require.NoError(t, err)

	backends := []Retriever{
		NewLexical(&mockSearcher{hits: []types.Hit{{DocumentID: "a", Score: 5}, {DocumentID: "c", Score: 2}, {DocumentID: "b", Score: 1}}}),
		NewDense(&fakeEmbedder{}, idx),
	}
	for _, b := range backends {
		t.Run(b.Name(), func(t *testing.T) {
			hits, err := b.Retrieve(context.Background(), "query", 2)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(hits), 2)
			for i := 1; i < len(hits); i++ {
				assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
			}
		})
	}
}
