// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve converts a free-text query into an ordered list of
// (document, relevance) hits. Two interchangeable backends satisfy the
// same Retriever contract: Lexical (FTS5 bm25 over the store) and Dense
// (inner product over L2-normalized publication embeddings).
package retrieve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/advisor-match/pkg/types"
)

// ErrUnavailable wraps every backend failure. Callers report it as a
// service-unavailable condition rather than an empty result.
var ErrUnavailable = errors.New("retriever unavailable")

// Retriever returns at most k hits for query, sorted by score descending.
// An empty query yields no hits and no error.
type Retriever interface {
	Name() string
	Retrieve(ctx context.Context, query string, k int) ([]types.Hit, error)
}

// LexicalSearcher is the store capability the lexical backend needs.
type LexicalSearcher interface {
	SearchLexical(ctx context.Context, query string, k int) ([]types.Hit, error)
}

// Lexical ranks publications by FTS5 bm25 relevance.
type Lexical struct {
	searcher LexicalSearcher
}

// NewLexical returns a lexical retriever over searcher.
func NewLexical(searcher LexicalSearcher) *Lexical {
	return &Lexical{searcher: searcher}
}

// Name returns the backend identifier.
func (l *Lexical) Name() string { return types.BackendLexical }

// Retrieve runs the full-text search.
func (l *Lexical) Retrieve(ctx context.Context, query string, k int) ([]types.Hit, error) {
	if strings.TrimSpace(query) == "" || k <= 0 {
		return nil, nil
	}
	hits, err := l.searcher.SearchLexical(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("%w: lexical: %v", ErrUnavailable, err)
	}
	return hits, nil
}
