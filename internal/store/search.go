// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/advisor-match/pkg/types"
)

var termPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Terms lowercases text and splits it into word tokens.
func Terms(text string) []string {
	return termPattern.FindAllString(strings.ToLower(text), -1)
}

// SearchLexical ranks publications against query with FTS5 bm25 over
// title and abstract. Any query term may match. Relevance is the negated
// bm25 value, so higher is better; non-positive relevance is dropped.
// Results are sorted by relevance descending, then paper id.
func (s *Store) SearchLexical(ctx context.Context, query string, k int) ([]types.Hit, error) {
	terms := Terms(query)
	if len(terms) == 0 || k <= 0 {
		return nil, nil
	}

	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	match := strings.Join(quoted, " OR ")

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.paper_id, -bm25(publications_fts) AS relevance
		 FROM publications_fts
		 JOIN publications p ON p.rowid = publications_fts.rowid
		 WHERE publications_fts MATCH ?
		 ORDER BY relevance DESC, p.paper_id
		 LIMIT ?`, match, k)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}
	defer rows.Close()

	var hits []types.Hit
	for rows.Next() {
		var h types.Hit
		if err := rows.Scan(&h.DocumentID, &h.Score); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		if h.Score <= 0 {
			break
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
