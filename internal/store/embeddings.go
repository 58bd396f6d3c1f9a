// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/pdiddy/advisor-match/pkg/types"
)

// Embedding is a stored publication vector for one embedding model.
type Embedding struct {
	PaperID string
	Vector  []float32
}

// PutEmbedding stores or replaces the vector for paperID under model.
// Vectors are kept in pgvector's text form ("[0.1,0.2,...]").
func (s *Store) PutEmbedding(ctx context.Context, paperID, model string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("empty embedding for %s", paperID)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO embeddings (paper_id, model, vector) VALUES (?, ?, ?)
		 ON CONFLICT(paper_id, model) DO UPDATE SET vector=excluded.vector`,
		paperID, model, pgvector.NewVector(vec))
	if err != nil {
		return fmt.Errorf("storing embedding for %s: %w", paperID, err)
	}
	return nil
}

// Embeddings returns every vector stored under model, ordered by paper id.
func (s *Store) Embeddings(ctx context.Context, model string) ([]Embedding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT paper_id, vector FROM embeddings WHERE model = ? ORDER BY paper_id`, model)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var out []Embedding
	for rows.Next() {
		var (
			id  string
			vec pgvector.Vector
		)
		if err := rows.Scan(&id, &vec); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		out = append(out, Embedding{PaperID: id, Vector: vec.Slice()})
	}
	return out, rows.Err()
}

// PublicationsMissingEmbedding returns up to limit publications that have
// no vector stored under model, ordered by paper id.
func (s *Store) PublicationsMissingEmbedding(ctx context.Context, model string, limit int) ([]types.Publication, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.paper_id, p.title, p.abstract, p.venue, p.year, p.citation_count, p.url
		 FROM publications p
		 WHERE NOT EXISTS (SELECT 1 FROM embeddings e WHERE e.paper_id = p.paper_id AND e.model = ?)
		 ORDER BY p.paper_id
		 LIMIT ?`, model, limit)
	if err != nil {
		return nil, fmt.Errorf("querying publications without embeddings: %w", err)
	}
	defer rows.Close()

	var out []types.Publication
	for rows.Next() {
		var (
			p    types.Publication
			year sql.NullInt64
		)
		if err := rows.Scan(&p.PaperID, &p.Title, &p.Abstract, &p.Venue, &year, &p.CitationCount, &p.URL); err != nil {
			return nil, fmt.Errorf("scanning publication: %w", err)
		}
		if year.Valid {
			p.Year = int(year.Int64)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
