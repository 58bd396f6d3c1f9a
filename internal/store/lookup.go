// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/advisor-match/pkg/types"
)

// Authorships returns one row per (advisor, document) for the given
// document ids, with the year and citation count of each document.
// Documents without an advisor-author produce no rows. Ids are looked up
// in pages of at most the configured batch size.
func (s *Store) Authorships(ctx context.Context, documentIDs []string) ([]types.AuthorshipRow, error) {
	ids := uniqueIDs(documentIDs)

	var rows []types.AuthorshipRow
	for start := 0; start < len(ids); start += s.batchSize {
		end := min(start+s.batchSize, len(ids))
		page, err := s.authorshipPage(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		rows = append(rows, page...)
	}
	return rows, nil
}

func (s *Store) authorshipPage(ctx context.Context, ids []string) ([]types.AuthorshipRow, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT a.advisor_id, p.paper_id, p.year, p.citation_count
		FROM authorships a
		JOIN publications p ON p.paper_id = a.paper_id
		WHERE p.paper_id IN (` + placeholders + `)
		ORDER BY p.paper_id, a.advisor_id`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rs, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying authorships: %w", err)
	}
	defer rs.Close()

	var out []types.AuthorshipRow
	for rs.Next() {
		var (
			r    types.AuthorshipRow
			year sql.NullInt64
		)
		if err := rs.Scan(&r.AdvisorID, &r.DocumentID, &year, &r.Citations); err != nil {
			return nil, fmt.Errorf("scanning authorship: %w", err)
		}
		if year.Valid {
			r.Year = int(year.Int64)
		}
		out = append(out, r)
	}
	return out, rs.Err()
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Advisor returns the advisor with the given id together with its total
// publication count and the count of publications from recentSince on.
func (s *Store) Advisor(ctx context.Context, id int64, recentSince int) (*types.AdvisorDetail, error) {
	var (
		d    types.AdvisorDetail
		oaID sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, college, department, interests, url, openalex_author_id
		 FROM advisors WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.College, &d.Department, &d.Interests, &d.URL, &oaID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("advisor %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up advisor %d: %w", id, err)
	}
	d.OpenAlexAuthorID = oaID.String

	err = s.db.QueryRowContext(ctx,
		`SELECT count(*), coalesce(sum(CASE WHEN p.year >= ? THEN 1 ELSE 0 END), 0)
		 FROM authorships a
		 JOIN publications p ON p.paper_id = a.paper_id
		 WHERE a.advisor_id = ?`, recentSince, id,
	).Scan(&d.TotalPublications, &d.RecentPublications)
	if err != nil {
		return nil, fmt.Errorf("counting publications for advisor %d: %w", id, err)
	}

	return &d, nil
}

// Publication returns a publication and its advisor-authors ordered by
// author position.
func (s *Store) Publication(ctx context.Context, paperID string) (*types.PublicationDetail, error) {
	var (
		d    types.PublicationDetail
		year sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT paper_id, title, abstract, venue, year, citation_count, url
		 FROM publications WHERE paper_id = ?`, paperID,
	).Scan(&d.PaperID, &d.Title, &d.Abstract, &d.Venue, &year, &d.CitationCount, &d.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("publication %s: %w", paperID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up publication %s: %w", paperID, err)
	}
	if year.Valid {
		d.Year = int(year.Int64)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ad.id, ad.name, a.author_position, a.is_primary_author
		 FROM authorships a
		 JOIN advisors ad ON ad.id = a.advisor_id
		 WHERE a.paper_id = ?
		 ORDER BY a.author_position, ad.id`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying authors of %s: %w", paperID, err)
	}
	defer rows.Close()

	d.Authors = []types.PublicationAuthor{}
	for rows.Next() {
		var pa types.PublicationAuthor
		if err := rows.Scan(&pa.AdvisorID, &pa.Name, &pa.Position, &pa.IsPrimary); err != nil {
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		d.Authors = append(d.Authors, pa)
	}
	return &d, rows.Err()
}

// Vocabulary returns the free text the spelling corrector learns from:
// publication titles and abstracts, then advisor research interests.
func (s *Store) Vocabulary(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title || ' ' || abstract FROM publications
		 UNION ALL
		 SELECT interests FROM advisors WHERE interests != ''`)
	if err != nil {
		return nil, fmt.Errorf("querying vocabulary: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning vocabulary: %w", err)
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}
