// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/advisor-match/pkg/types"
)

// UpsertAdvisor inserts or updates an advisor and returns its id. An
// advisor with ID set is matched by id; otherwise it is matched by its
// OpenAlex author id when present, and inserted with a new id if no
// match exists.
func (s *Store) UpsertAdvisor(ctx context.Context, a types.Advisor) (int64, error) {
	return upsertAdvisor(ctx, s.db, a)
}

func upsertAdvisor(ctx context.Context, ex execer, a types.Advisor) (int64, error) {
	if strings.TrimSpace(a.Name) == "" {
		return 0, fmt.Errorf("advisor has no name")
	}

	if a.ID == 0 && a.OpenAlexAuthorID != "" {
		err := ex.QueryRowContext(ctx,
			`SELECT id FROM advisors WHERE openalex_author_id = ?`, a.OpenAlexAuthorID,
		).Scan(&a.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("looking up advisor by OpenAlex id: %w", err)
		}
	}

	if a.ID == 0 {
		res, err := ex.ExecContext(ctx,
			`INSERT INTO advisors (name, college, department, interests, url, openalex_author_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			a.Name, a.College, a.Department, a.Interests, a.URL, nullString(a.OpenAlexAuthorID))
		if err != nil {
			return 0, fmt.Errorf("inserting advisor %q: %w", a.Name, err)
		}
		return res.LastInsertId()
	}

	_, err := ex.ExecContext(ctx,
		`INSERT INTO advisors (id, name, college, department, interests, url, openalex_author_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, college=excluded.college, department=excluded.department,
			interests=excluded.interests, url=excluded.url,
			openalex_author_id=excluded.openalex_author_id`,
		a.ID, a.Name, a.College, a.Department, a.Interests, a.URL, nullString(a.OpenAlexAuthorID))
	if err != nil {
		return 0, fmt.Errorf("upserting advisor %d: %w", a.ID, err)
	}
	return a.ID, nil
}

// UpsertPublication inserts or updates a publication by paper id.
func (s *Store) UpsertPublication(ctx context.Context, p types.Publication) error {
	return upsertPublication(ctx, s.db, p)
}

func upsertPublication(ctx context.Context, ex execer, p types.Publication) error {
	if p.PaperID == "" {
		return fmt.Errorf("publication has no paper id")
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO publications (paper_id, title, abstract, venue, year, citation_count, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(paper_id) DO UPDATE SET
			title=excluded.title, abstract=excluded.abstract, venue=excluded.venue,
			year=excluded.year, citation_count=excluded.citation_count, url=excluded.url`,
		p.PaperID, p.Title, p.Abstract, p.Venue, nullYear(p.Year), max(p.CitationCount, 0), p.URL)
	if err != nil {
		return fmt.Errorf("upserting publication %s: %w", p.PaperID, err)
	}
	return nil
}

// LinkAuthor records that an advisor authored a publication. Existing
// links are updated with the new position and primary flag.
func (s *Store) LinkAuthor(ctx context.Context, a types.Authorship) error {
	return linkAuthor(ctx, s.db, a)
}

func linkAuthor(ctx context.Context, ex execer, a types.Authorship) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO authorships (advisor_id, paper_id, is_primary_author, author_position)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(advisor_id, paper_id) DO UPDATE SET
			is_primary_author=excluded.is_primary_author, author_position=excluded.author_position`,
		a.AdvisorID, a.PaperID, a.IsPrimary, a.Position)
	if err != nil {
		return fmt.Errorf("linking advisor %d to %s: %w", a.AdvisorID, a.PaperID, err)
	}
	return nil
}

// ImportSummary holds counts from a dataset import.
type ImportSummary struct {
	Advisors     int
	Publications int
	Authorships  int
	Failed       int
}

// Import loads a dataset in a single transaction. Records that fail (an
// advisor without a name, a link to a missing publication) are reported
// on w and counted, and do not abort the rest of the import.
func (s *Store) Import(ctx context.Context, ds types.Dataset, w io.Writer) (ImportSummary, error) {
	var summary ImportSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range ds.Advisors {
		if _, err := upsertAdvisor(ctx, tx, a); err != nil {
			fmt.Fprintf(w, "failed  %v\n", err)
			summary.Failed++
			continue
		}
		summary.Advisors++
	}

	for _, p := range ds.Publications {
		if err := upsertPublication(ctx, tx, p); err != nil {
			fmt.Fprintf(w, "failed  %v\n", err)
			summary.Failed++
			continue
		}
		summary.Publications++
	}

	for _, a := range ds.Authorships {
		if err := linkAuthor(ctx, tx, a); err != nil {
			fmt.Fprintf(w, "failed  %v\n", err)
			summary.Failed++
			continue
		}
		summary.Authorships++
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing import: %w", err)
	}

	fmt.Fprintf(w, "advisors: %d, publications: %d, authorships: %d, failed: %d\n",
		summary.Advisors, summary.Publications, summary.Authorships, summary.Failed)
	return summary, nil
}

// Dataset reads the whole store back into its portable form.
func (s *Store) Dataset(ctx context.Context) (types.Dataset, error) {
	ds := types.Dataset{
		Advisors:     []types.Advisor{},
		Publications: []types.Publication{},
		Authorships:  []types.Authorship{},
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, college, department, interests, url, openalex_author_id
		 FROM advisors ORDER BY id`)
	if err != nil {
		return ds, fmt.Errorf("querying advisors: %w", err)
	}
	for rows.Next() {
		var (
			a    types.Advisor
			oaID sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.College, &a.Department, &a.Interests, &a.URL, &oaID); err != nil {
			rows.Close()
			return ds, fmt.Errorf("scanning advisor: %w", err)
		}
		a.OpenAlexAuthorID = oaID.String
		ds.Advisors = append(ds.Advisors, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ds, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT paper_id, title, abstract, venue, year, citation_count, url
		 FROM publications ORDER BY paper_id`)
	if err != nil {
		return ds, fmt.Errorf("querying publications: %w", err)
	}
	for rows.Next() {
		var (
			p    types.Publication
			year sql.NullInt64
		)
		if err := rows.Scan(&p.PaperID, &p.Title, &p.Abstract, &p.Venue, &year, &p.CitationCount, &p.URL); err != nil {
			rows.Close()
			return ds, fmt.Errorf("scanning publication: %w", err)
		}
		if year.Valid {
			p.Year = int(year.Int64)
		}
		ds.Publications = append(ds.Publications, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ds, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT advisor_id, paper_id, author_position, is_primary_author
		 FROM authorships ORDER BY advisor_id, paper_id`)
	if err != nil {
		return ds, fmt.Errorf("querying authorships: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a types.Authorship
		if err := rows.Scan(&a.AdvisorID, &a.PaperID, &a.Position, &a.IsPrimary); err != nil {
			return ds, fmt.Errorf("scanning authorship: %w", err)
		}
		ds.Authorships = append(ds.Authorships, a)
	}
	return ds, rows.Err()
}

// ReadDataset loads a dataset from a YAML or JSON file. The format is
// chosen by extension; anything other than .json is parsed as YAML.
func ReadDataset(path string) (types.Dataset, error) {
	var ds types.Dataset
	data, err := os.ReadFile(path)
	if err != nil {
		return ds, fmt.Errorf("reading dataset: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &ds)
	} else {
		err = yaml.Unmarshal(data, &ds)
	}
	if err != nil {
		return ds, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	return ds, nil
}

// Export writes the whole store to w as "yaml" or "json" and returns the
// exported dataset.
func (s *Store) Export(ctx context.Context, w io.Writer, format string) (types.Dataset, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return ds, err
	}
	return ds, WriteDataset(w, ds, format)
}

// WriteDataset encodes ds to w as "yaml" or "json".
func WriteDataset(w io.Writer, ds types.Dataset, format string) error {
	switch format {
	case "yaml", "":
		data, err := yaml.Marshal(&ds)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ds)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}
