// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists advisors, publications, and the authorship
// relation between them in SQLite, with an FTS5 index over publication
// text and a table of publication embeddings.
//
// A Store is safe for concurrent readers; the ranking path only reads.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/advisor-match/pkg/types"
)

const (
	defaultBatchSize = 500

	// maxBatchSize keeps batched IN lists below SQLite's default limit of
	// 999 host parameters.
	maxBatchSize = 900
)

// ErrNotFound is returned when a requested advisor or publication does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the advisor SQLite database.
type Store struct {
	db        *sql.DB
	batchSize int
}

// Open opens or creates the SQLite database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	if batch > maxBatchSize {
		batch = maxBatchSize
	}

	s := &Store{db: db, batchSize: batch}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Counts holds row counts used by health reporting.
type Counts struct {
	Advisors     int `json:"advisors"`
	Publications int `json:"publications"`
	Authorships  int `json:"authorships"`
}

// Counts returns the number of advisors, publications, and authorship links.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT count(*) FROM advisors),
		(SELECT count(*) FROM publications),
		(SELECT count(*) FROM authorships)`,
	).Scan(&c.Advisors, &c.Publications, &c.Authorships)
	if err != nil {
		return Counts{}, fmt.Errorf("counting rows: %w", err)
	}
	return c, nil
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS advisors (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			college TEXT NOT NULL DEFAULT '',
			department TEXT NOT NULL DEFAULT '',
			interests TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			openalex_author_id TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_advisors_openalex
			ON advisors(openalex_author_id) WHERE openalex_author_id IS NOT NULL`,
		`CREATE TABLE IF NOT EXISTS publications (
			paper_id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			abstract TEXT NOT NULL DEFAULT '',
			venue TEXT NOT NULL DEFAULT '',
			year INTEGER,
			citation_count INTEGER NOT NULL DEFAULT 0,
			url TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS authorships (
			advisor_id INTEGER NOT NULL REFERENCES advisors(id) ON DELETE CASCADE,
			paper_id TEXT NOT NULL REFERENCES publications(paper_id) ON DELETE CASCADE,
			is_primary_author INTEGER NOT NULL DEFAULT 0,
			author_position INTEGER NOT NULL DEFAULT -1,
			PRIMARY KEY (advisor_id, paper_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_authorships_paper_id ON authorships(paper_id)`,
		`CREATE TABLE IF NOT EXISTS embeddings (
			paper_id TEXT NOT NULL REFERENCES publications(paper_id) ON DELETE CASCADE,
			model TEXT NOT NULL,
			vector TEXT NOT NULL,
			PRIMARY KEY (paper_id, model)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='publications_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE publications_fts USING fts5(title, abstract, content=publications, content_rowid=rowid)`,
			`CREATE TRIGGER publications_ai AFTER INSERT ON publications BEGIN
				INSERT INTO publications_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER publications_ad AFTER DELETE ON publications BEGIN
				INSERT INTO publications_fts(publications_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER publications_au AFTER UPDATE ON publications BEGIN
				INSERT INTO publications_fts(publications_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO publications_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nullYear(year int) sql.NullInt64 {
	if year == types.UnknownYear {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(year), Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
