// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest populates the advisor store from a roster of advisors
// and their OpenAlex works.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/advisor-match/internal/openalex"
	"github.com/pdiddy/advisor-match/pkg/types"
)

// Roster is the on-disk list of advisors to ingest.
type Roster struct {
	Advisors []types.Advisor `yaml:"advisors"`
}

// ReadRoster loads a YAML roster file.
func ReadRoster(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("reading roster: %w", err)
	}
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Roster{}, fmt.Errorf("parsing roster %s: %w", path, err)
	}
	return r, nil
}

// Source looks up authors and their works.
type Source interface {
	FindAuthor(ctx context.Context, name string, hints []string) (openalex.Author, bool, error)
	Works(ctx context.Context, authorID string, limit int) ([]openalex.Work, error)
}

// Sink receives ingested records.
type Sink interface {
	UpsertAdvisor(ctx context.Context, a types.Advisor) (int64, error)
	UpsertPublication(ctx context.Context, p types.Publication) error
	LinkAuthor(ctx context.Context, a types.Authorship) error
}

// Options controls an ingest run.
type Options struct {
	// MaxWorks caps the works fetched per advisor (default 5).
	MaxWorks int

	// AffiliationHint disambiguates author searches by institution name.
	AffiliationHint []string
}

// Summary holds counts from an ingest run.
type Summary struct {
	Advisors     int
	NotFound     int
	Publications int
	Authorships  int
	Failed       int
}

// Run ingests every roster entry. Advisors with a known OpenAlex id skip
// the author search. Per-advisor failures are reported on w and counted;
// only context cancellation aborts the run.
func Run(ctx context.Context, src Source, sink Sink, roster Roster, opts Options, w io.Writer) (Summary, error) {
	if opts.MaxWorks <= 0 {
		opts.MaxWorks = 5
	}

	var s Summary
	fmt.Fprintf(w, "ingesting %d advisors from OpenAlex\n", len(roster.Advisors))

	for _, a := range roster.Advisors {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		err := ingestOne(ctx, src, sink, a, opts, w, &s)
		switch {
		case errors.Is(err, openalex.ErrAuthorNotFound):
			fmt.Fprintf(w, "  not found  %s\n", a.Name)
			s.NotFound++
		case err != nil:
			if ctx.Err() != nil {
				return s, ctx.Err()
			}
			fmt.Fprintf(w, "  failed     %s: %v\n", a.Name, err)
			s.Failed++
		}
	}

	fmt.Fprintf(w, "\nadvisors: %d, publications: %d, authorships: %d, not found: %d, failed: %d\n",
		s.Advisors, s.Publications, s.Authorships, s.NotFound, s.Failed)
	return s, nil
}

func ingestOne(ctx context.Context, src Source, sink Sink, a types.Advisor, opts Options, w io.Writer, s *Summary) error {
	if a.OpenAlexAuthorID == "" {
		author, matched, err := src.FindAuthor(ctx, a.Name, opts.AffiliationHint)
		if err != nil {
			return err
		}
		if !matched {
			fmt.Fprintf(w, "  no affiliation match for %s, using top result %s (%d works)\n",
				a.Name, author.DisplayName, author.WorksCount)
		}
		a.OpenAlexAuthorID = author.ID
	}

	id, err := sink.UpsertAdvisor(ctx, a)
	if err != nil {
		return fmt.Errorf("storing advisor: %w", err)
	}
	s.Advisors++

	works, err := src.Works(ctx, a.OpenAlexAuthorID, opts.MaxWorks)
	if err != nil {
		return err
	}

	for _, work := range works {
		if work.ID == "" {
			continue
		}
		if err := sink.UpsertPublication(ctx, work.Publication()); err != nil {
			return fmt.Errorf("storing %s: %w", work.ID, err)
		}
		s.Publications++

		pos, primary := work.AuthorPosition(a.OpenAlexAuthorID)
		link := types.Authorship{AdvisorID: id, PaperID: work.ID, Position: pos, IsPrimary: primary}
		if err := sink.LinkAuthor(ctx, link); err != nil {
			return fmt.Errorf("linking %s: %w", work.ID, err)
		}
		s.Authorships++
	}

	fmt.Fprintf(w, "  ingested   %s (%d works)\n", a.Name, len(works))
	return nil
}
