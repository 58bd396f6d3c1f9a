// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match answers advisor queries. A Service corrects the query,
// retrieves candidate publications, looks up their authors, ranks the
// advisors, and joins the ranked records with advisor and publication
// metadata for display.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/advisor-match/internal/ranking"
	"github.com/pdiddy/advisor-match/internal/retrieve"
	"github.com/pdiddy/advisor-match/internal/store"
	"github.com/pdiddy/advisor-match/pkg/types"
)

// MaxTopK is the largest number of advisors a single request may ask for.
const MaxTopK = 50

// topPublications is the number of supporting papers shown per advisor.
const topPublications = 3

const defaultJoinConcurrency = 8

// ErrInvalidRequest is returned for an out-of-range top_k or an empty paper id.
var ErrInvalidRequest = errors.New("invalid request")

// Store is the read side of the advisor store the service needs.
type Store interface {
	Authorships(ctx context.Context, documentIDs []string) ([]types.AuthorshipRow, error)
	Advisor(ctx context.Context, id int64, recentSince int) (*types.AdvisorDetail, error)
	Publication(ctx context.Context, paperID string) (*types.PublicationDetail, error)
}

// Corrector rewrites a query with corrected spelling.
type Corrector interface {
	Correct(text string) string
}

// Request is one advisor search.
type Request struct {
	Query string `json:"query"`

	// TopK is the number of advisors to return. Zero means the
	// configured default.
	TopK int `json:"top_k"`

	IncludePublications bool `json:"include_publications"`

	// Correct enables spelling correction of Query before retrieval.
	Correct bool `json:"spell_correct"`
}

// PublicationSummary is a supporting paper shown under an advisor.
type PublicationSummary struct {
	PaperID    string  `json:"paper_id"`
	Title      string  `json:"title"`
	Year       int     `json:"year,omitempty"`
	Venue      string  `json:"venue,omitempty"`
	Citations  int     `json:"citations"`
	Similarity float64 `json:"similarity"`
}

// Result is a ranked advisor joined with display metadata.
type Result struct {
	types.Advisor
	types.RankedAdvisor

	TopPublications []PublicationSummary `json:"top_publications,omitempty"`
}

// Response is the answer to a Request.
type Response struct {
	Query          string   `json:"query"`
	CorrectedQuery string   `json:"corrected_query,omitempty"`
	Results        []Result `json:"results"`
	TotalResults   int      `json:"total_results"`
	SearchTimeMS   float64  `json:"search_time_ms"`
	Backend        string   `json:"backend"`
}

// Service is the query pipeline. It is safe for concurrent use.
type Service struct {
	retriever retrieve.Retriever
	store     Store
	corrector Corrector
	cfg       types.RankingConfig
	now       func() time.Time
	logger    *slog.Logger
	joinLimit int
}

// Option customizes a Service.
type Option func(*Service)

// WithCorrector enables spelling correction for requests that ask for it.
func WithCorrector(c Corrector) Option {
	return func(s *Service) { s.corrector = c }
}

// WithClock replaces time.Now, which determines the current year.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithJoinConcurrency bounds the metadata lookups in flight per request.
func WithJoinConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.joinLimit = n
		}
	}
}

// NewService validates cfg and returns a Service.
func NewService(r retrieve.Retriever, st Store, cfg types.RankingConfig, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ranking config: %w", err)
	}
	s := &Service{
		retriever: r,
		store:     st,
		cfg:       cfg,
		now:       time.Now,
		logger:    slog.Default(),
		joinLimit: defaultJoinConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Backend returns the name of the retrieval backend.
func (s *Service) Backend() string { return s.retriever.Name() }

// Config returns the ranking constants in use.
func (s *Service) Config() types.RankingConfig { return s.cfg }

// Search runs the full pipeline for req.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	start := s.now()

	query := strings.TrimSpace(req.Query)
	topK := req.TopK
	if topK == 0 {
		topK = s.cfg.TopK
	}
	if topK < 1 || topK > MaxTopK {
		return nil, fmt.Errorf("%w: top_k must be between 1 and %d, got %d", ErrInvalidRequest, MaxTopK, req.TopK)
	}

	resp := &Response{Query: req.Query, Backend: s.retriever.Name(), Results: []Result{}}

	if req.Correct && s.corrector != nil {
		if corrected := s.corrector.Correct(query); corrected != query {
			resp.CorrectedQuery = corrected
			query = corrected
		}
	}

	hits, err := s.retriever.Retrieve(ctx, query, s.cfg.RetrievalK)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.DocumentID
	}
	rows, err := s.store.Authorships(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("looking up authorships: %w", err)
	}

	currentYear := start.Year()
	ranked := ranking.Rank(hits, rows, s.cfg, currentYear, topK)

	results, err := s.join(ctx, ranked, hits, currentYear, req.IncludePublications)
	if err != nil {
		return nil, err
	}
	resp.Results = results
	resp.TotalResults = len(results)
	resp.SearchTimeMS = float64(s.now().Sub(start).Microseconds()) / 1000

	s.logger.Info("search",
		"query", query,
		"backend", resp.Backend,
		"hits", len(hits),
		"results", resp.TotalResults,
		"elapsed_ms", resp.SearchTimeMS)
	return resp, nil
}

// join attaches metadata to each ranked advisor, preserving rank order.
// Advisors missing from the store are logged and dropped.
func (s *Service) join(ctx context.Context, ranked []types.RankedAdvisor, hits []types.Hit, currentYear int, withPubs bool) ([]Result, error) {
	similarity := make(map[string]float64, len(hits))
	for _, h := range hits {
		if _, seen := similarity[h.DocumentID]; !seen {
			similarity[h.DocumentID] = h.Score
		}
	}
	recentSince := currentYear - s.cfg.ActivityThresholdYears

	slots := make([]*Result, len(ranked))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.joinLimit)

	for i, ra := range ranked {
		g.Go(func() error {
			detail, err := s.store.Advisor(gctx, ra.AdvisorID, recentSince)
			if errors.Is(err, store.ErrNotFound) {
				s.logger.Warn("ranked advisor missing from store", "advisor_id", ra.AdvisorID)
				return nil
			}
			if err != nil {
				return err
			}

			res := &Result{Advisor: detail.Advisor, RankedAdvisor: ra}
			if withPubs {
				res.TopPublications, err = s.publications(gctx, ra.TopDocumentIDs, similarity)
				if err != nil {
					return err
				}
			}
			slots[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("joining advisor metadata: %w", err)
	}

	results := make([]Result, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, nil
}

func (s *Service) publications(ctx context.Context, ids []string, similarity map[string]float64) ([]PublicationSummary, error) {
	out := make([]PublicationSummary, 0, topPublications)
	for _, id := range ids {
		if len(out) == topPublications {
			break
		}
		p, err := s.store.Publication(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, PublicationSummary{
			PaperID:    p.PaperID,
			Title:      p.Title,
			Year:       p.Year,
			Venue:      p.Venue,
			Citations:  p.CitationCount,
			Similarity: similarity[id],
		})
	}
	return out, nil
}

// Advisor returns one advisor with publication counts.
func (s *Service) Advisor(ctx context.Context, id int64) (*types.AdvisorDetail, error) {
	return s.store.Advisor(ctx, id, s.now().Year()-s.cfg.ActivityThresholdYears)
}

// Publication returns one publication with its advisor-authors.
func (s *Service) Publication(ctx context.Context, paperID string) (*types.PublicationDetail, error) {
	if strings.TrimSpace(paperID) == "" {
		return nil, fmt.Errorf("%w: paper id must not be empty", ErrInvalidRequest)
	}
	return s.store.Publication(ctx, paperID)
}
