// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pdiddy/advisor-match/internal/match"
	"github.com/pdiddy/advisor-match/internal/retrieve"
)

const healthTimeout = 2 * time.Second

type rootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Backend string `json:"backend"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status            string `json:"status"`
	Version           string `json:"version"`
	DatabaseConnected bool   `json:"database_connected"`
	RetrieverReady    bool   `json:"retriever_ready"`
	Backend           string `json:"backend"`
}

// searchBody is the body of POST /api/search. IncludePublications
// defaults to true when omitted.
type searchBody struct {
	Query               string `json:"query"`
	TopK                *int   `json:"top_k"`
	IncludePublications *bool  `json:"include_publications"`
	SpellCorrect        bool   `json:"spell_correct"`
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, rootResponse{
		Message: "AdvisorMatch API",
		Version: s.deps.Version,
		Backend: s.deps.Service.Backend(),
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	h := HealthResponse{
		Version:        s.deps.Version,
		Backend:        s.deps.Service.Backend(),
		RetrieverReady: s.deps.Ready == nil || s.deps.Ready(),
	}
	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(ctx); err != nil {
			s.logger.Warn("health check: database unreachable", "error", err)
		} else {
			h.DatabaseConnected = true
		}
	}

	h.Status = "degraded"
	if h.DatabaseConnected && h.RetrieverReady {
		h.Status = "healthy"
	}
	return c.JSON(http.StatusOK, h)
}

func (s *Server) handleSearch(c echo.Context) error {
	var body searchBody
	if err := c.Bind(&body); err != nil {
		return fmt.Errorf("%w: malformed body", match.ErrInvalidRequest)
	}

	req := match.Request{
		Query:               body.Query,
		IncludePublications: body.IncludePublications == nil || *body.IncludePublications,
		Correct:             body.SpellCorrect,
	}
	if body.TopK != nil {
		if *body.TopK < 1 || *body.TopK > match.MaxTopK {
			return fmt.Errorf("%w: top_k must be between 1 and %d", match.ErrInvalidRequest, match.MaxTopK)
		}
		req.TopK = *body.TopK
	}

	start := time.Now()
	resp, err := s.deps.Service.Search(c.Request().Context(), req)
	backend := s.deps.Service.Backend()
	if err != nil {
		s.metrics.ObserveSearch(backend, outcomeOf(err), time.Since(start), 0)
		return err
	}

	outcome := OutcomeOK
	if resp.TotalResults == 0 {
		outcome = OutcomeEmpty
	}
	s.metrics.ObserveSearch(backend, outcome, time.Since(start), resp.TotalResults)
	return c.JSON(http.StatusOK, resp)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, match.ErrInvalidRequest):
		return OutcomeInvalid
	case errors.Is(err, retrieve.ErrUnavailable):
		return OutcomeUnavailable
	}
	return OutcomeError
}

func (s *Server) handleAdvisor(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("%w: advisor id must be a positive integer", match.ErrInvalidRequest)
	}
	a, err := s.deps.Service.Advisor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// handlePublication takes the id from a wildcard since OpenAlex work ids
// are URLs. The id may be sent escaped or raw.
func (s *Server) handlePublication(c echo.Context) error {
	raw := strings.TrimPrefix(c.Param("*"), "/")
	id, err := url.PathUnescape(raw)
	if err != nil {
		return fmt.Errorf("%w: bad publication id", match.ErrInvalidRequest)
	}
	p, err := s.deps.Service.Publication(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
