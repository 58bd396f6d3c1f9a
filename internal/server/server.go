// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the match service over HTTP with echo.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/advisor-match/internal/match"
	"github.com/pdiddy/advisor-match/internal/retrieve"
	"github.com/pdiddy/advisor-match/internal/store"
	"github.com/pdiddy/advisor-match/pkg/types"
)

const defaultShutdownTimeout = 10 * time.Second

// Service is the query surface the API serves.
type Service interface {
	Search(ctx context.Context, req match.Request) (*match.Response, error)
	Advisor(ctx context.Context, id int64) (*types.AdvisorDetail, error)
	Publication(ctx context.Context, paperID string) (*types.PublicationDetail, error)
	Backend() string
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of a Server.
type Deps struct {
	Service Service
	DB      Pinger

	// Ready reports whether the retriever can serve queries. Nil means
	// always ready.
	Ready func() bool

	Version string
	Logger  *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	echo    *echo.Echo
	deps    Deps
	cfg     types.ServerConfig
	metrics *Metrics
	logger  *slog.Logger
}

// New builds the echo instance, registers middleware and routes, and
// registers metrics with a private registry served on /metrics.
func New(cfg types.ServerConfig, deps Deps) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := NewMetrics()
	if err := metrics.Register(reg); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(metrics.Middleware())
	e.Use(requestLogger(logger))

	s := &Server{echo: e, deps: deps, cfg: cfg, metrics: metrics, logger: logger}

	e.GET("/", s.handleRoot)
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := e.Group("/api")
	api.POST("/search", s.handleSearch)
	api.GET("/advisor/:id", s.handleAdvisor)
	api.GET("/publication/*", s.handlePublication)

	return s, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = ":8000"
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "backend", s.deps.Service.Backend())
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("shutting down")
	return s.echo.Shutdown(shutdownCtx)
}

// errorHandler maps domain errors to status codes and renders every
// error as {"detail": "..."}.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		detail := "internal server error"
		var he *echo.HTTPError
		switch {
		case errors.As(err, &he):
			status = he.Code
			detail = http.StatusText(he.Code)
			if msg, ok := he.Message.(string); ok {
				detail = msg
			}
		case errors.Is(err, match.ErrInvalidRequest):
			status, detail = http.StatusBadRequest, err.Error()
		case errors.Is(err, store.ErrNotFound):
			status, detail = http.StatusNotFound, err.Error()
		case errors.Is(err, retrieve.ErrUnavailable):
			status, detail = http.StatusServiceUnavailable, "service not ready: "+err.Error()
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"path", c.Request().URL.Path,
				"status", status,
				"error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, map[string]string{"detail": detail})
		}
		if err != nil {
			logger.Error("writing error response", "error", err)
		}
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				"request_id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency)
			return nil
		},
	})
}
