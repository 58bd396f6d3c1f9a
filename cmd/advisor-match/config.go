// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/advisor-match/internal/match"
	"github.com/pdiddy/advisor-match/internal/retrieve"
	"github.com/pdiddy/advisor-match/internal/secrets"
	"github.com/pdiddy/advisor-match/internal/spell"
	"github.com/pdiddy/advisor-match/internal/store"
	"github.com/pdiddy/advisor-match/pkg/types"
)

// setDefaults registers every config key so that environment variables
// (ADVISOR_MATCH_RANKING_TOP_K and so on) are seen by Unmarshal.
func setDefaults(v *viper.Viper) {
	r := types.DefaultRankingConfig()
	v.SetDefault("ranking.top_n_per_advisor", r.TopNPerAdvisor)
	v.SetDefault("ranking.decay_rate", r.DecayRate)
	v.SetDefault("ranking.activity_threshold_years", r.ActivityThresholdYears)
	v.SetDefault("ranking.activity_bonus_per_paper", r.ActivityBonusPerPaper)
	v.SetDefault("ranking.max_activity_bonus", r.MaxActivityBonus)
	v.SetDefault("ranking.citation_weight", r.CitationWeight)
	v.SetDefault("ranking.citation_normalizer", r.CitationNormalizer)
	v.SetDefault("ranking.top_k", r.TopK)
	v.SetDefault("ranking.retrieval_k", r.RetrievalK)

	v.SetDefault("store.path", "advisormatch.db")
	v.SetDefault("store.batch_size", 500)

	v.SetDefault("retrieval.backend", types.BackendLexical)
	v.SetDefault("retrieval.embedding.base_url", "")
	v.SetDefault("retrieval.embedding.api_key", "")
	v.SetDefault("retrieval.embedding.model", "text-embedding-3-small")
	v.SetDefault("retrieval.embedding.dimensions", 0)
	v.SetDefault("retrieval.embedding.timeout", 30*time.Second)

	v.SetDefault("spell.enabled", true)

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("ingest.timeout", 30*time.Second)
	v.SetDefault("ingest.user_agent", "advisor-match/"+version)
	v.SetDefault("ingest.email", "")
	v.SetDefault("ingest.max_works_per_advisor", 5)
	v.SetDefault("ingest.requests_per_second", 2.0)
	v.SetDefault("ingest.affiliation_hint", []string{})
}

// loadConfig decodes the merged file, environment, and flag settings.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Ranking.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("ranking config: %w", err)
	}
	if cfg.Retrieval.Embedding.APIKey == "" && loadedSecrets != nil {
		cfg.Retrieval.Embedding.APIKey = loadedSecrets.Get(secrets.OpenAIAPIKey)
	}
	if cfg.Ingest.Email == "" && loadedSecrets != nil {
		cfg.Ingest.Email = loadedSecrets.Get(secrets.OpenAlexEmail)
	}
	return cfg, nil
}

// app bundles the components shared by search and serve.
type app struct {
	cfg     types.Config
	store   *store.Store
	service *match.Service
	ready   func() bool
}

func (a *app) Close() error { return a.store.Close() }

// buildApp opens the store, builds the configured retriever and spell
// checker, and assembles the match service.
func buildApp(ctx context.Context, cfg types.Config) (*app, error) {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, err
	}

	r, ready, err := buildRetriever(ctx, cfg.Retrieval, st)
	if err != nil {
		st.Close()
		return nil, err
	}

	opts := []match.Option{match.WithLogger(slog.Default())}
	if cfg.Spell.Enabled {
		checker, err := spell.Load(ctx, st)
		if err != nil {
			slog.Warn("spell checker disabled", "error", err)
		} else {
			slog.Debug("spell checker ready", "words", checker.Size())
			opts = append(opts, match.WithCorrector(checker))
		}
	}

	svc, err := match.NewService(r, st, cfg.Ranking, opts...)
	if err != nil {
		st.Close()
		return nil, err
	}
	return &app{cfg: cfg, store: st, service: svc, ready: ready}, nil
}

// buildRetriever returns the configured backend and a readiness probe.
// A dense backend with no stored vectors still starts, but reports not
// ready and answers queries with ErrUnavailable.
func buildRetriever(ctx context.Context, cfg types.RetrievalConfig, st *store.Store) (retrieve.Retriever, func() bool, error) {
	switch cfg.Backend {
	case "", types.BackendLexical:
		return retrieve.NewLexical(st), func() bool { return true }, nil
	case types.BackendDense:
		emb := retrieve.NewOpenAIEmbedder(cfg.Embedding)
		idx, err := retrieve.LoadIndex(ctx, st, emb.Model())
		if err != nil {
			return nil, nil, err
		}
		if idx.Len() == 0 {
			slog.Warn("no embeddings stored; run advisor-match embed", "model", emb.Model())
		} else {
			slog.Info("embedding index loaded", "model", emb.Model(), "vectors", idx.Len(), "dim", idx.Dim())
		}
		return retrieve.NewDense(emb, idx), func() bool { return idx.Len() > 0 }, nil
	}
	return nil, nil, fmt.Errorf("unknown retrieval backend %q: use %s or %s", cfg.Backend, types.BackendLexical, types.BackendDense)
}
