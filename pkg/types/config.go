// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"math"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "advisor-match/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RankingConfig holds the tunable constants of the advisor ranking engine.
type RankingConfig struct {
	// TopNPerAdvisor is the number of best-matching papers averaged per advisor.
	TopNPerAdvisor int `json:"top_n_per_advisor" yaml:"top_n_per_advisor" mapstructure:"top_n_per_advisor"`

	// DecayRate is the per-year exponential decay applied to publication age.
	DecayRate float64 `json:"decay_rate" yaml:"decay_rate" mapstructure:"decay_rate"`

	// ActivityThresholdYears is the width of the recent-publication window.
	ActivityThresholdYears int `json:"activity_threshold_years" yaml:"activity_threshold_years" mapstructure:"activity_threshold_years"`

	// ActivityBonusPerPaper is added for each retrieved paper inside the window.
	ActivityBonusPerPaper float64 `json:"activity_bonus_per_paper" yaml:"activity_bonus_per_paper" mapstructure:"activity_bonus_per_paper"`

	// MaxActivityBonus caps the activity bonus.
	MaxActivityBonus float64 `json:"max_activity_bonus" yaml:"max_activity_bonus" mapstructure:"max_activity_bonus"`

	// CitationWeight scales citation impact into the final score. Zero
	// reports citation impact without letting it affect the order.
	CitationWeight float64 `json:"citation_weight" yaml:"citation_weight" mapstructure:"citation_weight"`

	// CitationNormalizer is the citation count that maps to an impact of 1.0.
	CitationNormalizer int `json:"citation_normalizer" yaml:"citation_normalizer" mapstructure:"citation_normalizer"`

	// TopK is the default number of advisors returned per query.
	TopK int `json:"top_k" yaml:"top_k" mapstructure:"top_k"`

	// RetrievalK is the number of candidate papers pulled from the retriever.
	RetrievalK int `json:"retrieval_k" yaml:"retrieval_k" mapstructure:"retrieval_k"`
}

// DefaultRankingConfig returns the ranking constants used when nothing is configured.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		TopNPerAdvisor:         5,
		DecayRate:              0.1,
		ActivityThresholdYears: 3,
		ActivityBonusPerPaper:  0.05,
		MaxActivityBonus:       0.2,
		CitationWeight:         0,
		CitationNormalizer:     1000,
		TopK:                   10,
		RetrievalK:             100,
	}
}

// Validate reports the first out-of-range ranking constant.
func (c RankingConfig) Validate() error {
	switch {
	case c.TopNPerAdvisor <= 0:
		return fmt.Errorf("top_n_per_advisor must be positive, got %d", c.TopNPerAdvisor)
	case c.DecayRate < 0 || math.IsNaN(c.DecayRate) || math.IsInf(c.DecayRate, 0):
		return fmt.Errorf("decay_rate must be a finite non-negative number, got %v", c.DecayRate)
	case c.ActivityThresholdYears < 0:
		return fmt.Errorf("activity_threshold_years must not be negative, got %d", c.ActivityThresholdYears)
	case c.ActivityBonusPerPaper < 0:
		return fmt.Errorf("activity_bonus_per_paper must not be negative, got %v", c.ActivityBonusPerPaper)
	case c.MaxActivityBonus < 0:
		return fmt.Errorf("max_activity_bonus must not be negative, got %v", c.MaxActivityBonus)
	case c.CitationWeight < 0:
		return fmt.Errorf("citation_weight must not be negative, got %v", c.CitationWeight)
	case c.CitationNormalizer <= 0:
		return fmt.Errorf("citation_normalizer must be positive, got %d", c.CitationNormalizer)
	case c.TopK <= 0:
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	case c.RetrievalK <= 0:
		return fmt.Errorf("retrieval_k must be positive, got %d", c.RetrievalK)
	}
	return nil
}

// StoreConfig holds settings for the SQLite advisor store.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// BatchSize is the number of document ids sent per authorship lookup
	// query (default 500, capped at 900).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`
}

// Retrieval backends.
const (
	BackendLexical = "lexical"
	BackendDense   = "dense"
)

// EmbeddingConfig holds settings for the OpenAI-compatible embeddings API.
type EmbeddingConfig struct {
	// BaseURL is the API root (default https://api.openai.com/v1).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is the authentication key for the embeddings API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Model is the embedding model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// Dimensions requests shortened vectors from models that support it.
	// Zero uses the model's native size.
	Dimensions int `json:"dimensions,omitempty" yaml:"dimensions,omitempty" mapstructure:"dimensions"`

	// Timeout bounds a single embeddings request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// RetrievalConfig selects and configures the candidate retriever.
type RetrievalConfig struct {
	// Backend is "lexical" (FTS5 bm25) or "dense" (embedding inner product).
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`

	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
}

// SpellConfig controls query spelling correction.
type SpellConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	CORSOrigins     []string      `json:"cors_origins" yaml:"cors_origins" mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// IngestConfig holds settings for populating the store from OpenAlex.
type IngestConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Email is sent as the mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// MaxWorksPerAdvisor caps the works fetched per advisor (default 5).
	MaxWorksPerAdvisor int `json:"max_works_per_advisor" yaml:"max_works_per_advisor" mapstructure:"max_works_per_advisor"`

	// RequestsPerSecond limits the OpenAlex request rate (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// AffiliationHint is matched case-insensitively against institution
	// names to disambiguate authors.
	AffiliationHint []string `json:"affiliation_hint" yaml:"affiliation_hint" mapstructure:"affiliation_hint"`
}

// Config groups every stage configuration for the application.
type Config struct {
	Ranking   RankingConfig   `json:"ranking" yaml:"ranking" mapstructure:"ranking"`
	Store     StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval" mapstructure:"retrieval"`
	Spell     SpellConfig     `json:"spell" yaml:"spell" mapstructure:"spell"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest" mapstructure:"ingest"`
}
