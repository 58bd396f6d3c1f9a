// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for advisor-match: the
// store records (advisors, publications, authorships), the retriever
// contract (Hit), the ranking records (Candidate, RankedAdvisor), and
// the configuration of every stage.
package types

import (
	"fmt"
	"math"
)

// UnknownYear marks a publication whose year is not recorded.
const UnknownYear = 0

// Hit is one retrieved document with its backend-defined relevance score.
// Retrievers return hits sorted descending by Score.
type Hit struct {
	DocumentID string  `json:"document_id" yaml:"document_id"`
	Score      float64 `json:"score" yaml:"score"`
}

// AuthorshipRow links an advisor to a retrieved document, carrying the
// document attributes the ranking engine needs.
type AuthorshipRow struct {
	AdvisorID  int64  `json:"advisor_id" yaml:"advisor_id"`
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Year is the publication year, or UnknownYear.
	Year      int `json:"year" yaml:"year"`
	Citations int `json:"citations" yaml:"citations"`
}

// Candidate is one entry of an advisor's per-query candidate set.
type Candidate struct {
	DocumentID string  `json:"document_id" yaml:"document_id"`
	Score      float64 `json:"score" yaml:"score"`
	Year       int     `json:"year" yaml:"year"`
	Citations  int     `json:"citations" yaml:"citations"`
}

// NewCandidate validates and builds a Candidate. The document id must be
// set, the score finite, and the year and citation count non-negative.
func NewCandidate(documentID string, score float64, year, citations int) (Candidate, error) {
	if documentID == "" {
		return Candidate{}, fmt.Errorf("candidate has empty document id")
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Candidate{}, fmt.Errorf("candidate %s has non-finite score %v", documentID, score)
	}
	if year < 0 {
		return Candidate{}, fmt.Errorf("candidate %s has negative year %d", documentID, year)
	}
	if citations < 0 {
		citations = 0
	}
	return Candidate{DocumentID: documentID, Score: score, Year: year, Citations: citations}, nil
}

// RankedAdvisor is the explainable ranking record for one advisor.
type RankedAdvisor struct {
	AdvisorID          int64    `json:"advisor_id" yaml:"advisor_id"`
	FinalScore         float64  `json:"final_score" yaml:"final_score"`
	AvgSimilarity      float64  `json:"avg_similarity" yaml:"avg_similarity"`
	RecencyWeight      float64  `json:"recency_weight" yaml:"recency_weight"`
	ActivityBonus      float64  `json:"activity_bonus" yaml:"activity_bonus"`
	CitationImpact     float64  `json:"citation_impact" yaml:"citation_impact"`
	MatchingPaperCount int      `json:"matching_paper_count" yaml:"matching_paper_count"`
	TopDocumentIDs     []string `json:"top_document_ids" yaml:"top_document_ids"`
}
