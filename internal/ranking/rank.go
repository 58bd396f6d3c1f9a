// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ranking turns retrieved papers into an ordered list of advisors.
// Hits are grouped by authoring advisor (Aggregate), each group is reduced
// to similarity, recency, and activity sub-scores (Combine), and the
// advisors are totally ordered and truncated (Select).
//
// Every function here is pure: the same hits, authorship rows, config,
// and current year always produce the same output.
package ranking

import (
	"sort"

	"github.com/pdiddy/advisor-match/pkg/types"
)

// Rank runs the full pipeline for one query. topK <= 0 falls back to
// cfg.TopK.
func Rank(hits []types.Hit, rows []types.AuthorshipRow, cfg types.RankingConfig, currentYear, topK int) []types.RankedAdvisor {
	if topK <= 0 {
		topK = cfg.TopK
	}

	sets := Aggregate(hits, rows)
	ranked := make([]types.RankedAdvisor, 0, len(sets))
	for _, set := range sets {
		if ra, ok := Combine(set, cfg, currentYear); ok {
			ranked = append(ranked, ra)
		}
	}
	return Select(ranked, topK)
}

// Select sorts advisors by final score descending, breaking exact ties by
// advisor id ascending, and returns at most topK of them. The input slice
// is reordered in place.
func Select(ranked []types.RankedAdvisor, topK int) []types.RankedAdvisor {
	sort.SliceStable(ranked, func(i, j int) bool {
		return Less(ranked[i], ranked[j])
	})
	if topK >= 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// Less reports whether a ranks before b.
func Less(a, b types.RankedAdvisor) bool {
	if a.FinalScore != b.FinalScore {
		return a.FinalScore > b.FinalScore
	}
	return a.AdvisorID < b.AdvisorID
}
