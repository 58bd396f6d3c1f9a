// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"sort"

	"github.com/pdiddy/advisor-match/pkg/types"
)

// Combine reduces one advisor's candidate set to its sub-scores and final
// score:
//
//	final = avg_similarity * avg_recency_weight + activity_bonus
//	        + citation_weight * citation_impact
//
// Similarity, recency, and citation impact are averaged over the top
// TopNPerAdvisor candidates by score; the activity bonus counts recent
// papers across the whole set. Combine reports false for an empty set.
func Combine(set CandidateSet, cfg types.RankingConfig, currentYear int) (types.RankedAdvisor, bool) {
	if len(set.Candidates) == 0 {
		return types.RankedAdvisor{}, false
	}

	sorted := make([]types.Candidate, len(set.Candidates))
	copy(sorted, set.Candidates)
	sortCandidates(sorted)

	n := cfg.TopNPerAdvisor
	if n <= 0 || n > len(sorted) {
		n = len(sorted)
	}
	top := sorted[:n]

	var simSum, recSum, citSum float64
	ids := make([]string, 0, len(top))
	for _, c := range top {
		simSum += c.Score
		recSum += RecencyWeight(c.Year, currentYear, cfg.DecayRate)
		citSum += CitationImpact(c.Citations, cfg.CitationNormalizer)
		ids = append(ids, c.DocumentID)
	}
	avgSim := simSum / float64(n)
	avgRec := recSum / float64(n)
	impact := citSum / float64(n)

	recent := 0
	for _, c := range set.Candidates {
		if IsRecent(c.Year, currentYear, cfg.ActivityThresholdYears) {
			recent++
		}
	}
	bonus := ActivityBonus(recent, cfg.ActivityBonusPerPaper, cfg.MaxActivityBonus)

	return types.RankedAdvisor{
		AdvisorID:          set.AdvisorID,
		FinalScore:         avgSim*avgRec + bonus + cfg.CitationWeight*impact,
		AvgSimilarity:      avgSim,
		RecencyWeight:      avgRec,
		ActivityBonus:      bonus,
		CitationImpact:     impact,
		MatchingPaperCount: len(set.Candidates),
		TopDocumentIDs:     ids,
	}, true
}

// sortCandidates orders candidates by score descending, then document id.
func sortCandidates(cs []types.Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Score != cs[j].Score {
			return cs[i].Score > cs[j].Score
		}
		return cs[i].DocumentID < cs[j].DocumentID
	})
}
