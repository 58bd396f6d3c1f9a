// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"math"

	"github.com/pdiddy/advisor-match/pkg/types"
)

// NeutralRecencyWeight is the weight given to papers with an unknown year.
const NeutralRecencyWeight = 0.5

// RecencyWeight returns exp(-decayRate * age) where age is the number of
// years between year and currentYear. Papers dated after currentYear are
// treated as age zero, so the weight never exceeds 1.0. An unknown year
// yields NeutralRecencyWeight.
func RecencyWeight(year, currentYear int, decayRate float64) float64 {
	if year == types.UnknownYear {
		return NeutralRecencyWeight
	}
	age := currentYear - year
	if age < 0 {
		age = 0
	}
	return math.Exp(-decayRate * float64(age))
}

// ActivityBonus returns recentCount * perPaper, capped at maxBonus.
func ActivityBonus(recentCount int, perPaper, maxBonus float64) float64 {
	if recentCount <= 0 {
		return 0
	}
	return math.Min(float64(recentCount)*perPaper, maxBonus)
}

// IsRecent reports whether year falls inside the activity window
// [currentYear-thresholdYears, ...]. Unknown years are never recent.
func IsRecent(year, currentYear, thresholdYears int) bool {
	return year != types.UnknownYear && year >= currentYear-thresholdYears
}

// CitationImpact maps a citation count onto [0, 1] as
// log(1+citations) / log(1+normalizer), capped at 1.
func CitationImpact(citations, normalizer int) float64 {
	if citations <= 0 || normalizer <= 0 {
		return 0
	}
	return math.Min(1, math.Log1p(float64(citations))/math.Log1p(float64(normalizer)))
}
