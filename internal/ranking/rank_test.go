// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/advisor-match/pkg/types"
)

func testCfg() types.RankingConfig {
	cfg := types.DefaultRankingConfig()
	cfg.DecayRate = 0.1
	cfg.ActivityThresholdYears = 3
	cfg.ActivityBonusPerPaper = 0.05
	cfg.MaxActivityBonus = 0.2
	cfg.TopNPerAdvisor = 5
	return cfg
}

// --- Aggregate ---

func TestAggregateSoleAuthorGetsExactlyOneEntry(t *testing.T) {
	hits := []types.Hit{{DocumentID: "d1", Score: 0.7}, {DocumentID: "d2", Score: 0.4}}
	rows := []types.AuthorshipRow{
		{AdvisorID: 7, DocumentID: "d1", Year: 2020, Citations: 3},
		{AdvisorID: 8, DocumentID: "d2", Year: 2021},
	}

	sets := Aggregate(hits, rows)
	require.Len(t, sets, 2)
	assert.Equal(t, int64(7), sets[0].AdvisorID)
	assert.Equal(t, []types.Candidate{{DocumentID: "d1", Score: 0.7, Year: 2020, Citations: 3}}, sets[0].Candidates)
	assert.Equal(t, int64(8), sets[1].AdvisorID)
	assert.Equal(t, []types.Candidate{{DocumentID: "d2", Score: 0.4, Year: 2021}}, sets[1].Candidates)
}

func TestAggregateSharedDocumentGoesToEveryAuthor(t *testing.T) {
	hits := []types.Hit{{DocumentID: "d1", Score: 0.9}}
	rows := []types.AuthorshipRow{
		{AdvisorID: 2, DocumentID: "d1", Year: 2024},
		{AdvisorID: 1, DocumentID: "d1", Year: 2024},
	}

	sets := Aggregate(hits, rows)
	require.Len(t, sets, 2)
	assert.Equal(t, int64(1), sets[0].AdvisorID)
	assert.Equal(t, int64(2), sets[1].AdvisorID)
	for _, s := range sets {
		require.Len(t, s.Candidates, 1)
		assert.Equal(t, 0.9, s.Candidates[0].Score)
	}
}

func TestAggregateDropsUnattributedAndUnretrieved(t *testing.T) {
	hits := []types.Hit{{DocumentID: "orphan", Score: 0.99}, {DocumentID: "d1", Score: 0.5}}
	rows := []types.AuthorshipRow{
		{AdvisorID: 1, DocumentID: "d1", Year: 2020},
		{AdvisorID: 3, DocumentID: "not-retrieved", Year: 2020},
	}

	sets := Aggregate(hits, rows)
	require.Len(t, sets, 1)
	assert.Equal(t, int64(1), sets[0].AdvisorID)
	assert.Len(t, sets[0].Candidates, 1)
}

func TestAggregateDuplicatesKeepFirstOccurrence(t *testing.T) {
	hits := []types.Hit{{DocumentID: "d1", Score: 0.9}, {DocumentID: "d1", Score: 0.2}}
	rows := []types.AuthorshipRow{
		{AdvisorID: 1, DocumentID: "d1", Year: 2020},
		{AdvisorID: 1, DocumentID: "d1", Year: 2020},
	}

	sets := Aggregate(hits, rows)
	require.Len(t, sets, 1)
	require.Len(t, sets[0].Candidates, 1)
	assert.Equal(t, 0.9, sets[0].Candidates[0].Score)
}

func TestAggregateSkipsInvalidScores(t *testing.T) {
	hits := []types.Hit{{DocumentID: "bad", Score: math.NaN()}, {DocumentID: "good", Score: 0.3}}
	rows := []types.AuthorshipRow{
		{AdvisorID: 1, DocumentID: "bad"},
		{AdvisorID: 1, DocumentID: "good"},
	}

	sets := Aggregate(hits, rows)
	require.Len(t, sets, 1)
	require.Len(t, sets[0].Candidates, 1)
	assert.Equal(t, "good", sets[0].Candidates[0].DocumentID)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, nil))
	assert.Empty(t, Aggregate([]types.Hit{{DocumentID: "d1", Score: 1}}, nil))
}

// --- Combine ---

func TestCombineUsesTopNForSimilarity(t *testing.T) {
	cfg := testCfg()
	cfg.TopNPerAdvisor = 2
	set := CandidateSet{AdvisorID: 1, Candidates: []types.Candidate{
		{DocumentID: "a", Score: 0.2, Year: thisYear},
		{DocumentID: "b", Score: 0.9, Year: thisYear},
		{DocumentID: "c", Score: 0.7, Year: thisYear},
	}}

	ra, ok := Combine(set, cfg, thisYear)
	require.True(t, ok)
	assert.InDelta(t, 0.8, ra.AvgSimilarity, 1e-12)
	assert.Equal(t, []string{"b", "c"}, ra.TopDocumentIDs)
	assert.Equal(t, 3, ra.MatchingPaperCount)
	// All three are recent even though only two feed similarity.
	assert.InDelta(t, 0.15, ra.ActivityBonus, 1e-12)
}

func TestCombineFewerThanTopN(t *testing.T) {
	set := CandidateSet{AdvisorID: 4, Candidates: []types.Candidate{
		{DocumentID: "a", Score: 0.6, Year: types.UnknownYear},
		{DocumentID: "b", Score: 0.4, Year: types.UnknownYear},
	}}

	ra, ok := Combine(set, testCfg(), thisYear)
	require.True(t, ok)
	assert.InDelta(t, 0.5, ra.AvgSimilarity, 1e-12)
	assert.InDelta(t, 0.5, ra.RecencyWeight, 1e-12)
	assert.Equal(t, 0.0, ra.ActivityBonus)
	assert.InDelta(t, 0.25, ra.FinalScore, 1e-12)
}

func TestCombineEqualScoresOrderedByDocumentID(t *testing.T) {
	cfg := testCfg()
	cfg.TopNPerAdvisor = 1
	set := CandidateSet{AdvisorID: 1, Candidates: []types.Candidate{
		{DocumentID: "z", Score: 0.5},
		{DocumentID: "m", Score: 0.5},
	}}

	ra, ok := Combine(set, cfg, thisYear)
	require.True(t, ok)
	assert.Equal(t, []string{"m"}, ra.TopDocumentIDs)
}

func TestCombineCitationImpactWeighted(t *testing.T) {
	set := CandidateSet{AdvisorID: 1, Candidates: []types.Candidate{
		{DocumentID: "a", Score: 0.5, Year: thisYear, Citations: 1000},
	}}

	cfg := testCfg()
	base, ok := Combine(set, cfg, thisYear)
	require.True(t, ok)
	assert.Equal(t, 1.0, base.CitationImpact)
	assert.InDelta(t, 0.5+0.05, base.FinalScore, 1e-12)

	cfg.CitationWeight = 0.1
	weighted, _ := Combine(set, cfg, thisYear)
	assert.InDelta(t, 0.5+0.05+0.1, weighted.FinalScore, 1e-12)
}

func TestCombineEmptySet(t *testing.T) {
	_, ok := Combine(CandidateSet{AdvisorID: 1}, testCfg(), thisYear)
	assert.False(t, ok)
}

func TestCombineDoesNotReorderInput(t *testing.T) {
	set := CandidateSet{AdvisorID: 1, Candidates: []types.Candidate{
		{DocumentID: "a", Score: 0.1},
		{DocumentID: "b", Score: 0.9},
	}}
	_, _ = Combine(set, testCfg(), thisYear)
	assert.Equal(t, "a", set.Candidates[0].DocumentID)
}

// --- Select / Rank ---

func TestSelectTieBreakByAdvisorID(t *testing.T) {
	ranked := []types.RankedAdvisor{
		{AdvisorID: 9, FinalScore: 0.5},
		{AdvisorID: 3, FinalScore: 0.5},
		{AdvisorID: 5, FinalScore: 0.7},
	}

	got := Select(ranked, 10)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{5, 3, 9}, []int64{got[0].AdvisorID, got[1].AdvisorID, got[2].AdvisorID})
}

func TestSelectTruncates(t *testing.T) {
	var ranked []types.RankedAdvisor
	for i := 0; i < 20; i++ {
		ranked = append(ranked, types.RankedAdvisor{AdvisorID: int64(i), FinalScore: float64(i)})
	}
	got := Select(ranked, 3)
	require.Len(t, got, 3)
	assert.Equal(t, int64(19), got[0].AdvisorID)
	assert.Equal(t, int64(17), got[2].AdvisorID)
}

func TestRankEndToEndExample(t *testing.T) {
	hits := []types.Hit{
		{DocumentID: "d1", Score: 0.9},
		{DocumentID: "d2", Score: 0.8},
		{DocumentID: "d3", Score: 0.1},
	}
	rows := []types.AuthorshipRow{
		{AdvisorID: 1, DocumentID: "d1", Year: thisYear},
		{AdvisorID: 1, DocumentID: "d2", Year: thisYear - 10},
		{AdvisorID: 2, DocumentID: "d3", Year: thisYear - 6},
	}

	got := Rank(hits, rows, testCfg(), thisYear, 10)
	require.Len(t, got, 2)

	a1 := got[0]
	assert.Equal(t, int64(1), a1.AdvisorID)
	assert.InDelta(t, 0.85, a1.AvgSimilarity, 1e-9)
	assert.InDelta(t, 0.684, a1.RecencyWeight, 1e-3)
	assert.InDelta(t, 0.05, a1.ActivityBonus, 1e-12)
	assert.InDelta(t, 0.631, a1.FinalScore, 1e-3)
	assert.Equal(t, 2, a1.MatchingPaperCount)
	assert.Equal(t, []string{"d1", "d2"}, a1.TopDocumentIDs)

	a2 := got[1]
	assert.Equal(t, int64(2), a2.AdvisorID)
	assert.InDelta(t, 0.1, a2.AvgSimilarity, 1e-12)
	assert.InDelta(t, 0.1*math.Exp(-0.6), a2.FinalScore, 1e-12)
}

func TestRankOrderIsTotalAndDescending(t *testing.T) {
	var hits []types.Hit
	var rows []types.AuthorshipRow
	for i := 0; i < 60; i++ {
		id := fmt.Sprintf("doc-%02d", i)
		hits = append(hits, types.Hit{DocumentID: id, Score: float64(60-i) / 60})
		rows = append(rows, types.AuthorshipRow{AdvisorID: int64(i % 13), DocumentID: id, Year: 2000 + i%27})
	}

	got := Rank(hits, rows, testCfg(), thisYear, 100)
	require.Len(t, got, 13)
	for i := 1; i < len(got); i++ {
		assert.True(t, Less(got[i-1], got[i]), "position %d out of order", i)
	}
}

func TestRankDeterministicAcrossInputOrder(t *testing.T) {
	hits := []types.Hit{
		{DocumentID: "a", Score: 0.5}, {DocumentID: "b", Score: 0.5},
		{DocumentID: "c", Score: 0.5}, {DocumentID: "d", Score: 0.5},
	}
	rows := []types.AuthorshipRow{
		{AdvisorID: 4, DocumentID: "a", Year: 2025},
		{AdvisorID: 2, DocumentID: "b", Year: 2025},
		{AdvisorID: 3, DocumentID: "c", Year: 2025},
		{AdvisorID: 1, DocumentID: "d", Year: 2025},
	}
	reversed := make([]types.AuthorshipRow, len(rows))
	for i, r := range rows {
		reversed[len(rows)-1-i] = r
	}

	first, err := json.Marshal(Rank(hits, rows, testCfg(), thisYear, 10))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(Rank(hits, reversed, testCfg(), thisYear, 10))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}

	got := Rank(hits, rows, testCfg(), thisYear, 10)
	assert.Equal(t, []int64{1, 2, 3, 4}, []int64{got[0].AdvisorID, got[1].AdvisorID, got[2].AdvisorID, got[3].AdvisorID})
}

func TestRankDefaultTopK(t *testing.T) {
	var hits []types.Hit
	var rows []types.AuthorshipRow
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("d%d", i)
		hits = append(hits, types.Hit{DocumentID: id, Score: 0.5})
		rows = append(rows, types.AuthorshipRow{AdvisorID: int64(i), DocumentID: id})
	}
	assert.Len(t, Rank(hits, rows, testCfg(), thisYear, 0), 10)
}

func TestRankNoHitsYieldsEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil, nil, testCfg(), thisYear, 10))
}
