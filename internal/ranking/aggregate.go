// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"sort"

	"github.com/pdiddy/advisor-match/pkg/types"
)

// CandidateSet holds the retrieved papers attributed to one advisor for
// a single query. Document ids are unique within a set and candidates
// keep retrieval order.
type CandidateSet struct {
	AdvisorID  int64
	Candidates []types.Candidate
}

// Aggregate groups retrieved hits by authoring advisor. Each hit is
// attributed to every advisor that rows list as an author of it. Hits
// without an authorship row are dropped, rows for documents that were not
// retrieved are ignored, and when a document is retrieved twice the first
// (higher scored) occurrence wins. Sets are returned in ascending
// advisor id order.
func Aggregate(hits []types.Hit, rows []types.AuthorshipRow) []CandidateSet {
	authors := make(map[string][]types.AuthorshipRow, len(rows))
	for _, r := range rows {
		authors[r.DocumentID] = append(authors[r.DocumentID], r)
	}

	sets := make(map[int64]*CandidateSet)
	seen := make(map[int64]map[string]bool)
	retrieved := make(map[string]bool, len(hits))

	for _, h := range hits {
		if retrieved[h.DocumentID] {
			continue
		}
		retrieved[h.DocumentID] = true

		for _, r := range authors[h.DocumentID] {
			if seen[r.AdvisorID][h.DocumentID] {
				continue
			}
			c, err := types.NewCandidate(h.DocumentID, h.Score, r.Year, r.Citations)
			if err != nil {
				continue
			}

			set, ok := sets[r.AdvisorID]
			if !ok {
				set = &CandidateSet{AdvisorID: r.AdvisorID}
				sets[r.AdvisorID] = set
				seen[r.AdvisorID] = make(map[string]bool)
			}
			set.Candidates = append(set.Candidates, c)
			seen[r.AdvisorID][h.DocumentID] = true
		}
	}

	out := make([]CandidateSet, 0, len(sets))
	for _, set := range sets {
		out = append(out, *set)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AdvisorID < out[j].AdvisorID
	})
	return out
}
