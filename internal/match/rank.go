package match

import (
	"sort"

	"github.com/NotSimone/Kobo-Metadata/internal/catalog"
)

// Rank filters blacklisted candidates, scores the survivors against the
// query and returns at most maxResults of them ordered by descending score.
// The sort is stable: equal scores keep the catalog's own result order, so
// identical inputs always rank identically.
func Rank(q catalog.Query, candidates []catalog.RawCandidate, blacklist Blacklist, maxResults int, scorer Scorer) []catalog.ScoredCandidate {
	if maxResults <= 0 {
		return nil
	}

	scored := make([]catalog.ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if blacklist.MatchesTitle(candidate.Title) {
			continue
		}
		scored = append(scored, catalog.ScoredCandidate{
			RawCandidate: candidate,
			Score:        scorer.Score(q, candidate),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	for i := range scored {
		scored[i].Rank = i
	}
	return scored
}
