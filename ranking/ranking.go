// Package ranking merges a pool of roasts into a short leaderboard: the best
// scored roasts first, then the most recent ones, without repeats.
package ranking

import (
	"slices"

	"roast-board/models"
)

// Rank returns up to topN roasts by net score (upvotes - downvotes)
// followed by up to recentN roasts by creation time, dropping any roast
// whose id already appeared. Both sorts are stable, so equal keys keep the
// order of the input. The input slice is not modified.
func Rank(roasts []models.Roast, topN, recentN int) []models.Roast {
	top := TopByScore(roasts, topN)
	recent := MostRecent(roasts, recentN)

	return Dedupe(append(top, recent...))
}

// TopByScore returns the n highest scored roasts.
func TopByScore(roasts []models.Roast, n int) []models.Roast {
	sorted := slices.Clone(roasts)
	slices.SortStableFunc(sorted, func(a, b models.Roast) int {
		sa, sb := a.Score(), b.Score()
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})
	return head(sorted, n)
}

// MostRecent returns the n newest roasts.
func MostRecent(roasts []models.Roast, n int) []models.Roast {
	sorted := slices.Clone(roasts)
	slices.SortStableFunc(sorted, func(a, b models.Roast) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return head(sorted, n)
}

// Dedupe keeps the first occurrence of every id.
func Dedupe(roasts []models.Roast) []models.Roast {
	seen := make(map[string]struct{}, len(roasts))
	out := make([]models.Roast, 0, len(roasts))
	for _, r := range roasts {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

func head(roasts []models.Roast, n int) []models.Roast {
	if n <= 0 {
		return []models.Roast{}
	}
	if n > len(roasts) {
		n = len(roasts)
	}
	return roasts[:n]
}
