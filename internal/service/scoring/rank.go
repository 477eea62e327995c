package scoring

import (
	"sort"
	"strconv"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
)

// Rank orders scored candidates by final score descending and reassigns
// ranks 1..N. Ties break toward the earlier source row so repeated rankings
// of the same inputs are stable.
func Rank(list []domain.ScoredCandidate) []domain.ScoredCandidate {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].FinalScore != list[j].FinalScore {
			return list[i].FinalScore > list[j].FinalScore
		}
		return sourceIndex(list[i].ID) < sourceIndex(list[j].ID)
	})
	for i := range list {
		list[i].Rank = i + 1
	}
	return list
}

// RankAlgo produces the interim leaderboard from pre-scores alone, used
// while AI evaluation is still running.
func RankAlgo(cands []domain.ProcessedCandidate, scores map[string]int) []domain.AlgoRankEntry {
	entries := make([]domain.AlgoRankEntry, 0, len(cands))
	for _, c := range cands {
		entries = append(entries, domain.AlgoRankEntry{
			ID:        c.ID,
			Name:      c.Name,
			Title:     c.Title,
			AlgoScore: scores[c.ID],
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].AlgoScore != entries[j].AlgoScore {
			return entries[i].AlgoScore > entries[j].AlgoScore
		}
		return sourceIndex(entries[i].ID) < sourceIndex(entries[j].ID)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// sourceIndex recovers the source row position from a candidate id. Ids are
// minted from row indexes, so the parse only fails on foreign input, which
// sorts last.
func sourceIndex(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
