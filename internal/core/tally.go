package core

import (
	"sort"

	"github.com/dkeye/Ballot/internal/domain"
)

// maxTallyResults caps the ranked output to the podium.
const maxTallyResults = 3

// Tally groups vote targets, counts occurrences and ranks them by count
// descending, truncated to the top 3. Targets must be given in cast
// order: ties keep the order a target was first voted for. Pure
// function, safe to call outside any room lock.
func Tally(targets []string) []domain.VoteCount {
	counts := make(map[string]int, len(targets))
	firstSeen := make([]string, 0, len(targets))
	for _, t := range targets {
		if _, ok := counts[t]; !ok {
			firstSeen = append(firstSeen, t)
		}
		counts[t]++
	}

	out := make([]domain.VoteCount, 0, len(firstSeen))
	for _, name := range firstSeen {
		out = append(out, domain.VoteCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > maxTallyResults {
		out = out[:maxTallyResults]
	}
	return out
}
