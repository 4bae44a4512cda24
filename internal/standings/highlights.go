package standings

import (
	"math"

	"github.com/omarshaarawi/pronos/internal/models"
)

const (
	consistencyPool     = 20
	consistencyPresence = 0.8
)

// Highlights picks the notable players of a season from its history and final
// ranking. It returns nil for a season without matchdays.
func Highlights(history []models.HistoryEntry, final []models.SeasonRankingEntry) *models.SeasonHighlights {
	if len(history) == 0 {
		return nil
	}
	return &models.SeasonHighlights{
		MostLeadMatchdays: mostLead(history),
		BiggestClimber:    biggestClimber(history),
		MostConsistent:    mostConsistent(history, final),
	}
}

// mostLead counts snapshots topped by each user. Ties go to the lowest user id.
func mostLead(history []models.HistoryEntry) *models.UserCount {
	counts := make(map[int]int)
	names := make(map[int]string)
	for _, e := range history {
		if len(e.Standings) == 0 {
			continue
		}
		top := e.Standings[0]
		counts[top.UserID]++
		names[top.UserID] = top.Username
	}

	var best *models.UserCount
	for id, n := range counts {
		if best == nil || n > best.Count || (n == best.Count && id < best.UserID) {
			best = &models.UserCount{UserID: id, Username: names[id], Count: n}
		}
	}
	return best
}

// biggestClimber compares each user's rank in the first and last snapshots.
// Only a strictly positive climb qualifies.
func biggestClimber(history []models.HistoryEntry) *models.UserClimb {
	first := make(map[int]int, len(history[0].Standings))
	for _, s := range history[0].Standings {
		first[s.UserID] = s.Rank
	}

	var best *models.UserClimb
	maxClimb := 0
	for _, s := range history[len(history)-1].Standings {
		r, ok := first[s.UserID]
		if !ok {
			continue
		}
		if climb := r - s.Rank; climb > maxClimb {
			maxClimb = climb
			best = &models.UserClimb{UserID: s.UserID, Username: s.Username, Climb: climb}
		}
	}
	return best
}

// mostConsistent finds, among the final top players, the one whose rank moved
// the least across the snapshots they appear in.
func mostConsistent(history []models.HistoryEntry, final []models.SeasonRankingEntry) *models.UserConsistency {
	ranks := make(map[int][]int)
	for _, e := range history {
		for _, s := range e.Standings {
			ranks[s.UserID] = append(ranks[s.UserID], s.Rank)
		}
	}

	pool := final[:min(len(final), consistencyPool)]
	var best *models.UserConsistency
	minDev := math.Inf(1)
	for _, u := range pool {
		rs := ranks[u.UserID]
		if float64(len(rs)) <= float64(len(history))*consistencyPresence {
			continue
		}
		if dev := stdDev(rs); dev < minDev {
			minDev = dev
			best = &models.UserConsistency{UserID: u.UserID, Username: u.Username, StdDev: round1(dev)}
		}
	}
	return best
}

// stdDev is the population standard deviation.
func stdDev(values []int) float64 {
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := float64(v) - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}
