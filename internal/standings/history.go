package standings

import (
	"cmp"
	"slices"
	"time"

	"github.com/omarshaarawi/pronos/internal/models"
	"github.com/omarshaarawi/pronos/internal/ranking"
)

// BuildHistory replays a season matchday by matchday and ranks the cumulative
// totals after each one. Snapshots are ordered by points, then correct 1N2
// picks, then user id.
func BuildHistory(season string, matchdays []*models.MatchdayFile, generatedAt time.Time) *models.SeasonHistory {
	ordered := inOrder(matchdays)
	h := &models.SeasonHistory{
		Season:         season,
		GeneratedAt:    generatedAt,
		TotalMatchdays: len(ordered),
		History:        make([]models.HistoryEntry, 0, len(ordered)),
	}

	var acc Accumulator
	for _, md := range ordered {
		acc.Add(md)
		h.History = append(h.History, models.HistoryEntry{
			Matchday:  md.Journee,
			Standings: snapshot(acc.Totals()),
		})
	}
	return h
}

func snapshot(totals []Totals) []models.HistoryStanding {
	rows := make([]models.HistoryStanding, len(totals))
	for i, t := range totals {
		rows[i] = models.HistoryStanding{
			UserID:     t.UserID,
			Username:   t.Username,
			Points:     t.Points,
			Correct1N2: t.Correct1N2,
		}
	}
	slices.SortFunc(rows, func(a, b models.HistoryStanding) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Correct1N2, a.Correct1N2); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	ranking.Assign(rows,
		func(r *models.HistoryStanding) int { return r.Points },
		func(r *models.HistoryStanding, rank int) { r.Rank = rank })
	return rows
}
