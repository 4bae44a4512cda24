// Package palmares builds the cross-season leaderboards of the archive from
// finished season rankings and matchday standings.
package palmares

import (
	"cmp"
	"slices"
	"time"

	"github.com/omarshaarawi/pronos/internal/models"
	"github.com/omarshaarawi/pronos/internal/ranking"
)

// SeasonResult is everything the derived builders need about one season.
type SeasonResult struct {
	Season    models.Season
	SeasonID  string
	Name      string
	Ranking   *models.SeasonRanking
	Matchdays []*models.MatchdayFile
}

// ordered sorts results by competition order, then year.
func ordered(results []SeasonResult) []SeasonResult {
	out := slices.Clone(results)
	slices.SortStableFunc(out, func(a, b SeasonResult) int {
		if c := cmp.Compare(competitionIndex(a.Season.Competition), competitionIndex(b.Season.Competition)); c != 0 {
			return c
		}
		return cmp.Compare(a.Season.Year, b.Season.Year)
	})
	return out
}

func competitionIndex(code string) int {
	for i, c := range models.Competitions {
		if c.Code == code {
			return i
		}
	}
	return len(models.Competitions)
}

// Winners returns the rank 1 entries sharing the season's top points.
func Winners(r *models.SeasonRanking) []models.SeasonRankingEntry {
	if r == nil || len(r.Ranking) == 0 {
		return nil
	}
	top := r.Ranking[0].Points
	leaders := ranking.Leaders(r.Ranking, func(e *models.SeasonRankingEntry) int { return e.Rank })
	out := make([]models.SeasonRankingEntry, 0, len(leaders))
	for _, e := range leaders {
		if e.Points == top {
			out = append(out, e)
		}
	}
	return out
}

// Palmares credits one title per season to every winner of that season.
// Players are ordered by title count, then user id.
func Palmares(results []SeasonResult, generated time.Time) *models.Palmares {
	byUser := make(map[int]*models.PalmaresEntry)
	for _, res := range ordered(results) {
		for _, w := range Winners(res.Ranking) {
			p, ok := byUser[w.UserID]
			if !ok {
				p = &models.PalmaresEntry{UserID: w.UserID, Username: w.Username}
				byUser[w.UserID] = p
			}
			p.Victories = append(p.Victories, models.Victory{
				Competition: res.Season.Competition,
				Season:      res.Season.Year,
				Points:      w.Points,
				Predictions: w.Predictions,
			})
			p.TotalVictories++
		}
	}

	entries := make([]models.PalmaresEntry, 0, len(byUser))
	for _, p := range byUser {
		entries = append(entries, *p)
	}
	slices.SortFunc(entries, func(a, b models.PalmaresEntry) int {
		if c := cmp.Compare(b.TotalVictories, a.TotalVictories); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})

	return &models.Palmares{
		Generated:    generated,
		TotalWinners: len(entries),
		Palmares:     entries,
	}
}
