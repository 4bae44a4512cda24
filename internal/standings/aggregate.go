package standings

import (
	"cmp"
	"slices"
	"time"

	"github.com/omarshaarawi/pronos/internal/models"
	"github.com/omarshaarawi/pronos/internal/ranking"
)

// Aggregate sums every matchday of a season into its final ranking. Users are
// ordered by points, then exact scores, then user id.
func Aggregate(season string, matchdays []*models.MatchdayFile, generatedAt time.Time) *models.SeasonRanking {
	var acc Accumulator
	for _, md := range inOrder(matchdays) {
		acc.Add(md)
	}

	entries := make([]models.SeasonRankingEntry, 0, acc.Len())
	for _, t := range acc.Totals() {
		entries = append(entries, entry(t))
	}
	SortRanking(entries)

	return &models.SeasonRanking{
		Season:      season,
		GeneratedAt: generatedAt,
		TotalRanked: len(entries),
		Ranking:     entries,
	}
}

func entry(t Totals) models.SeasonRankingEntry {
	e := models.SeasonRankingEntry{
		UserID:              t.UserID,
		Username:            t.Username,
		Points:              t.Points,
		Predictions:         t.Predictions,
		Correct1N2:          t.Correct1N2,
		ExactScores:         t.ExactScores,
		Participations:      t.Participations,
		BestMatchday:        t.BestMatchday,
		BestMatchdayPoints:  t.BestMatchdayPoints,
		WorstMatchday:       t.WorstMatchday,
		WorstMatchdayPoints: t.WorstMatchdayPoints,
	}
	if t.Participations > 0 {
		e.Avg1N2PerMatchday = round1(float64(t.Correct1N2) / float64(t.Participations))
	}
	if t.Predictions > 0 {
		e.ExactScoreRate = round1(float64(t.ExactScores) / float64(t.Predictions) * 100)
	}
	return e
}

// SortRanking orders final season entries and assigns competition ranks.
func SortRanking(entries []models.SeasonRankingEntry) {
	slices.SortFunc(entries, func(a, b models.SeasonRankingEntry) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(b.ExactScores, a.ExactScores); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	ranking.Assign(entries,
		func(e *models.SeasonRankingEntry) int { return e.Points },
		func(e *models.SeasonRankingEntry, rank int) { e.Rank = rank })
}
