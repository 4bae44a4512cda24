// Package standings folds matchday standings into season-long rankings and
// rank-over-time histories.
package standings

import (
	"cmp"
	"math"
	"slices"

	"github.com/omarshaarawi/pronos/internal/models"
)

// Totals is one user's running season totals.
type Totals struct {
	UserID              int
	Username            string
	Points              int
	Correct1N2          int
	ExactScores         int
	Predictions         int
	Participations      int
	BestMatchday        int
	BestMatchdayPoints  int
	WorstMatchday       int
	WorstMatchdayPoints int
}

// Accumulator carries the running totals of one season through the fold over
// its matchdays. The zero value is ready to use. Accumulators are never shared
// between seasons.
type Accumulator struct {
	totals map[int]*Totals
}

// Add folds one matchday's standings into the running totals.
func (a *Accumulator) Add(md *models.MatchdayFile) {
	if a.totals == nil {
		a.totals = make(map[int]*Totals)
	}
	for _, st := range md.Standings {
		t, ok := a.totals[st.UserID]
		if !ok {
			t = &Totals{
				UserID:              st.UserID,
				Username:            st.Username,
				BestMatchday:        md.Journee,
				BestMatchdayPoints:  st.MatchdayPoints,
				WorstMatchday:       md.Journee,
				WorstMatchdayPoints: st.MatchdayPoints,
			}
			a.totals[st.UserID] = t
		}
		t.Points += st.MatchdayPoints
		t.Correct1N2 += st.Correct1N2Count
		t.ExactScores += st.ExactScoreCount
		t.Predictions += st.PredictionCount
		t.Participations++

		if st.MatchdayPoints > t.BestMatchdayPoints {
			t.BestMatchday, t.BestMatchdayPoints = md.Journee, st.MatchdayPoints
		}
		if st.MatchdayPoints < t.WorstMatchdayPoints {
			t.WorstMatchday, t.WorstMatchdayPoints = md.Journee, st.MatchdayPoints
		}
	}
}

// Totals returns a copy of the running totals ordered by user id.
func (a *Accumulator) Totals() []Totals {
	out := make([]Totals, 0, len(a.totals))
	for _, t := range a.totals {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(x, y Totals) int { return cmp.Compare(x.UserID, y.UserID) })
	return out
}

// Len reports how many users have participated so far.
func (a *Accumulator) Len() int {
	return len(a.totals)
}

// inOrder returns the matchdays sorted by matchday number.
func inOrder(matchdays []*models.MatchdayFile) []*models.MatchdayFile {
	sorted := slices.Clone(matchdays)
	slices.SortStableFunc(sorted, func(a, b *models.MatchdayFile) int { return cmp.Compare(a.Journee, b.Journee) })
	return sorted
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
