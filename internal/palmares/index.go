package palmares

import (
	"strings"
	"time"

	"github.com/omarshaarawi/pronos/internal/models"
)

const (
	StatusUpcoming = "upcoming"
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
)

const dateLayout = "2006-01-02"

// SeasonIndex summarises every season of one competition. Status is judged
// against ref, a calendar date.
func SeasonIndex(comp models.Competition, results []SeasonResult, ref, generated time.Time) *models.SeasonsIndex {
	idx := &models.SeasonsIndex{
		Competition: comp.Code,
		Name:        comp.Name,
		Generated:   generated,
		Seasons:     []models.SeasonSummary{},
	}
	refDay := ref.Format(dateLayout)

	for _, res := range ordered(results) {
		if res.Season.Competition != comp.Code {
			continue
		}
		s := models.SeasonSummary{
			Year:     res.Season.Year,
			SeasonID: res.SeasonID,
			Name:     res.Name,
			Winners:  []string{},
		}
		users := make(map[int]struct{})
		for _, md := range res.Matchdays {
			s.TotalMatches += md.MatchCount
			s.TotalPronostics += md.PredictionCount
			for _, st := range md.Standings {
				users[st.UserID] = struct{}{}
			}
			first, last := matchdayRange(md)
			if first == "" {
				continue
			}
			if s.StartDate == "" || first < s.StartDate {
				s.StartDate = first
			}
			if last > s.EndDate {
				s.EndDate = last
			}
		}
		s.ActiveUsers = len(users)
		s.Status = status(s.StartDate, s.EndDate, refDay)
		for _, w := range Winners(res.Ranking) {
			s.Winners = append(s.Winners, w.Username)
		}
		idx.Seasons = append(idx.Seasons, s)
	}

	idx.TotalSeasons = len(idx.Seasons)
	return idx
}

// matchdayRange returns the first and last match day of md, falling back to
// the matchday date when no match carries one.
func matchdayRange(md *models.MatchdayFile) (first, last string) {
	for _, m := range md.Matches {
		day, _, _ := strings.Cut(m.Date, " ")
		if day == "" {
			continue
		}
		if first == "" || day < first {
			first = day
		}
		last = max(last, day)
	}
	if first == "" {
		return md.Date, md.Date
	}
	return first, last
}

// status compares ISO dates lexically.
func status(start, end, ref string) string {
	switch {
	case start == "" || start > ref:
		return StatusUpcoming
	case end < ref:
		return StatusFinished
	default:
		return StatusOngoing
	}
}
