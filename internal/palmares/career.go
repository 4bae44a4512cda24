package palmares

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/omarshaarawi/pronos/internal/models"
)

// Profile is the account data of a user as found in the users export.
type Profile struct {
	Username   string
	JoinDate   *string
	LastActive *string
}

// Career sums each player's seasons into career totals. Only users with at
// least one ranked season are listed, ordered by id. Profiles supply join and
// last-visit dates and take precedence for the username.
func Career(results []SeasonResult, profiles map[int]Profile, generated time.Time) *models.UsersFile {
	byUser := make(map[int]*models.UserCareer)
	for _, res := range ordered(results) {
		if res.Ranking == nil {
			continue
		}
		compName := res.Season.Competition
		if comp, ok := models.CompetitionByCode(compName); ok {
			compName = comp.Name
		}
		for _, e := range res.Ranking.Ranking {
			u, ok := byUser[e.UserID]
			if !ok {
				u = &models.UserCareer{ID: e.UserID, Username: e.Username}
				if p, known := profiles[e.UserID]; known {
					if p.Username != "" {
						u.Username = p.Username
					}
					u.JoinDate, u.LastActive = p.JoinDate, p.LastActive
				}
				byUser[e.UserID] = u
			}

			u.TotalParticipations++
			cs := &u.CareerStats
			cs.TotalPoints += e.Points
			cs.TotalPronostics += e.Predictions
			cs.TotalCorrects += e.Correct1N2
			cs.TotalMatchdaysPlayed += e.Participations
			if e.Points > cs.BestSeason.Points {
				cs.BestSeason = models.BestSeason{Points: e.Points, Competition: compName, Year: res.Season.Year}
			}

			u.Seasons = append(u.Seasons, models.SeasonParticipation{
				Competition: res.Season.Competition,
				Season:      res.Season.Year,
				Rank:        e.Rank,
				Points:      e.Points,
				Pronostics:  e.Predictions,
				Corrects:    e.Correct1N2,
			})
		}
	}

	users := make([]models.UserCareer, 0, len(byUser))
	for _, u := range byUser {
		if u.CareerStats.TotalPronostics > 0 {
			rate := float64(u.CareerStats.TotalCorrects) / float64(u.CareerStats.TotalPronostics) * 100
			u.CareerStats.GlobalSuccessRate = math.Round(rate*10) / 10
		}
		users = append(users, *u)
	}
	slices.SortFunc(users, func(a, b models.UserCareer) int { return cmp.Compare(a.ID, b.ID) })

	return &models.UsersFile{
		Generated:  generated,
		TotalUsers: len(users),
		Users:      users,
	}
}
