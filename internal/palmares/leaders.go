package palmares

import (
	"cmp"
	"slices"
	"time"

	"github.com/omarshaarawi/pronos/internal/models"
)

const podiumRank = 3

// JourneeLeaders counts matchday wins (rank 1) and podiums (rank 3 or better)
// per player across every archived matchday. Ties share the credit.
func JourneeLeaders(results []SeasonResult, generated time.Time) *models.JourneeStats {
	byUser := make(map[int]*models.JourneeLeader)
	total := 0

	for _, res := range ordered(results) {
		comp := res.Season.Competition
		for _, md := range res.Matchdays {
			if len(md.Standings) == 0 {
				continue
			}
			total++
			for _, st := range md.Standings {
				if st.Rank > podiumRank {
					continue
				}
				l, ok := byUser[st.UserID]
				if !ok {
					l = newLeader(st.UserID, st.Username)
					byUser[st.UserID] = l
				}
				counts := l.ByCompetition[comp]
				counts.Podiums++
				l.TotalPodiums++
				if st.Rank == 1 {
					counts.Wins++
					l.TotalWins++
				}
				l.ByCompetition[comp] = counts
			}
		}
	}

	stats := make([]models.JourneeLeader, 0, len(byUser))
	for _, l := range byUser {
		stats = append(stats, *l)
	}
	slices.SortFunc(stats, func(a, b models.JourneeLeader) int {
		if c := cmp.Compare(b.TotalWins, a.TotalWins); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalPodiums, a.TotalPodiums); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})

	return &models.JourneeStats{
		Generated:      generated,
		TotalMatchdays: total,
		TotalPlayers:   len(stats),
		Stats:          stats,
	}
}

func newLeader(id int, username string) *models.JourneeLeader {
	l := &models.JourneeLeader{
		UserID:        id,
		Username:      username,
		ByCompetition: make(map[string]models.LeaderCounts, len(models.Competitions)),
	}
	for _, c := range models.Competitions {
		l.ByCompetition[c.Code] = models.LeaderCounts{}
	}
	return l
}
