package service

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/omarshaarawi/pronos/internal/archive"
	"github.com/omarshaarawi/pronos/internal/models"
	"github.com/omarshaarawi/pronos/internal/repository/memory"
)

const (
	defaultCompetition = "ligue1"
	topN               = 10
	userThreshold      = 0.6
)

// ErrUserNotFound is returned when no username is close enough to a query.
var ErrUserNotFound = errors.New("user not found")

// ArchiveService answers read queries over the published archive. Decoded
// documents are kept in the repository until its TTL expires.
type ArchiveService struct {
	store *archive.Store
	repo  *memory.Repository
}

func NewArchiveService(store *archive.Store, repo *memory.Repository) *ArchiveService {
	return &ArchiveService{store: store, repo: repo}
}

// Invalidate forgets every cached document.
func (s *ArchiveService) Invalidate() {
	s.repo.Invalidate()
}

func cached[T any](s *ArchiveService, rel string, read func() (*T, error)) (*T, error) {
	if v, ok := s.repo.Get(rel); ok {
		if doc, ok := v.(*T); ok {
			return doc, nil
		}
	}
	doc, err := read()
	if err != nil {
		return nil, err
	}
	s.repo.Save(rel, doc)
	return doc, nil
}

func (s *ArchiveService) Ranking(season models.Season) (*models.SeasonRanking, error) {
	return cached(s, archive.RankingPath(season), func() (*models.SeasonRanking, error) { return s.store.LoadRanking(season) })
}

func (s *ArchiveService) History(season models.Season) (*models.SeasonHistory, error) {
	return cached(s, archive.HistoryPath(season), func() (*models.SeasonHistory, error) { return s.store.LoadHistory(season) })
}

func (s *ArchiveService) Matchday(season models.Season, journee int) (*models.MatchdayFile, error) {
	return cached(s, archive.MatchdayPath(season, journee), func() (*models.MatchdayFile, error) {
		return s.store.LoadMatchday(season, journee)
	})
}

func (s *ArchiveService) Palmares() (*models.Palmares, error) {
	return cached(s, archive.PalmaresPath(), s.store.LoadPalmares)
}

func (s *ArchiveService) JourneeStats() (*models.JourneeStats, error) {
	return cached(s, archive.JourneeStatsPath(), s.store.LoadJourneeStats)
}

func (s *ArchiveService) Users() (*models.UsersFile, error) {
	return cached(s, archive.UsersPath(), s.store.LoadUsers)
}

func (s *ArchiveService) SeasonsIndex(comp models.Competition) (*models.SeasonsIndex, error) {
	return cached(s, archive.SeasonsIndexPath(comp), func() (*models.SeasonsIndex, error) { return s.store.LoadSeasonsIndex(comp) })
}

// ResolveSeason reads a season argument: empty for the latest Ligue 1 season,
// a competition code for its latest ranked season, or a full season key.
func (s *ArchiveService) ResolveSeason(arg string) (models.Season, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "" {
		arg = defaultCompetition
	}
	comp, ok := models.CompetitionByCode(arg)
	if !ok {
		return models.ParseSeasonKey(arg)
	}

	seasons, err := s.store.Seasons(comp)
	if err != nil {
		return models.Season{}, err
	}
	for i := len(seasons) - 1; i >= 0; i-- {
		if s.store.Exists(archive.RankingPath(seasons[i])) {
			return seasons[i], nil
		}
	}
	return models.Season{}, fmt.Errorf("no ranked season for %s: %w", comp.Name, archive.ErrNotFound)
}

// LatestMatchday returns the highest archived matchday number of a season.
func (s *ArchiveService) LatestMatchday(season models.Season) (int, error) {
	nums, err := s.store.Matchdays(season)
	if err != nil {
		return 0, err
	}
	if len(nums) == 0 {
		return 0, fmt.Errorf("no matchday archived for %s: %w", season, archive.ErrNotFound)
	}
	return nums[len(nums)-1], nil
}

// FindUser resolves a username query: an exact match ignoring case first,
// then the closest name containing the query's letters in order, then the
// most similar name by edit distance.
func (s *ArchiveService) FindUser(query string) (*models.UserCareer, error) {
	users, err := s.Users()
	if err != nil {
		return nil, err
	}
	i, ok := matchUser(users.Users, query)
	if !ok {
		return nil, fmt.Errorf("%q: %w", query, ErrUserNotFound)
	}
	return &users.Users[i], nil
}

func matchUser(users []models.UserCareer, query string) (int, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, false
	}
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Username
		if strings.EqualFold(u.Username, query) {
			return i, true
		}
	}

	if ranks := fuzzy.RankFindNormalizedFold(query, names); len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].OriginalIndex, true
	}

	best, bestScore := -1, 0.0
	for i, name := range names {
		distance := fuzzy.LevenshteinDistance(strings.ToLower(query), strings.ToLower(name))
		maxLen := float64(max(len(query), len(name)))
		similarity := 1 - float64(distance)/maxLen
		if similarity > userThreshold && similarity > bestScore {
			best, bestScore = i, similarity
		}
	}
	return best, best >= 0
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func esc(s string) string {
	return markdownEscaper.Replace(s)
}

func competitionName(code string) string {
	if c, ok := models.CompetitionByCode(code); ok {
		return c.Name
	}
	return code
}

func seasonTitle(season models.Season) string {
	return competitionName(season.Competition) + " " + season.Year
}

// GetRanking formats the top of a season ranking.
func (s *ArchiveService) GetRanking(arg string) (string, error) {
	season, err := s.ResolveSeason(arg)
	if err != nil {
		return "", err
	}
	r, err := s.Ranking(season)
	if err != nil {
		return "", fmt.Errorf("error fetching ranking: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏆 *Classement %s*\n\n", seasonTitle(season)))
	if len(r.Ranking) == 0 {
		sb.WriteString("No ranked players yet.")
		return sb.String(), nil
	}
	for _, e := range r.Ranking[:min(topN, len(r.Ranking))] {
		sb.WriteString(fmt.Sprintf("%d. *%s* - %d pts\n", e.Rank, esc(e.Username), e.Points))
		sb.WriteString(fmt.Sprintf("   1N2: %d (%.1f/j) | Exacts: %d (%.1f%%)\n", e.Correct1N2, e.Avg1N2PerMatchday, e.ExactScores, e.ExactScoreRate))
	}
	sb.WriteString(fmt.Sprintf("\n%d players ranked", r.TotalRanked))
	return sb.String(), nil
}

// GetMatchday formats the standings of one matchday. The journee argument
// defaults to the last archived matchday.
func (s *ArchiveService) GetMatchday(arg, journee string) (string, error) {
	season, err := s.ResolveSeason(arg)
	if err != nil {
		return "", err
	}
	var j int
	if journee == "" {
		if j, err = s.LatestMatchday(season); err != nil {
			return "", err
		}
	} else if j, err = strconv.Atoi(strings.TrimPrefix(strings.ToLower(journee), "j")); err != nil {
		return "", fmt.Errorf("invalid matchday %q", journee)
	}

	md, err := s.Matchday(season, j)
	if err != nil {
		return "", fmt.Errorf("error fetching matchday: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *%s - Journée %d*", seasonTitle(season), md.Journee))
	if md.Date != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", md.Date))
	}
	sb.WriteString("\n\n")
	for _, m := range md.Matches {
		if m.HomeScore != nil && m.AwayScore != nil {
			sb.WriteString(fmt.Sprintf("%s %d - %d %s\n", esc(m.HomeTeam), *m.HomeScore, *m.AwayScore, esc(m.AwayTeam)))
		}
	}
	if len(md.Standings) > 0 {
		sb.WriteString("\n")
	}
	for _, st := range md.Standings[:min(topN, len(md.Standings))] {
		sb.WriteString(fmt.Sprintf("%d. *%s* - %d pts (1N2: %d, bonus %d)\n", st.Rank, esc(st.Username), st.MatchdayPoints, st.Correct1N2Count, st.Bonus))
	}
	return sb.String(), nil
}

// GetHistory formats the highlights and the leaders of each snapshot of a
// season.
func (s *ArchiveService) GetHistory(arg string) (string, error) {
	season, err := s.ResolveSeason(arg)
	if err != nil {
		return "", err
	}
	h, err := s.History(season)
	if err != nil {
		return "", fmt.Errorf("error fetching history: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📈 *Historique %s*\n\n", seasonTitle(season)))
	if hl := h.Highlights; hl != nil {
		if hl.MostLeadMatchdays != nil {
			sb.WriteString(fmt.Sprintf("👑 Most matchdays in the lead: *%s* (%d)\n", esc(hl.MostLeadMatchdays.Username), hl.MostLeadMatchdays.Count))
		}
		if hl.BiggestClimber != nil {
			sb.WriteString(fmt.Sprintf("🚀 Biggest climber: *%s* (+%d)\n", esc(hl.BiggestClimber.Username), hl.BiggestClimber.Climb))
		}
		if hl.MostConsistent != nil {
			sb.WriteString(fmt.Sprintf("🎯 Most consistent: *%s* (σ %.1f)\n", esc(hl.MostConsistent.Username), hl.MostConsistent.StdDev))
		}
		sb.WriteString("\n")
	}
	for _, entry := range h.History {
		if len(entry.Standings) == 0 {
			continue
		}
		lead := entry.Standings[0]
		sb.WriteString(fmt.Sprintf("J%d: %s (%d pts)\n", entry.Matchday, esc(lead.Username), lead.Points))
	}
	return sb.String(), nil
}

// GetPalmares formats the title holders of every competition.
func (s *ArchiveService) GetPalmares() (string, error) {
	p, err := s.Palmares()
	if err != nil {
		return "", fmt.Errorf("error fetching palmares: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("🥇 *Palmarès*\n\n")
	for _, e := range p.Palmares[:min(topN, len(p.Palmares))] {
		sb.WriteString(fmt.Sprintf("*%s* - %d title(s)\n", esc(e.Username), e.TotalVictories))
		for _, v := range e.Victories {
			sb.WriteString(fmt.Sprintf("  • %s %s (%d pts)\n", competitionName(v.Competition), v.Season, v.Points))
		}
	}
	if len(p.Palmares) == 0 {
		sb.WriteString("No titles awarded yet.")
	}
	return sb.String(), nil
}

// GetLeaders formats the players with the most matchday wins.
func (s *ArchiveService) GetLeaders() (string, error) {
	js, err := s.JourneeStats()
	if err != nil {
		return "", fmt.Errorf("error fetching matchday stats: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏅 *Matchday winners* (%d matchdays)\n\n", js.TotalMatchdays))
	for i, l := range js.Stats[:min(topN, len(js.Stats))] {
		sb.WriteString(fmt.Sprintf("%d. *%s* - %d wins, %d podiums\n", i+1, esc(l.Username), l.TotalWins, l.TotalPodiums))
	}
	return sb.String(), nil
}

// GetPlayer formats the career of the user closest to query.
func (s *ArchiveService) GetPlayer(query string) (string, error) {
	u, err := s.FindUser(query)
	if errors.Is(err, ErrUserNotFound) {
		return fmt.Sprintf("🔍 No player found matching '%s'.", query), nil
	}
	if err != nil {
		return "", fmt.Errorf("error fetching users: %w", err)
	}

	c := u.CareerStats
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👤 *%s*\n", esc(u.Username)))
	sb.WriteString("━━━━━━━━━━━━━━━━\n")
	if u.JoinDate != nil {
		sb.WriteString(fmt.Sprintf("Member since %s\n", *u.JoinDate))
	}
	sb.WriteString(fmt.Sprintf("Seasons: %d | Matchdays: %d\n", u.TotalParticipations, c.TotalMatchdaysPlayed))
	sb.WriteString(fmt.Sprintf("Points: %d | Pronostics: %d\n", c.TotalPoints, c.TotalPronostics))
	sb.WriteString(fmt.Sprintf("1N2: %d (%.1f%%)\n", c.TotalCorrects, c.GlobalSuccessRate))
	if c.BestSeason.Points > 0 {
		sb.WriteString(fmt.Sprintf("Best season: %s %s (%d pts)\n", c.BestSeason.Competition, c.BestSeason.Year, c.BestSeason.Points))
	}
	if len(u.Seasons) > 0 {
		sb.WriteString("\n")
	}
	for _, p := range u.Seasons {
		sb.WriteString(fmt.Sprintf("  • %s %s: #%d, %d pts\n", competitionName(p.Competition), p.Season, p.Rank, p.Points))
	}
	return sb.String(), nil
}

// GetSeasons formats the season index of a competition.
func (s *ArchiveService) GetSeasons(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		code = defaultCompetition
	}
	comp, ok := models.CompetitionByCode(code)
	if !ok {
		return "", fmt.Errorf("unknown competition %q", code)
	}
	idx, err := s.SeasonsIndex(comp)
	if err != nil {
		return "", fmt.Errorf("error fetching seasons: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗂 *%s* - %d seasons\n\n", comp.Name, idx.TotalSeasons))
	for _, ss := range idx.Seasons {
		sb.WriteString(fmt.Sprintf("*%s* (%s) - %d players", ss.Year, ss.Status, ss.ActiveUsers))
		if len(ss.Winners) > 0 {
			names := make([]string, len(ss.Winners))
			for i, w := range ss.Winners {
				names[i] = esc(w)
			}
			sb.WriteString(" - 🏆 " + strings.Join(names, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
