package export

import (
	"cmp"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/omarshaarawi/pronos/internal/models"
	"github.com/omarshaarawi/pronos/internal/scoring"
)

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) Client() *Client {
	return a.client
}

var (
	seasonSpanRe = regexp.MustCompile(`(\d{4})\s*/\s*(\d{4})`)
	singleYearRe = regexp.MustCompile(`\d{4}`)
	notYearRe    = regexp.MustCompile(`[^\d-]`)
	pronosFileRe = regexp.MustCompile(`pronos-(\w+)-(\d{4}(?:-\d{4})?)-j(\d+)\.json`)
)

// ExtractYear derives the archive year of a season from its display name:
// "Ligue 1 2019 / 2020" is "2019-2020", "Euro 2016" is "2016".
func ExtractYear(name string) string {
	if m := seasonSpanRe.FindStringSubmatch(name); m != nil {
		return m[1] + "-" + m[2]
	}
	if y := singleYearRe.FindString(name); y != "" {
		return y
	}
	y := notYearRe.ReplaceAllString(name, "")
	if len(y) > 9 {
		y = y[:9]
	}
	return y
}

// PronosFile is a predictions export for one matchday.
type PronosFile struct {
	Path    string
	Season  models.Season
	Journee int
}

// ParsePronosFilename reads the season and matchday from a file named
// pronos-{competition}-{year}-j{N}.json.
func ParsePronosFilename(name string) (models.Season, int, bool) {
	m := pronosFileRe.FindStringSubmatch(name)
	if m == nil {
		return models.Season{}, 0, false
	}
	j, err := strconv.Atoi(m[3])
	if err != nil {
		return models.Season{}, 0, false
	}
	return models.Season{Competition: m[1], Year: m[2]}, j, true
}

func (a *API) GetSeasons() ([]models.SeasonInfo, error) {
	var rows []models.SeasonRow
	if err := a.client.ReadTable(a.client.Path(SeasonsFile), SeasonsTable, &rows); err != nil {
		return nil, fmt.Errorf("fetching seasons: %w", err)
	}

	seasons := make([]models.SeasonInfo, len(rows))
	for i, r := range rows {
		seasons[i] = models.SeasonInfo{
			ID:          r.ID,
			Name:        r.Name,
			Competition: r.Competition,
			Year:        ExtractYear(r.Name),
		}
	}
	return seasons, nil
}

func (a *API) GetUsers() ([]models.User, error) {
	var rows []models.UserRow
	if err := a.client.ReadTable(a.client.Path(UsersFile), UsersTable, &rows); err != nil {
		return nil, fmt.Errorf("fetching users: %w", err)
	}

	users := make([]models.User, 0, len(rows))
	for _, r := range rows {
		id, err := strconv.Atoi(r.ID)
		if err != nil {
			return nil, fmt.Errorf("parsing user id %q: %w", r.ID, err)
		}
		users = append(users, models.User{
			ID:         id,
			Username:   r.Username,
			JoinDate:   nonEmpty(r.RegisterDate),
			LastActive: nonEmpty(r.LastVisitDate),
		})
	}
	slices.SortFunc(users, func(x, y models.User) int { return cmp.Compare(x.ID, y.ID) })
	return users, nil
}

// GetTeams maps team ids to team names.
func (a *API) GetTeams() (map[string]string, error) {
	var rows []models.TeamRow
	if err := a.client.ReadTable(a.client.Path(TeamsFile), TeamsTable, &rows); err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}

	teams := make(map[string]string, len(rows))
	for _, r := range rows {
		teams[r.ID] = r.TeamName
	}
	return teams, nil
}

// GetScoringTables loads the exact-score and bonus tables of every season.
func (a *API) GetScoringTables() (scoring.Tables, error) {
	var scores []models.ScoreRow
	if err := a.client.ReadTable(a.client.Path(ScoresFile), ScoresTable, &scores); err != nil {
		return nil, fmt.Errorf("fetching exact-score table: %w", err)
	}
	var bonuses []models.BonusRow
	if err := a.client.ReadTable(a.client.Path(BonusFile), BonusTable, &bonuses); err != nil {
		return nil, fmt.Errorf("fetching bonus table: %w", err)
	}

	tables := make(scoring.Tables)
	table := func(seasonID string) scoring.Table {
		t, ok := tables[seasonID]
		if !ok {
			t = scoring.Table{ExactScore: make(map[int]int), Bonus: make(map[int]int)}
			tables[seasonID] = t
		}
		return t
	}
	for _, r := range scores {
		goals, points, err := pair(r.TotalGoals, r.Points)
		if err != nil {
			return nil, fmt.Errorf("parsing exact-score row of season %s: %w", r.SeasonID, err)
		}
		table(r.SeasonID).ExactScore[goals] = points
	}
	for _, r := range bonuses {
		count, points, err := pair(r.CorrectCount, r.Points)
		if err != nil {
			return nil, fmt.Errorf("parsing bonus row of season %s: %w", r.SeasonID, err)
		}
		table(r.SeasonID).Bonus[count] = points
	}
	return tables, nil
}

// MatchFiles lists the match exports, sorted by name.
func (a *API) MatchFiles() ([]string, error) {
	return a.client.Glob("", matchesPattern)
}

func (a *API) GetGames(path string) ([]models.GameRow, error) {
	var rows []models.GameRow
	if err := a.client.ReadTable(path, GamesTable, &rows); err != nil {
		return nil, fmt.Errorf("fetching games: %w", err)
	}
	return rows, nil
}

// ToMatch converts a game row, naming teams through teams and falling back to
// "Team <id>". Scores are kept only for completed games.
func ToMatch(r models.GameRow, teams map[string]string) (models.Match, error) {
	id, err := strconv.Atoi(r.ID)
	if err != nil {
		return models.Match{}, fmt.Errorf("parsing game id %q: %w", r.ID, err)
	}
	week, err := strconv.Atoi(r.Week)
	if err != nil {
		return models.Match{}, fmt.Errorf("parsing week of game %d: %w", id, err)
	}

	m := models.Match{
		ID:       id,
		Journee:  week,
		Date:     r.MatchStartTime,
		HomeTeam: teamName(teams, r.HomeTeam),
		AwayTeam: teamName(teams, r.AwayTeam),
	}
	if r.GameStatus != "1" {
		return m, nil
	}
	home, errH := parseScore(r.HomeTeamScore)
	away, errA := parseScore(r.AwayTeamScore)
	if errH == nil && errA == nil {
		m.HomeScore, m.AwayScore, m.Completed = &home, &away, true
	}
	return m, nil
}

func teamName(teams map[string]string, id string) string {
	if n := teams[id]; n != "" {
		return n
	}
	return "Team " + id
}

func parseScore(s *string) (int, error) {
	if s == nil {
		return 0, errors.New("no score")
	}
	return strconv.Atoi(strings.TrimSpace(*s))
}

// PredictionFiles lists the prediction exports, skipping files whose names do
// not carry a season and matchday.
func (a *API) PredictionFiles() ([]PronosFile, error) {
	paths, err := a.client.Glob(PredictionsDir, pronosPattern)
	if err != nil {
		return nil, err
	}
	files := make([]PronosFile, 0, len(paths))
	for _, p := range paths {
		season, j, ok := ParsePronosFilename(filepath.Base(p))
		if !ok {
			continue
		}
		files = append(files, PronosFile{Path: p, Season: season, Journee: j})
	}
	return files, nil
}

// GetPredictions decodes a pronostics export. Rows with a missing or
// non-numeric field are dropped with a malformed warning.
func (a *API) GetPredictions(path string) ([]models.Prediction, []scoring.Warning, error) {
	var rows []models.PredictionRow
	if err := a.client.ReadTable(path, PredictionTable, &rows); err != nil {
		return nil, nil, fmt.Errorf("fetching predictions: %w", err)
	}

	preds := make([]models.Prediction, 0, len(rows))
	var warnings []scoring.Warning
	for i, r := range rows {
		var p models.Prediction
		var err error
		p.UserID, p.MatchID, err = pair(r.UserID, r.GameID)
		if err == nil {
			p.Home, p.Away, err = pair(r.HomeScorePrediction, r.AwayScorePrediction)
		}
		if err != nil {
			user, _ := strconv.Atoi(strings.TrimSpace(r.UserID))
			match, _ := strconv.Atoi(strings.TrimSpace(r.GameID))
			warnings = append(warnings, scoring.Warning{Kind: scoring.WarnMalformed, Row: i, UserID: user, MatchID: match})
			continue
		}
		preds = append(preds, p)
	}
	return preds, warnings, nil
}

func pair(a, b string) (int, int, error) {
	x, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
