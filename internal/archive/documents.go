package archive

import (
	"errors"
	"fmt"
	"os"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/omarshaarawi/pronos/internal/models"
)

const metadataDir = "metadata"

func MatchesPath(s models.Season) string {
	return path.Join(s.Dir(), "matches-all.json")
}

func MatchdaysDir(s models.Season) string {
	return path.Join(s.Dir(), "journees")
}

func MatchdayPath(s models.Season, journee int) string {
	return path.Join(MatchdaysDir(s), fmt.Sprintf("%02d.json", journee))
}

func RankingPath(s models.Season) string {
	return path.Join(s.Dir(), "standings-general.json")
}

func HistoryPath(s models.Season) string {
	return path.Join(s.Dir(), "standings-history.json")
}

func SeasonsIndexPath(c models.Competition) string {
	return path.Join(c.Dir, "seasons-index.json")
}

func PalmaresPath() string     { return path.Join(metadataDir, "palmares.json") }
func JourneeStatsPath() string { return path.Join(metadataDir, "journee-stats.json") }
func UsersPath() string        { return path.Join(metadataDir, "users.json") }

// Seasons lists the season directories of a competition, sorted by year.
func (s *Store) Seasons(c models.Competition) ([]models.Season, error) {
	entries, err := os.ReadDir(s.Path(c.Dir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing seasons of %s: %w", c.Code, err)
	}

	var seasons []models.Season
	for _, e := range entries {
		if e.IsDir() {
			seasons = append(seasons, models.Season{Competition: c.Code, Year: e.Name()})
		}
	}
	return seasons, nil
}

// Matchdays lists the archived matchday numbers of a season in order.
func (s *Store) Matchdays(season models.Season) ([]int, error) {
	entries, err := os.ReadDir(s.Path(MatchdaysDir(season)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing matchdays of %s: %w", season, err)
	}

	var out []int
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() {
			continue
		}
		if n, err := strconv.Atoi(name); err == nil {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (s *Store) LoadMatches(season models.Season) (*models.MatchesFile, error) {
	var f models.MatchesFile
	if err := s.ReadJSON(MatchesPath(season), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) LoadMatchday(season models.Season, journee int) (*models.MatchdayFile, error) {
	var f models.MatchdayFile
	if err := s.ReadJSON(MatchdayPath(season, journee), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadMatchdays reads every archived matchday of a season in order.
func (s *Store) LoadMatchdays(season models.Season) ([]*models.MatchdayFile, error) {
	nums, err := s.Matchdays(season)
	if err != nil {
		return nil, err
	}
	out := make([]*models.MatchdayFile, 0, len(nums))
	for _, n := range nums {
		md, err := s.LoadMatchday(season, n)
		if err != nil {
			return nil, err
		}
		out = append(out, md)
	}
	return out, nil
}

func (s *Store) LoadRanking(season models.Season) (*models.SeasonRanking, error) {
	var r models.SeasonRanking
	if err := s.ReadJSON(RankingPath(season), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) LoadHistory(season models.Season) (*models.SeasonHistory, error) {
	var h models.SeasonHistory
	if err := s.ReadJSON(HistoryPath(season), &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *Store) LoadSeasonsIndex(c models.Competition) (*models.SeasonsIndex, error) {
	var idx models.SeasonsIndex
	if err := s.ReadJSON(SeasonsIndexPath(c), &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

func (s *Store) LoadPalmares() (*models.Palmares, error) {
	var p models.Palmares
	if err := s.ReadJSON(PalmaresPath(), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) LoadJourneeStats() (*models.JourneeStats, error) {
	var js models.JourneeStats
	if err := s.ReadJSON(JourneeStatsPath(), &js); err != nil {
		return nil, err
	}
	return &js, nil
}

func (s *Store) LoadUsers() (*models.UsersFile, error) {
	var u models.UsersFile
	if err := s.ReadJSON(UsersPath(), &u); err != nil {
		return nil, err
	}
	return &u, nil
}
