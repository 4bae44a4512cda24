package models

import (
	"fmt"
	"path"
	"strings"
)

// Competition is a prediction competition and the archive directory it is
// published under.
type Competition struct {
	Code string
	Dir  string
	Name string
}

// Competitions lists every known competition in processing order.
var Competitions = []Competition{
	{Code: "ligue1", Dir: "ligue-1", Name: "Ligue 1"},
	{Code: "ldc", Dir: "ligue-champions", Name: "Ligue des Champions"},
	{Code: "ligaeuropa", Dir: "liga-europa", Name: "Liga Europa"},
	{Code: "top14", Dir: "top-14", Name: "TOP 14"},
	{Code: "international", Dir: "international", Name: "International"},
}

func CompetitionByCode(code string) (Competition, bool) {
	for _, c := range Competitions {
		if c.Code == code {
			return c, true
		}
	}
	return Competition{}, false
}

func CompetitionByDir(dir string) (Competition, bool) {
	for _, c := range Competitions {
		if c.Dir == dir {
			return c, true
		}
	}
	return Competition{}, false
}

// Season identifies one competition-season of the archive, e.g. ligue1 2019-2020.
type Season struct {
	Competition string
	Year        string
}

// Key is the season discriminator written into archive documents ("ligue1-2019-2020").
func (s Season) Key() string {
	return s.Competition + "-" + s.Year
}

// Dir is the season directory relative to the archive root ("ligue-1/2019-2020").
func (s Season) Dir() string {
	comp, ok := CompetitionByCode(s.Competition)
	if !ok {
		return path.Join(s.Competition, s.Year)
	}
	return path.Join(comp.Dir, s.Year)
}

func (s Season) String() string {
	return s.Key()
}

// ParseSeasonKey splits "ligue1-2019-2020" into its competition and year.
func ParseSeasonKey(key string) (Season, error) {
	comp, year, ok := strings.Cut(strings.TrimSpace(key), "-")
	if !ok || comp == "" || year == "" {
		return Season{}, fmt.Errorf("invalid season key %q", key)
	}
	if _, known := CompetitionByCode(comp); !known {
		return Season{}, fmt.Errorf("unknown competition %q", comp)
	}
	return Season{Competition: comp, Year: year}, nil
}
