// Package scoring turns match results and user predictions into point awards
// and matchday standings.
package scoring

// Outcome is the 1N2 symbol of a score line.
type Outcome string

const (
	HomeWin Outcome = "1"
	Draw    Outcome = "X"
	AwayWin Outcome = "2"
)

func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return HomeWin
	case home < away:
		return AwayWin
	default:
		return Draw
	}
}

// Rule is the scoring formula a season is played under.
type Rule int

const (
	// Standard awards exact scores from the season's exact-score table; a
	// correct 1N2 only counts toward the matchday bonus.
	Standard Rule = iota
	// RugbyBandsV1 awards 10 for an exact score, else 5 when the winning
	// margin falls in the same band as the result: 0-7, 8-14, 15-21, >21.
	RugbyBandsV1
	// RugbyBandsV2 is RugbyBandsV1 with bands 0, 1-5, 6-10, 11-15, 16-20, >20.
	RugbyBandsV2
)

const (
	bandExactPoints  = 10
	bandMarginPoints = 5
)

// legacyRules pins the seasons that were played before the rugby competitions
// moved to the standard table. Every other season id is Standard.
var legacyRules = map[string]Rule{
	// TOP 14 2011-2014 and the 2015 rugby world cup
	"13": RugbyBandsV1,
	"19": RugbyBandsV1,
	"24": RugbyBandsV1,
	"30": RugbyBandsV1,
	// TOP 14 2014-2016
	"29": RugbyBandsV2,
	"33": RugbyBandsV2,
}

// RuleFor resolves the scoring rule of a season id.
func RuleFor(seasonID string) Rule {
	if r, ok := legacyRules[seasonID]; ok {
		return r
	}
	return Standard
}

func (r Rule) String() string {
	switch r {
	case Standard:
		return "standard"
	case RugbyBandsV1:
		return "rugby-bands-v1"
	case RugbyBandsV2:
		return "rugby-bands-v2"
	default:
		return "unknown"
	}
}

// band maps an absolute score differential to its margin band index.
func (r Rule) band(diff int) int {
	switch r {
	case RugbyBandsV1:
		switch {
		case diff <= 7:
			return 0
		case diff <= 14:
			return 1
		case diff <= 21:
			return 2
		default:
			return 3
		}
	case RugbyBandsV2:
		switch {
		case diff == 0:
			return 0
		case diff <= 5:
			return 1
		case diff <= 10:
			return 2
		case diff <= 15:
			return 3
		case diff <= 20:
			return 4
		default:
			return 5
		}
	default:
		return 0
	}
}

// Table holds a season's two sparse lookup tables. A missing key is worth
// zero points.
type Table struct {
	// ExactScore maps total goals in the match to the points of an exact score.
	ExactScore map[int]int
	// Bonus maps the number of correct 1N2 picks in a matchday to bonus points.
	Bonus map[int]int
}

func (t Table) ExactPoints(totalGoals int) int {
	return t.ExactScore[totalGoals]
}

func (t Table) BonusPoints(correct int) int {
	return t.Bonus[correct]
}

// Tables indexes scoring tables by season id.
type Tables map[string]Table

func (t Tables) For(seasonID string) Table {
	return t[seasonID]
}
