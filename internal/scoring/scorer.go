package scoring

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/omarshaarawi/pronos/internal/models"
	"github.com/omarshaarawi/pronos/internal/ranking"
)

// UnscoredMatchError reports a match that has no final score yet.
type UnscoredMatchError struct {
	MatchID int
	Journee int
}

func (e *UnscoredMatchError) Error() string {
	return fmt.Sprintf("match %d of matchday %d has no final score", e.MatchID, e.Journee)
}

const (
	WarnUnknownMatch = "unknown_match"
	WarnUnknownUser  = "unknown_user"
	WarnDuplicate    = "duplicate_prediction"
	WarnMalformed    = "malformed_prediction"
)

// Warning is a dropped input record. Warnings never stop scoring.
type Warning struct {
	Kind    string
	MatchID int
	UserID  int
	// Row is the index of the export row, set for malformed predictions.
	Row int
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnUnknownMatch:
		return fmt.Sprintf("prediction of user %d references unknown match %d", w.UserID, w.MatchID)
	case WarnUnknownUser:
		return fmt.Sprintf("prediction for match %d references unknown user %d", w.MatchID, w.UserID)
	case WarnDuplicate:
		return fmt.Sprintf("duplicate prediction of user %d for match %d", w.UserID, w.MatchID)
	case WarnMalformed:
		return fmt.Sprintf("prediction row %d is malformed (user %d, match %d)", w.Row, w.UserID, w.MatchID)
	default:
		return fmt.Sprintf("%s: user %d match %d", w.Kind, w.UserID, w.MatchID)
	}
}

// Result is the scoring of one prediction against its match.
type Result struct {
	Actual     Outcome
	Predicted  Outcome
	Correct1N2 bool
	ExactScore bool
	Points     int
}

// Score awards points to one prediction under the given rule.
func Score(rule Rule, table Table, match models.Match, pred models.Prediction) (Result, error) {
	if !match.Completed || match.HomeScore == nil || match.AwayScore == nil {
		return Result{}, &UnscoredMatchError{MatchID: match.ID, Journee: match.Journee}
	}
	home, away := *match.HomeScore, *match.AwayScore

	res := Result{
		Actual:     OutcomeOf(home, away),
		Predicted:  OutcomeOf(pred.Home, pred.Away),
		ExactScore: pred.Home == home && pred.Away == away,
	}
	res.Correct1N2 = res.Actual == res.Predicted

	switch rule {
	case RugbyBandsV1, RugbyBandsV2:
		switch {
		case res.ExactScore:
			res.Points = bandExactPoints
		case !res.Correct1N2:
			res.Points = 0
		case rule.band(abs(home-away)) == rule.band(abs(pred.Home-pred.Away)):
			res.Points = bandMarginPoints
		}
	default:
		if res.ExactScore {
			res.Points = table.ExactPoints(home + away)
		}
	}
	return res, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// MatchdayInput is everything needed to score one matchday.
type MatchdayInput struct {
	Season      models.Season
	Rule        Rule
	Table       Table
	Journee     int
	Matches     []models.Match
	Predictions []models.Prediction
	// Usernames resolves user ids. When non-empty, predictions from users it
	// does not know are dropped.
	Usernames map[int]string
}

// ScoreMatchday scores every prediction of a matchday and ranks its players.
// It fails without partial output if any match has no final score.
func ScoreMatchday(in MatchdayInput) (*models.MatchdayFile, []Warning, error) {
	matches := slices.Clone(in.Matches)
	slices.SortFunc(matches, func(a, b models.Match) int { return cmp.Compare(a.ID, b.ID) })

	known := make(map[int]bool, len(matches))
	for _, m := range matches {
		if !m.Completed || m.HomeScore == nil || m.AwayScore == nil {
			return nil, nil, &UnscoredMatchError{MatchID: m.ID, Journee: in.Journee}
		}
		known[m.ID] = true
	}

	var warnings []Warning
	byMatch := make(map[int][]models.Prediction, len(matches))
	seen := make(map[[2]int]bool, len(in.Predictions))
	for _, p := range in.Predictions {
		switch {
		case !known[p.MatchID]:
			warnings = append(warnings, Warning{Kind: WarnUnknownMatch, MatchID: p.MatchID, UserID: p.UserID})
			continue
		case len(in.Usernames) > 0 && in.Usernames[p.UserID] == "":
			warnings = append(warnings, Warning{Kind: WarnUnknownUser, MatchID: p.MatchID, UserID: p.UserID})
			continue
		case seen[[2]int{p.UserID, p.MatchID}]:
			warnings = append(warnings, Warning{Kind: WarnDuplicate, MatchID: p.MatchID, UserID: p.UserID})
			continue
		}
		seen[[2]int{p.UserID, p.MatchID}] = true
		byMatch[p.MatchID] = append(byMatch[p.MatchID], p)
	}

	file := &models.MatchdayFile{
		Season:     in.Season.Key(),
		Journee:    in.Journee,
		MatchCount: len(matches),
		Matches:    make([]models.MatchdayMatch, 0, len(matches)),
	}
	for _, m := range matches {
		day, _, _ := strings.Cut(m.Date, " ")
		if day != "" && (file.Date == "" || day < file.Date) {
			file.Date = day
		}
	}

	standings := make(map[int]*models.MatchdayStanding)
	for _, m := range matches {
		preds := byMatch[m.ID]
		slices.SortFunc(preds, func(a, b models.Prediction) int { return cmp.Compare(a.UserID, b.UserID) })

		mm := models.MatchdayMatch{Match: m, Predictions: make([]models.PredictionRecord, 0, len(preds))}
		for _, p := range preds {
			res, err := Score(in.Rule, in.Table, m, p)
			if err != nil {
				return nil, nil, err
			}
			rec := models.PredictionRecord{
				UserID:          p.UserID,
				Username:        username(in.Usernames, p.UserID),
				PredictedScore1: p.Home,
				PredictedScore2: p.Away,
				PointsAwarded:   res.Points,
				Correct1N2:      flag(res.Correct1N2),
				ExactScore:      flag(res.ExactScore),
			}
			mm.Predictions = append(mm.Predictions, rec)

			st, ok := standings[p.UserID]
			if !ok {
				st = &models.MatchdayStanding{UserID: p.UserID, Username: rec.Username}
				standings[p.UserID] = st
			}
			st.MatchdayPoints += rec.PointsAwarded
			st.Correct1N2Count += rec.Correct1N2
			st.ExactScoreCount += rec.ExactScore
			st.PredictionCount++
		}
		file.PredictionCount += len(mm.Predictions)
		file.Matches = append(file.Matches, mm)
	}

	file.Standings = make([]models.MatchdayStanding, 0, len(standings))
	for _, st := range standings {
		st.Bonus = in.Table.BonusPoints(st.Correct1N2Count)
		st.MatchdayPoints += st.Bonus
		file.Standings = append(file.Standings, *st)
	}
	SortMatchday(file.Standings)

	return file, warnings, nil
}

// SortMatchday orders matchday standings by total points, then correct 1N2
// picks, then user id, and assigns competition ranks.
func SortMatchday(rows []models.MatchdayStanding) {
	slices.SortFunc(rows, func(a, b models.MatchdayStanding) int {
		if c := cmp.Compare(b.MatchdayPoints, a.MatchdayPoints); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Correct1N2Count, a.Correct1N2Count); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	ranking.Assign(rows,
		func(r *models.MatchdayStanding) int { return r.MatchdayPoints },
		func(r *models.MatchdayStanding, rank int) { r.Rank = rank })
}

func username(names map[int]string, id int) string {
	if n := names[id]; n != "" {
		return n
	}
	return fmt.Sprintf("User%d", id)
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
