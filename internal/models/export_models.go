package models

import "encoding/json"

// ExportItem is one element of a PHPMyAdmin JSON export. Only elements with
// Type "table" carry rows.
type ExportItem struct {
	Type string          `json:"type"`
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

type SeasonRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Competition string `json:"competition"`
}

type UserRow struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	RegisterDate  *string `json:"registerDate"`
	LastVisitDate *string `json:"lastvisitDate"`
}

type ScoreRow struct {
	SeasonID   string `json:"projet_id"`
	TotalGoals string `json:"nbbuts"`
	Points     string `json:"nbpoints"`
}

type BonusRow struct {
	SeasonID     string `json:"projet_id"`
	CorrectCount string `json:"nbmatchs"`
	Points       string `json:"nbpoints"`
}

type TeamRow struct {
	ID       string `json:"id"`
	TeamName string `json:"team_name"`
}

type GameRow struct {
	ID             string  `json:"id"`
	SeasonID       string  `json:"season_id"`
	Week           string  `json:"week"`
	MatchStartTime string  `json:"match_start_time"`
	HomeTeam       string  `json:"home_team"`
	AwayTeam       string  `json:"away_team"`
	HomeTeamScore  *string `json:"home_team_score"`
	AwayTeamScore  *string `json:"away_team_score"`
	GameStatus     string  `json:"game_status"`
}

type PredictionRow struct {
	UserID              string `json:"user_id"`
	GameID              string `json:"game_id"`
	HomeScorePrediction string `json:"home_score_prediction"`
	AwayScorePrediction string `json:"away_score_prediction"`
}

// SeasonInfo is a season row resolved to its archive year.
type SeasonInfo struct {
	ID          string
	Name        string
	Competition string
	Year        string
}

func (s SeasonInfo) Season() Season {
	return Season{Competition: s.Competition, Year: s.Year}
}

// User is an account from the users export.
type User struct {
	ID         int
	Username   string
	JoinDate   *string
	LastActive *string
}
