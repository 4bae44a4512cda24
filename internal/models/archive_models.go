package models

import "time"

// Match is a fixture as published in matches-all.json. Scores are nil until
// the match is completed.
type Match struct {
	ID        int    `json:"id"`
	Journee   int    `json:"journee"`
	Date      string `json:"date"`
	HomeTeam  string `json:"team1"`
	AwayTeam  string `json:"team2"`
	HomeScore *int   `json:"score1"`
	AwayScore *int   `json:"score2"`
	Completed bool   `json:"completed"`
}

type MatchesFile struct {
	Season         string  `json:"season"`
	SeasonID       string  `json:"seasonId"`
	SeasonName     string  `json:"seasonName"`
	TotalMatches   int     `json:"totalMatches"`
	TotalMatchdays int     `json:"totalMatchdays"`
	Matches        []Match `json:"matches"`
}

// Prediction is one user's predicted score for one match.
type Prediction struct {
	UserID  int
	MatchID int
	Home    int
	Away    int
}

type PredictionRecord struct {
	UserID          int    `json:"userId"`
	Username        string `json:"username"`
	PredictedScore1 int    `json:"predictedScore1"`
	PredictedScore2 int    `json:"predictedScore2"`
	PointsAwarded   int    `json:"pointsAwarded"`
	Correct1N2      int    `json:"correct1N2"`
	ExactScore      int    `json:"exactScore"`
}

type MatchdayMatch struct {
	Match
	Predictions []PredictionRecord `json:"predictions"`
}

type MatchdayStanding struct {
	Rank            int    `json:"rank"`
	UserID          int    `json:"userId"`
	Username        string `json:"username"`
	MatchdayPoints  int    `json:"matchdayPoints"`
	Correct1N2Count int    `json:"correct1N2Count"`
	ExactScoreCount int    `json:"exactScoreCount"`
	PredictionCount int    `json:"predictionCount"`
	Bonus           int    `json:"bonus"`
}

// MatchdayFile is the journees/NN.json document.
type MatchdayFile struct {
	Season          string             `json:"season"`
	Journee         int                `json:"journee"`
	Date            string             `json:"date,omitempty"`
	MatchCount      int                `json:"matchCount"`
	PredictionCount int                `json:"predictionCount"`
	Matches         []MatchdayMatch    `json:"matches"`
	Standings       []MatchdayStanding `json:"standings"`
}

type SeasonRankingEntry struct {
	Rank                int     `json:"rank"`
	UserID              int     `json:"userId"`
	Username            string  `json:"username"`
	Points              int     `json:"points"`
	Predictions         int     `json:"predictions"`
	Correct1N2          int     `json:"correct1N2"`
	Avg1N2PerMatchday   float64 `json:"avg1N2PerMatchday"`
	ExactScores         int     `json:"exactScores"`
	ExactScoreRate      float64 `json:"exactScoreRate"`
	Participations      int     `json:"participations"`
	BestMatchday        int     `json:"bestMatchday"`
	BestMatchdayPoints  int     `json:"bestMatchdayPoints"`
	WorstMatchday       int     `json:"worstMatchday"`
	WorstMatchdayPoints int     `json:"worstMatchdayPoints"`
}

// SeasonRanking is the standings-general.json document.
type SeasonRanking struct {
	Season      string               `json:"season"`
	GeneratedAt time.Time            `json:"generatedAt"`
	TotalRanked int                  `json:"totalRanked"`
	Ranking     []SeasonRankingEntry `json:"ranking"`
}

type HistoryStanding struct {
	Rank       int    `json:"rank"`
	UserID     int    `json:"userId"`
	Username   string `json:"username"`
	Points     int    `json:"points"`
	Correct1N2 int    `json:"correct1N2"`
}

type HistoryEntry struct {
	Matchday  int               `json:"matchday"`
	Standings []HistoryStanding `json:"standings"`
}

type UserCount struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
	Count    int    `json:"count"`
}

type UserClimb struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
	Climb    int    `json:"climb"`
}

type UserConsistency struct {
	UserID   int     `json:"userId"`
	Username string  `json:"username"`
	StdDev   float64 `json:"stdDev"`
}

type SeasonHighlights struct {
	MostLeadMatchdays *UserCount       `json:"mostLeadMatchdays,omitempty"`
	BiggestClimber    *UserClimb       `json:"biggestClimber,omitempty"`
	MostConsistent    *UserConsistency `json:"mostConsistent,omitempty"`
}

// SeasonHistory is the standings-history.json document.
type SeasonHistory struct {
	Season         string            `json:"season"`
	GeneratedAt    time.Time         `json:"generatedAt"`
	TotalMatchdays int               `json:"totalMatchdays"`
	History        []HistoryEntry    `json:"history"`
	Highlights     *SeasonHighlights `json:"highlights,omitempty"`
}

type Victory struct {
	Competition string `json:"competition"`
	Season      string `json:"season"`
	Points      int    `json:"points"`
	Predictions int    `json:"predictions"`
}

type PalmaresEntry struct {
	UserID         int       `json:"userId"`
	Username       string    `json:"username"`
	Victories      []Victory `json:"victories"`
	TotalVictories int       `json:"totalVictories"`
}

// Palmares is the metadata/palmares.json document.
type Palmares struct {
	Generated    time.Time       `json:"generated"`
	TotalWinners int             `json:"totalWinners"`
	Palmares     []PalmaresEntry `json:"palmares"`
}

type LeaderCounts struct {
	Wins    int `json:"wins"`
	Podiums int `json:"podiums"`
}

type JourneeLeader struct {
	UserID        int                     `json:"userId"`
	Username      string                  `json:"username"`
	ByCompetition map[string]LeaderCounts `json:"byCompetition"`
	TotalWins     int                     `json:"totalWins"`
	TotalPodiums  int                     `json:"totalPodiums"`
}

// JourneeStats is the metadata/journee-stats.json document.
type JourneeStats struct {
	Generated      time.Time       `json:"generated"`
	TotalMatchdays int             `json:"totalMatchdays"`
	TotalPlayers   int             `json:"totalPlayers"`
	Stats          []JourneeLeader `json:"stats"`
}

type BestSeason struct {
	Points      int    `json:"points"`
	Competition string `json:"competition"`
	Year        string `json:"year"`
}

type SeasonParticipation struct {
	Competition string `json:"competition"`
	Season      string `json:"season"`
	Rank        int    `json:"rank"`
	Points      int    `json:"points"`
	Pronostics  int    `json:"pronostics"`
	Corrects    int    `json:"corrects"`
}

type CareerStats struct {
	TotalPoints          int        `json:"totalPoints"`
	TotalPronostics      int        `json:"totalPronostics"`
	TotalCorrects        int        `json:"totalCorrects"`
	GlobalSuccessRate    float64    `json:"globalSuccessRate"`
	TotalMatchdaysPlayed int        `json:"totalMatchdaysPlayed"`
	BestSeason           BestSeason `json:"bestSeason"`
}

type UserCareer struct {
	ID                  int                   `json:"id"`
	Username            string                `json:"username"`
	JoinDate            *string               `json:"joinDate"`
	LastActive          *string               `json:"lastActive"`
	TotalParticipations int                   `json:"totalParticipations"`
	CareerStats         CareerStats           `json:"careerStats"`
	Seasons             []SeasonParticipation `json:"seasons"`
}

// UsersFile is the metadata/users.json document.
type UsersFile struct {
	Generated  time.Time    `json:"generated"`
	TotalUsers int          `json:"totalUsers"`
	Users      []UserCareer `json:"users"`
}

type SeasonSummary struct {
	Year            string   `json:"year"`
	SeasonID        string   `json:"seasonId"`
	Name            string   `json:"name"`
	TotalMatches    int      `json:"totalMatches"`
	TotalPronostics int      `json:"totalPronostics"`
	ActiveUsers     int      `json:"activeUsers"`
	StartDate       string   `json:"startDate,omitempty"`
	EndDate         string   `json:"endDate,omitempty"`
	Status          string   `json:"status"`
	Winners         []string `json:"winners"`
}

// SeasonsIndex is the {competition}/seasons-index.json document.
type SeasonsIndex struct {
	Competition  string          `json:"competition"`
	Name         string          `json:"name"`
	Generated    time.Time       `json:"generated"`
	TotalSeasons int             `json:"totalSeasons"`
	Seasons      []SeasonSummary `json:"seasons"`
}
