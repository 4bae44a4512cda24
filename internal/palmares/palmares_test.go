package palmares

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/omarshaarawi/pronos/internal/models"
	"github.com/omarshaarawi/pronos/internal/standings"
)

var generated = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func ranked(entries ...models.SeasonRankingEntry) *models.SeasonRanking {
	standings.SortRanking(entries)
	return &models.SeasonRanking{TotalRanked: len(entries), Ranking: entries}
}

func player(id int, name string, points, preds, correct int) models.SeasonRankingEntry {
	return models.SeasonRankingEntry{
		UserID:         id,
		Username:       name,
		Points:         points,
		Predictions:    preds,
		Correct1N2:     correct,
		Participations: preds / 10,
	}
}

func season(comp, year string) models.Season {
	return models.Season{Competition: comp, Year: year}
}

func TestWinners(t *testing.T) {
	r := ranked(player(1, "alice", 50, 10, 5), player(2, "bob", 50, 10, 5), player(3, "carol", 40, 10, 5))
	w := Winners(r)
	if len(w) != 2 || w[0].UserID != 1 || w[1].UserID != 2 {
		t.Errorf("Winners = %+v, want alice and bob", w)
	}
	if Winners(nil) != nil || Winners(&models.SeasonRanking{}) != nil {
		t.Error("Winners of an empty ranking should be nil")
	}
}

func TestPalmaresTieAtTop(t *testing.T) {
	results := []SeasonResult{
		{Season: season("top14", "2015-2016"), Ranking: ranked(player(2, "bob", 80, 100, 50), player(3, "carol", 70, 90, 40))},
		{Season: season("ligue1", "2020-2021"), Ranking: ranked(player(1, "alice", 120, 300, 150), player(2, "bob", 120, 310, 140), player(3, "carol", 90, 200, 100))},
		{Season: season("ligue1", "2019-2020"), Ranking: ranked(player(3, "carol", 60, 100, 50))},
		{Season: season("ldc", "2020-2021"), Ranking: &models.SeasonRanking{}},
	}
	p := Palmares(results, generated)

	if p.TotalWinners != 3 {
		t.Fatalf("TotalWinners = %d, want 3", p.TotalWinners)
	}
	bob := p.Palmares[0]
	if bob.UserID != 2 || bob.TotalVictories != 2 {
		t.Fatalf("first = %+v, want bob with 2 titles", bob)
	}
	if bob.Victories[0].Competition != "ligue1" || bob.Victories[0].Season != "2020-2021" || bob.Victories[1].Competition != "top14" {
		t.Errorf("bob victories = %+v, want ligue1 before top14", bob.Victories)
	}
	if bob.Victories[0].Points != 120 || bob.Victories[0].Predictions != 310 {
		t.Errorf("bob ligue1 victory = %+v", bob.Victories[0])
	}
	if p.Palmares[1].UserID != 1 || p.Palmares[1].TotalVictories != 1 {
		t.Errorf("second = %+v, want alice with 1 title", p.Palmares[1])
	}
	if p.Palmares[2].UserID != 3 || p.Palmares[2].Victories[0].Season != "2019-2020" {
		t.Errorf("third = %+v, want carol for 2019-2020", p.Palmares[2])
	}
}

func md(journee int, date string, rows ...models.MatchdayStanding) *models.MatchdayFile {
	f := &models.MatchdayFile{Journee: journee, Date: date, MatchCount: 2}
	for i := range rows {
		f.PredictionCount += rows[i].PredictionCount
	}
	f.Standings = rows
	return f
}

func st(rank, user int, name string) models.MatchdayStanding {
	return models.MatchdayStanding{Rank: rank, UserID: user, Username: name, PredictionCount: 2}
}

func TestJourneeLeaders(t *testing.T) {
	results := []SeasonResult{
		{Season: season("ligue1", "2020-2021"), Matchdays: []*models.MatchdayFile{
			md(1, "2020-08-22", st(1, 1, "alice"), st(1, 2, "bob"), st(3, 3, "carol"), st(4, 4, "dave")),
			md(2, "2020-08-29", st(1, 3, "carol"), st(2, 1, "alice"), st(3, 2, "bob"), st(3, 4, "dave")),
			md(3, "2020-09-05"),
		}},
		{Season: season("top14", "2015-2016"), Matchdays: []*models.MatchdayFile{
			md(1, "2015-08-21", st(1, 4, "dave"), st(2, 3, "carol"), st(3, 1, "alice"), st(4, 2, "bob")),
		}},
	}
	s := JourneeLeaders(results, generated)

	if s.TotalMatchdays != 3 {
		t.Errorf("TotalMatchdays = %d, want 3 (empty matchdays are not counted)", s.TotalMatchdays)
	}
	if s.TotalPlayers != 4 {
		t.Fatalf("TotalPlayers = %d, want 4", s.TotalPlayers)
	}

	byID := make(map[int]models.JourneeLeader)
	for _, l := range s.Stats {
		byID[l.UserID] = l
	}
	alice := byID[1]
	if alice.TotalWins != 1 || alice.TotalPodiums != 3 {
		t.Errorf("alice = %d wins %d podiums, want 1 and 3", alice.TotalWins, alice.TotalPodiums)
	}
	if got := alice.ByCompetition["top14"]; got.Wins != 0 || got.Podiums != 1 {
		t.Errorf("alice top14 = %+v", got)
	}
	if len(alice.ByCompetition) != len(models.Competitions) {
		t.Errorf("ByCompetition has %d keys, want every competition", len(alice.ByCompetition))
	}
	if dave := byID[4]; dave.TotalWins != 1 || dave.TotalPodiums != 2 {
		t.Errorf("dave = %d wins %d podiums, want 1 and 2", dave.TotalWins, dave.TotalPodiums)
	}

	// carol 1 win 3 podiums, alice 1 win 3 podiums, bob 1 win 2, dave 1 win 2
	order := []int{1, 3, 2, 4}
	for i, id := range order {
		if s.Stats[i].UserID != id {
			t.Errorf("Stats[%d] = user %d, want %d", i, s.Stats[i].UserID, id)
		}
	}
}

func TestCareer(t *testing.T) {
	join := "2012-08-01 10:00:00"
	results := []SeasonResult{
		{Season: season("top14", "2015-2016"), Ranking: ranked(player(1, "alice", 150, 100, 60))},
		{Season: season("ligue1", "2020-2021"), Ranking: ranked(player(1, "alice", 150, 300, 140), player(2, "bob", 0, 0, 0))},
		{Season: season("ligue1", "2019-2020"), Ranking: ranked(player(1, "alice", 100, 200, 90))},
	}
	profiles := map[int]Profile{1: {Username: "Alice", JoinDate: &join}}
	f := Career(results, profiles, generated)

	if f.TotalUsers != 2 || f.Users[0].ID != 1 || f.Users[1].ID != 2 {
		t.Fatalf("users = %+v", f.Users)
	}
	alice := f.Users[0]
	if alice.Username != "Alice" || alice.JoinDate == nil || *alice.JoinDate != join || alice.LastActive != nil {
		t.Errorf("alice profile = %q %v %v", alice.Username, alice.JoinDate, alice.LastActive)
	}
	cs := alice.CareerStats
	if alice.TotalParticipations != 3 || cs.TotalPoints != 400 || cs.TotalPronostics != 600 || cs.TotalCorrects != 290 {
		t.Errorf("alice totals = %+v", cs)
	}
	if cs.GlobalSuccessRate != 48.3 {
		t.Errorf("GlobalSuccessRate = %v, want 48.3", cs.GlobalSuccessRate)
	}
	if cs.TotalMatchdaysPlayed != 60 {
		t.Errorf("TotalMatchdaysPlayed = %d, want 60", cs.TotalMatchdaysPlayed)
	}
	// ligue1 2020-2021 comes first in competition order and holds the 150 tie
	want := models.BestSeason{Points: 150, Competition: "Ligue 1", Year: "2020-2021"}
	if cs.BestSeason != want {
		t.Errorf("BestSeason = %+v, want %+v", cs.BestSeason, want)
	}
	if alice.Seasons[0].Season != "2019-2020" || alice.Seasons[2].Competition != "top14" {
		t.Errorf("seasons order = %+v", alice.Seasons)
	}

	bob := f.Users[1]
	if bob.CareerStats.GlobalSuccessRate != 0 || bob.CareerStats.BestSeason != (models.BestSeason{}) {
		t.Errorf("bob = %+v, want zero rate and no best season", bob.CareerStats)
	}
	if bob.Username != "bob" {
		t.Errorf("bob username = %q, want ranking name when no profile", bob.Username)
	}
}

func TestSeasonIndex(t *testing.T) {
	comp, _ := models.CompetitionByCode("ligue1")
	results := []SeasonResult{
		{
			Season: season("ligue1", "2024-2025"), SeasonID: "40", Name: "Ligue 1 2024 / 2025",
			Ranking: ranked(player(1, "alice", 20, 4, 2), player(2, "bob", 20, 4, 2)),
			Matchdays: []*models.MatchdayFile{
				md(2, "2024-11-09", st(1, 2, "bob"), st(2, 1, "alice")),
				md(1, "2024-08-17", st(1, 1, "alice")),
			},
		},
		{
			Season: season("ligue1", "2023-2024"), SeasonID: "35", Name: "Ligue 1 2023 / 2024",
			Ranking:   ranked(player(3, "carol", 90, 10, 5)),
			Matchdays: []*models.MatchdayFile{md(1, "2023-08-12", st(1, 3, "carol")), md(34, "2024-05-19", st(1, 3, "carol"))},
		},
		{Season: season("ligue1", "2025-2026"), SeasonID: "44", Name: "Ligue 1 2025 / 2026"},
		{Season: season("top14", "2024-2025"), SeasonID: "41"},
	}
	ref := time.Date(2024, 11, 3, 15, 0, 0, 0, time.UTC)
	idx := SeasonIndex(comp, results, ref, generated)

	if idx.Competition != "ligue1" || idx.Name != "Ligue 1" || idx.TotalSeasons != 3 {
		t.Fatalf("index = %s %s %d", idx.Competition, idx.Name, idx.TotalSeasons)
	}
	old, cur, next := idx.Seasons[0], idx.Seasons[1], idx.Seasons[2]
	if old.Year != "2023-2024" || old.Status != StatusFinished || old.StartDate != "2023-08-12" || old.EndDate != "2024-05-19" {
		t.Errorf("2023-2024 = %+v", old)
	}
	if cur.Status != StatusOngoing || cur.StartDate != "2024-08-17" || cur.EndDate != "2024-11-09" {
		t.Errorf("2024-2025 = %+v", cur)
	}
	if cur.TotalMatches != 4 || cur.TotalPronostics != 6 || cur.ActiveUsers != 2 {
		t.Errorf("2024-2025 counts = %d matches %d pronostics %d users", cur.TotalMatches, cur.TotalPronostics, cur.ActiveUsers)
	}
	if len(cur.Winners) != 2 || cur.Winners[0] != "alice" || cur.Winners[1] != "bob" {
		t.Errorf("2024-2025 winners = %v", cur.Winners)
	}
	if next.Status != StatusUpcoming || next.Winners == nil {
		t.Errorf("2025-2026 = %+v, want upcoming with empty winners", next)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		start, end, ref, want string
	}{
		{"2024-08-17", "2025-05-18", "2024-11-03", StatusOngoing},
		{"2024-08-17", "2025-05-18", "2024-08-17", StatusOngoing},
		{"2024-08-17", "2025-05-18", "2025-05-18", StatusOngoing},
		{"2024-08-17", "2025-05-18", "2025-05-19", StatusFinished},
		{"2024-08-17", "2025-05-18", "2024-08-16", StatusUpcoming},
		{"", "", "2024-11-03", StatusUpcoming},
	}
	for _, tt := range tests {
		if got := status(tt.start, tt.end, tt.ref); got != tt.want {
			t.Errorf("status(%q, %q, %q) = %s, want %s", tt.start, tt.end, tt.ref, got, tt.want)
		}
	}
}

func TestBuildersIdempotent(t *testing.T) {
	results := []SeasonResult{
		{Season: season("ligue1", "2020-2021"), Ranking: ranked(player(1, "alice", 120, 300, 150), player(2, "bob", 120, 310, 140)),
			Matchdays: []*models.MatchdayFile{md(1, "2020-08-22", st(1, 1, "alice"), st(1, 2, "bob"))}},
		{Season: season("ldc", "2020-2021"), Ranking: ranked(player(2, "bob", 30, 20, 10), player(3, "carol", 10, 20, 5)),
			Matchdays: []*models.MatchdayFile{md(1, "2020-10-20", st(1, 2, "bob"), st(2, 3, "carol"))}},
	}
	encode := func() []byte {
		var buf bytes.Buffer
		for _, v := range []any{
			Palmares(results, generated),
			JourneeLeaders(results, generated),
			Career(results, nil, generated),
		} {
			b, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			buf.Write(b)
		}
		return buf.Bytes()
	}
	first := encode()
	for i := 0; i < 5; i++ {
		if !bytes.Equal(first, encode()) {
			t.Fatalf("run %d differs from first run", i+2)
		}
	}
}

func TestSeasonIndexUsesEveryMatchDate(t *testing.T) {
	comp, _ := models.CompetitionByCode("ligue1")
	last := md(38, "2025-05-17", st(1, 1, "alice"))
	last.Matches = []models.MatchdayMatch{
		{Match: models.Match{ID: 10, Date: "2025-05-17 21:00:00"}},
		{Match: models.Match{ID: 11, Date: "2025-05-18 17:00:00"}},
		{Match: models.Match{ID: 12, Date: "2025-05-16 20:45:00"}},
	}
	results := []SeasonResult{{
		Season:    season("ligue1", "2024-2025"),
		Ranking:   ranked(player(1, "alice", 20, 4, 2)),
		Matchdays: []*models.MatchdayFile{last, md(1, "2024-08-17", st(1, 1, "alice"))},
	}}

	idx := SeasonIndex(comp, results, time.Date(2025, 5, 18, 9, 0, 0, 0, time.UTC), generated)
	s := idx.Seasons[0]
	if s.StartDate != "2024-08-17" || s.EndDate != "2025-05-18" {
		t.Errorf("dates = %s..%s, want 2024-08-17..2025-05-18", s.StartDate, s.EndDate)
	}
	if s.Status != StatusOngoing {
		t.Errorf("status = %s, want ongoing on the day of the last fixture", s.Status)
	}
}
