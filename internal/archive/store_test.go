package archive

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/omarshaarawi/pronos/internal/models"
)

var ligue1 = models.Season{Competition: "ligue1", Year: "2024-2025"}

func TestPaths(t *testing.T) {
	tests := map[string]string{
		MatchesPath(ligue1):      "ligue-1/2024-2025/matches-all.json",
		MatchdayPath(ligue1, 7):  "ligue-1/2024-2025/journees/07.json",
		MatchdayPath(ligue1, 38): "ligue-1/2024-2025/journees/38.json",
		RankingPath(ligue1):      "ligue-1/2024-2025/standings-general.json",
		HistoryPath(ligue1):      "ligue-1/2024-2025/standings-history.json",
		PalmaresPath():           "metadata/palmares.json",
		JourneeStatsPath():       "metadata/journee-stats.json",
		UsersPath():              "metadata/users.json",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
	}
	comp, _ := models.CompetitionByCode("ldc")
	if got := SeasonsIndexPath(comp); got != "ligue-champions/seasons-index.json" {
		t.Errorf("SeasonsIndexPath = %q", got)
	}
}

func TestWriteJSONFormat(t *testing.T) {
	s := NewStore(t.TempDir())
	doc := map[string]any{"b": 1, "a": []int{1, 2}}
	if err := s.WriteJSON("x/doc.json", doc); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	b, err := os.ReadFile(s.Path("x/doc.json"))
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": 1\n}\n"
	if string(b) != want {
		t.Errorf("document =\n%s\nwant\n%s", b, want)
	}

	entries, _ := os.ReadDir(s.Path("x"))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the document", len(entries))
	}
}

func TestReadJSONNotFound(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.LoadRanking(ligue1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRoundTripMatchdays(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, j := range []int{10, 2, 1} {
		md := &models.MatchdayFile{Season: ligue1.Key(), Journee: j, Matches: []models.MatchdayMatch{}, Standings: []models.MatchdayStanding{}}
		if err := s.WriteJSON(MatchdayPath(ligue1, j), md); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(s.Path(MatchdaysDir(ligue1)+"/notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	nums, err := s.Matchdays(ligue1)
	if err != nil {
		t.Fatalf("Matchdays: %v", err)
	}
	if !reflect.DeepEqual(nums, []int{1, 2, 10}) {
		t.Errorf("Matchdays = %v, want [1 2 10]", nums)
	}

	mds, err := s.LoadMatchdays(ligue1)
	if err != nil {
		t.Fatalf("LoadMatchdays: %v", err)
	}
	if len(mds) != 3 || mds[2].Journee != 10 {
		t.Errorf("LoadMatchdays = %d files, last %d", len(mds), mds[len(mds)-1].Journee)
	}

	none, err := s.Matchdays(models.Season{Competition: "top14", Year: "2010-2011"})
	if err != nil || none != nil {
		t.Errorf("Matchdays of a missing season = %v, %v", none, err)
	}
}

func TestSeasons(t *testing.T) {
	s := NewStore(t.TempDir())
	comp, _ := models.CompetitionByCode("ligue1")
	for _, dir := range []string{"ligue-1/2020-2021", "ligue-1/2019-2020"} {
		if err := os.MkdirAll(s.Path(dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.WriteJSON(SeasonsIndexPath(comp), models.SeasonsIndex{}); err != nil {
		t.Fatal(err)
	}

	seasons, err := s.Seasons(comp)
	if err != nil {
		t.Fatalf("Seasons: %v", err)
	}
	want := []models.Season{{Competition: "ligue1", Year: "2019-2020"}, {Competition: "ligue1", Year: "2020-2021"}}
	if !reflect.DeepEqual(seasons, want) {
		t.Errorf("Seasons = %v, want %v", seasons, want)
	}

	intl, _ := models.CompetitionByCode("international")
	if got, err := s.Seasons(intl); err != nil || got != nil {
		t.Errorf("Seasons of a missing competition = %v, %v", got, err)
	}
}

func TestNeedsProcessing(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "data"))
	src := filepath.Join(dir, "pronos.json")
	if err := os.WriteFile(src, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !s.NeedsProcessing("out.json", src) {
		t.Error("missing output should need processing")
	}
	if err := s.WriteJSON("out.json", struct{}{}); err != nil {
		t.Fatal(err)
	}

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(src, old, old); err != nil {
		t.Fatal(err)
	}
	if s.NeedsProcessing("out.json", src, filepath.Join(dir, "missing.json")) {
		t.Error("fresh output should not need processing")
	}

	newer := time.Now().Add(time.Hour)
	if err := os.Chtimes(src, newer, newer); err != nil {
		t.Fatal(err)
	}
	if !s.NeedsProcessing("out.json", src) {
		t.Error("output older than its source should need processing")
	}
}

func TestRemove(t *testing.T) {
	s := NewStore(t.TempDir())
	rel := MatchdayPath(ligue1, 4)
	if err := s.WriteJSON(rel, models.MatchdayFile{Season: ligue1.Key(), Journee: 4}); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(rel); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Exists(rel) {
		t.Error("document still exists")
	}
	if err := s.Remove(rel); err != nil {
		t.Errorf("Remove of a missing document = %v", err)
	}
}
