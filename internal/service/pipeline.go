package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/omarshaarawi/pronos/internal/api/export"
	"github.com/omarshaarawi/pronos/internal/archive"
	"github.com/omarshaarawi/pronos/internal/config"
	"github.com/omarshaarawi/pronos/internal/models"
	"github.com/omarshaarawi/pronos/internal/palmares"
	"github.com/omarshaarawi/pronos/internal/scoring"
	"github.com/omarshaarawi/pronos/internal/standings"
)

const referencesUnit = "references"

// excludedMatchdays lists the matchdays of seasons interrupted in 2020 that
// were never played to completion.
var excludedMatchdays = map[string][2]int{
	"ligue1-2019-2020": {30, 38},
	"top14-2019-2020":  {19, 26},
	"ldc-2019-2020":    {16, 16},
}

func excluded(season models.Season, journee int) bool {
	r, ok := excludedMatchdays[season.Key()]
	return ok && journee >= r[0] && journee <= r[1]
}

// missingInput converts a not-exist failure into a MissingInputError for unit.
func missingInput(unit string, err error) error {
	var pathErr *fs.PathError
	if errors.Is(err, os.ErrNotExist) && errors.As(err, &pathErr) {
		return &MissingInputError{Unit: unit, Path: pathErr.Path}
	}
	return err
}

type PipelineService struct {
	api   *export.API
	store *archive.Store
	cfg   config.Pipeline
	now   func() time.Time
}

func NewPipelineService(api *export.API, store *archive.Store, cfg config.Pipeline) *PipelineService {
	return &PipelineService{api: api, store: store, cfg: cfg, now: time.Now}
}

// references is the reference data shared by the matches and matchdays stages.
type references struct {
	byID      map[string]models.SeasonInfo
	bySeason  map[models.Season]models.SeasonInfo
	users     []models.User
	usernames map[int]string
	tables    scoring.Tables
	teams     map[string]string
}

// Run executes every stage once. Failures of single units are recorded in the
// report; the returned error is only set when ctx is cancelled.
func (s *PipelineService) Run(ctx context.Context) (*models.RunReport, error) {
	report := models.NewRunReport(s.now())
	log := slog.With("run", report.RunID.String())
	log.Info("Starting pipeline run", "source", s.api.Client().Root(), "data", s.store.Root, "force", s.cfg.Force)

	refs, err := s.loadReferences()
	if err != nil {
		log.Error("Failed to load reference data", "error", err)
		report.Errored(models.StageMatches, referencesUnit, err)
	} else {
		if err := s.processMatches(ctx, log, report, refs); err != nil {
			return report, err
		}
		if err := s.processMatchdays(ctx, log, report, refs); err != nil {
			return report, err
		}
	}

	results, err := s.processStandings(ctx, log, report)
	if err != nil {
		return report, err
	}
	if err := s.processDerived(ctx, log, report, refs, results); err != nil {
		return report, err
	}

	report.FinishedAt = s.now()
	log.Info("Pipeline run finished",
		"failed", report.Failed(),
		"errors", len(report.Errors),
		"warnings", report.Warnings,
		"duration", report.FinishedAt.Sub(report.StartedAt))
	return report, nil
}

func (s *PipelineService) loadReferences() (*references, error) {
	seasons, err := s.api.GetSeasons()
	if err != nil {
		return nil, missingInput(referencesUnit, err)
	}
	users, err := s.api.GetUsers()
	if err != nil {
		return nil, missingInput(referencesUnit, err)
	}
	tables, err := s.api.GetScoringTables()
	if err != nil {
		return nil, missingInput(referencesUnit, err)
	}
	teams, err := s.api.GetTeams()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		slog.Warn("No teams export, team names fall back to ids", "path", s.api.Client().Path(export.TeamsFile))
	}

	refs := &references{
		byID:      make(map[string]models.SeasonInfo, len(seasons)),
		bySeason:  make(map[models.Season]models.SeasonInfo, len(seasons)),
		users:     users,
		usernames: make(map[int]string, len(users)),
		tables:    tables,
		teams:     teams,
	}
	for _, info := range seasons {
		refs.byID[info.ID] = info
		if _, dup := refs.bySeason[info.Season()]; !dup {
			refs.bySeason[info.Season()] = info
		}
	}
	for _, u := range users {
		refs.usernames[u.ID] = u.Username
	}
	slog.Info("Loaded reference data", "seasons", len(seasons), "users", len(users), "teams", len(teams))
	return refs, nil
}

func (s *PipelineService) processMatches(ctx context.Context, log *slog.Logger, report *models.RunReport, refs *references) error {
	paths, err := s.api.MatchFiles()
	if err != nil {
		report.Errored(models.StageMatches, "matches", err)
		return nil
	}

	for _, path := range paths {
		rows, err := s.api.GetGames(path)
		if err != nil {
			log.Error("Failed to read match export", "path", path, "error", err)
			report.Errored(models.StageMatches, filepath.Base(path), err)
			continue
		}

		for _, group := range groupBySeason(rows) {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, ok := refs.byID[group.seasonID]
			if !ok {
				log.Warn("Unknown season id in match export", "path", path, "seasonId", group.seasonID)
				report.Warnings++
				report.Skipped(models.StageMatches)
				continue
			}
			if _, ok := models.CompetitionByCode(info.Competition); !ok {
				log.Warn("Unknown competition", "seasonId", info.ID, "competition", info.Competition)
				report.Warnings++
				report.Skipped(models.StageMatches)
				continue
			}

			season := info.Season()
			rel := archive.MatchesPath(season)
			if !s.cfg.Force && !s.store.NeedsProcessing(rel, path) {
				report.Skipped(models.StageMatches)
				continue
			}

			file, err := buildMatches(info, group.rows, refs.teams)
			if err == nil {
				err = s.store.WriteJSON(rel, file)
			}
			if err != nil {
				log.Error("Failed to build matches", "season", season.Key(), "error", err)
				report.Errored(models.StageMatches, season.Key(), err)
				continue
			}
			log.Info("Wrote matches", "season", season.Key(), "matches", file.TotalMatches, "matchdays", file.TotalMatchdays)
			report.Processed(models.StageMatches)
		}
	}
	return nil
}

type seasonGames struct {
	seasonID string
	rows     []models.GameRow
}

// groupBySeason splits an export holding several seasons, in order of first
// appearance.
func groupBySeason(rows []models.GameRow) []seasonGames {
	var groups []seasonGames
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.SeasonID]
		if !ok {
			i = len(groups)
			index[r.SeasonID] = i
			groups = append(groups, seasonGames{seasonID: r.SeasonID})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	return groups
}

func buildMatches(info models.SeasonInfo, rows []models.GameRow, teams map[string]string) (*models.MatchesFile, error) {
	season := info.Season()
	matches := make([]models.Match, 0, len(rows))
	for _, r := range rows {
		m, err := export.ToMatch(r, teams)
		if err != nil {
			return nil, err
		}
		if excluded(season, m.Journee) {
			continue
		}
		matches = append(matches, m)
	}
	slices.SortFunc(matches, func(a, b models.Match) int {
		if c := cmp.Compare(a.Journee, b.Journee); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	file := &models.MatchesFile{
		Season:       season.Key(),
		SeasonID:     info.ID,
		SeasonName:   info.Name,
		TotalMatches: len(matches),
		Matches:      matches,
	}
	for _, m := range matches {
		file.TotalMatchdays = max(file.TotalMatchdays, m.Journee)
	}
	return file, nil
}

func (s *PipelineService) processMatchdays(ctx context.Context, log *slog.Logger, report *models.RunReport, refs *references) error {
	files, err := s.api.PredictionFiles()
	if err != nil {
		report.Errored(models.StageMatchdays, export.PredictionsDir, err)
		return nil
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		unit := fmt.Sprintf("%s-j%02d", f.Season.Key(), f.Journee)
		if _, ok := models.CompetitionByCode(f.Season.Competition); !ok {
			log.Warn("Unknown competition", "file", filepath.Base(f.Path), "competition", f.Season.Competition)
			report.Warnings++
			report.Skipped(models.StageMatchdays)
			continue
		}
		if excluded(f.Season, f.Journee) {
			report.Skipped(models.StageMatchdays)
			continue
		}
		info, ok := refs.bySeason[f.Season]
		if !ok {
			log.Warn("No season matches prediction file", "file", filepath.Base(f.Path), "season", f.Season.Key())
			report.Warnings++
			report.Skipped(models.StageMatchdays)
			continue
		}

		rel := archive.MatchdayPath(f.Season, f.Journee)
		if !s.cfg.Force && !s.store.NeedsProcessing(rel, f.Path, s.store.Path(archive.MatchesPath(f.Season))) {
			report.Skipped(models.StageMatchdays)
			continue
		}

		md, warnings, err := s.scoreMatchday(unit, info, f, refs)
		for _, w := range warnings {
			log.Warn("Dropped prediction", "unit", unit, "reason", w.String())
		}
		report.Warnings += len(warnings)
		if err == nil {
			err = s.store.WriteJSON(rel, md)
		}
		if err != nil {
			log.Error("Failed to score matchday", "unit", unit, "error", err)
			report.Errored(models.StageMatchdays, unit, err)
			// A previous output must not feed the standings of this run.
			if rmErr := s.store.Remove(rel); rmErr != nil {
				log.Error("Failed to remove stale matchday", "unit", unit, "error", rmErr)
			}
			continue
		}
		log.Info("Scored matchday", "season", f.Season.Key(), "journee", f.Journee, "players", len(md.Standings))
		report.Processed(models.StageMatchdays)
	}
	return nil
}

func (s *PipelineService) scoreMatchday(unit string, info models.SeasonInfo, f export.PronosFile, refs *references) (*models.MatchdayFile, []scoring.Warning, error) {
	matchesFile, err := s.store.LoadMatches(f.Season)
	if errors.Is(err, archive.ErrNotFound) {
		return nil, nil, &MissingInputError{Unit: unit, Path: s.store.Path(archive.MatchesPath(f.Season))}
	}
	if err != nil {
		return nil, nil, err
	}

	var matches []models.Match
	for _, m := range matchesFile.Matches {
		if m.Journee == f.Journee {
			matches = append(matches, m)
		}
	}

	preds, dropped, err := s.api.GetPredictions(f.Path)
	if err != nil {
		return nil, nil, err
	}

	md, warnings, err := scoring.ScoreMatchday(scoring.MatchdayInput{
		Season:      f.Season,
		Rule:        scoring.RuleFor(info.ID),
		Table:       refs.tables.For(info.ID),
		Journee:     f.Journee,
		Matches:     matches,
		Predictions: preds,
		Usernames:   refs.usernames,
	})
	return md, append(dropped, warnings...), err
}

// processStandings rebuilds the ranking and history of every archived season
// and returns the seasons for the derived builders.
func (s *PipelineService) processStandings(ctx context.Context, log *slog.Logger, report *models.RunReport) ([]palmares.SeasonResult, error) {
	generated := s.now()
	var results []palmares.SeasonResult

	for _, comp := range models.Competitions {
		seasons, err := s.store.Seasons(comp)
		if err != nil {
			report.Errored(models.StageStandings, comp.Code, err)
			continue
		}
		for _, season := range seasons {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := s.buildStandings(season, generated)
			if err != nil {
				log.Error("Failed to build standings", "season", season.Key(), "error", err)
				report.Errored(models.StageStandings, season.Key(), err)
				continue
			}
			if res.Ranking == nil {
				report.Skipped(models.StageStandings)
			} else {
				log.Info("Built standings", "season", season.Key(), "ranked", res.Ranking.TotalRanked, "matchdays", len(res.Matchdays))
				report.Processed(models.StageStandings)
			}
			results = append(results, res)
		}
	}
	return results, nil
}

func (s *PipelineService) buildStandings(season models.Season, generated time.Time) (palmares.SeasonResult, error) {
	res := palmares.SeasonResult{Season: season}
	if mf, err := s.store.LoadMatches(season); err == nil {
		res.SeasonID, res.Name = mf.SeasonID, mf.SeasonName
	} else if !errors.Is(err, archive.ErrNotFound) {
		return res, err
	}

	matchdays, err := s.store.LoadMatchdays(season)
	if err != nil {
		return res, err
	}
	res.Matchdays = matchdays
	if len(matchdays) == 0 {
		return res, nil
	}

	ranking := standings.Aggregate(season.Key(), matchdays, generated)
	history := standings.BuildHistory(season.Key(), matchdays, generated)
	history.Highlights = standings.Highlights(history.History, ranking.Ranking)

	if err := s.store.WriteJSON(archive.RankingPath(season), ranking); err != nil {
		return res, err
	}
	if err := s.store.WriteJSON(archive.HistoryPath(season), history); err != nil {
		return res, err
	}
	res.Ranking = ranking
	return res, nil
}

type derivedDoc struct {
	unit string
	rel  string
	doc  any
}

func (s *PipelineService) processDerived(ctx context.Context, log *slog.Logger, report *models.RunReport, refs *references, results []palmares.SeasonResult) error {
	generated := s.now()
	profiles := make(map[int]palmares.Profile)
	if refs != nil {
		for _, u := range refs.users {
			profiles[u.ID] = palmares.Profile{Username: u.Username, JoinDate: u.JoinDate, LastActive: u.LastActive}
		}
	}

	docs := []derivedDoc{
		{"palmares", archive.PalmaresPath(), palmares.Palmares(results, generated)},
		{"journee-stats", archive.JourneeStatsPath(), palmares.JourneeLeaders(results, generated)},
		{"users", archive.UsersPath(), palmares.Career(results, profiles, generated)},
	}
	ref := s.cfg.Reference(generated)
	for _, comp := range models.Competitions {
		idx := palmares.SeasonIndex(comp, results, ref, generated)
		if idx.TotalSeasons == 0 {
			continue
		}
		docs = append(docs, derivedDoc{comp.Code + "-index", archive.SeasonsIndexPath(comp), idx})
	}

	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.store.WriteJSON(d.rel, d.doc); err != nil {
			log.Error("Failed to write derived document", "unit", d.unit, "error", err)
			report.Errored(models.StageDerived, d.unit, err)
			continue
		}
		report.Processed(models.StageDerived)
	}
	return nil
}
