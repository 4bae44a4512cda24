package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/omarshaarawi/pronos/internal/archive"
	"github.com/omarshaarawi/pronos/internal/models"
	"github.com/omarshaarawi/pronos/internal/scheduler"
	"github.com/omarshaarawi/pronos/internal/service"
)

type SeasonArgs struct {
	Season string `json:"season" jsonschema:"Season key like ligue1-2019-2020, or a competition code for its latest season (default ligue1)"`
	Limit  int    `json:"limit" jsonschema:"Maximum number of entries (0 = all)"`
}

type MatchdayArgs struct {
	Season  string `json:"season" jsonschema:"Season key or competition code (default ligue1)"`
	Journee int    `json:"journee" jsonschema:"Matchday number (0 = latest)"`
}

type LimitArgs struct {
	Limit int `json:"limit" jsonschema:"Maximum number of entries (0 = all)"`
}

type UserArgs struct {
	Username string `json:"username" jsonschema:"Username, matched fuzzily (required)"`
}

type CompetitionArgs struct {
	Competition string `json:"competition" jsonschema:"Competition code: ligue1|ldc|ligaeuropa|top14|international (default ligue1)"`
}

type NoArgs struct{}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// tools answers MCP calls from the archive. Pipeline runs are serialized.
type tools struct {
	archive  *service.ArchiveService
	pipeline scheduler.Runner
	runMu    sync.Mutex
}

func newServer(t *tools, version string) (*mcp.Server, []toolInfo) {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "pronos-archive-mcp",
			Version: version,
		},
		nil,
	)

	registry := make([]toolInfo, 0, 8)
	addTool(server, &registry, &mcp.Tool{
		Name:        "season_ranking",
		Description: "General ranking of a season: points, 1N2, exact scores, best and worst matchday per player",
	}, t.seasonRanking)
	addTool(server, &registry, &mcp.Tool{
		Name:        "season_history",
		Description: "Cumulative standings after each matchday of a season, with season highlights",
	}, t.seasonHistory)
	addTool(server, &registry, &mcp.Tool{
		Name:        "matchday",
		Description: "Scored predictions and standings of one matchday",
	}, t.matchday)
	addTool(server, &registry, &mcp.Tool{
		Name:        "palmares",
		Description: "Season titles per player across every competition",
	}, t.palmares)
	addTool(server, &registry, &mcp.Tool{
		Name:        "journee_leaders",
		Description: "Matchday wins and podiums per player and competition",
	}, t.journeeLeaders)
	addTool(server, &registry, &mcp.Tool{
		Name:        "user_career",
		Description: "Career totals and season list of a player",
	}, t.userCareer)
	addTool(server, &registry, &mcp.Tool{
		Name:        "seasons_index",
		Description: "Seasons of a competition with status, dates, activity and winners",
	}, t.seasonsIndex)
	addTool(server, &registry, &mcp.Tool{
		Name:        "run_pipeline",
		Description: "Rescore new exports and rebuild the archive; returns the run report",
	}, t.runPipeline)
	return server, registry
}

func addTool[T any](server *mcp.Server, registry *[]toolInfo, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, handler)
}

func (t *tools) seasonRanking(ctx context.Context, req *mcp.CallToolRequest, args SeasonArgs) (*mcp.CallToolResult, any, error) {
	season, err := t.archive.ResolveSeason(args.Season)
	if err != nil {
		return toolError(err), nil, nil
	}
	r, err := t.archive.Ranking(season)
	if err != nil {
		return toolError(err), nil, nil
	}
	out := *r
	out.Ranking = limit(out.Ranking, args.Limit)
	return toolJSON(archive.Encode(out))
}

func (t *tools) seasonHistory(ctx context.Context, req *mcp.CallToolRequest, args SeasonArgs) (*mcp.CallToolResult, any, error) {
	season, err := t.archive.ResolveSeason(args.Season)
	if err != nil {
		return toolError(err), nil, nil
	}
	h, err := t.archive.History(season)
	if err != nil {
		return toolError(err), nil, nil
	}
	out := *h
	if args.Limit > 0 {
		out.History = make([]models.HistoryEntry, len(h.History))
		for i, e := range h.History {
			out.History[i] = models.HistoryEntry{Matchday: e.Matchday, Standings: limit(e.Standings, args.Limit)}
		}
	}
	return toolJSON(archive.Encode(out))
}

func (t *tools) matchday(ctx context.Context, req *mcp.CallToolRequest, args MatchdayArgs) (*mcp.CallToolResult, any, error) {
	season, err := t.archive.ResolveSeason(args.Season)
	if err != nil {
		return toolError(err), nil, nil
	}
	j := args.Journee
	if j <= 0 {
		if j, err = t.archive.LatestMatchday(season); err != nil {
			return toolError(err), nil, nil
		}
	}
	md, err := t.archive.Matchday(season, j)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(archive.Encode(md))
}

func (t *tools) palmares(ctx context.Context, req *mcp.CallToolRequest, args LimitArgs) (*mcp.CallToolResult, any, error) {
	p, err := t.archive.Palmares()
	if err != nil {
		return toolError(err), nil, nil
	}
	out := *p
	out.Palmares = limit(out.Palmares, args.Limit)
	return toolJSON(archive.Encode(out))
}

func (t *tools) journeeLeaders(ctx context.Context, req *mcp.CallToolRequest, args LimitArgs) (*mcp.CallToolResult, any, error) {
	js, err := t.archive.JourneeStats()
	if err != nil {
		return toolError(err), nil, nil
	}
	out := *js
	out.Stats = limit(out.Stats, args.Limit)
	return toolJSON(archive.Encode(out))
}

func (t *tools) userCareer(ctx context.Context, req *mcp.CallToolRequest, args UserArgs) (*mcp.CallToolResult, any, error) {
	if args.Username == "" {
		return toolError(fmt.Errorf("username is required")), nil, nil
	}
	u, err := t.archive.FindUser(args.Username)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(archive.Encode(u))
}

func (t *tools) seasonsIndex(ctx context.Context, req *mcp.CallToolRequest, args CompetitionArgs) (*mcp.CallToolResult, any, error) {
	code := args.Competition
	if code == "" {
		code = "ligue1"
	}
	comp, ok := models.CompetitionByCode(code)
	if !ok {
		return toolError(fmt.Errorf("unknown competition %q", code)), nil, nil
	}
	idx, err := t.archive.SeasonsIndex(comp)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(archive.Encode(idx))
}

var errRunInProgress = errors.New("a pipeline run is already in progress")

func (t *tools) runPipeline(ctx context.Context, req *mcp.CallToolRequest, args NoArgs) (*mcp.CallToolResult, any, error) {
	if t.pipeline == nil {
		return toolError(errors.New("pipeline runs are disabled on this server")), nil, nil
	}
	if !t.runMu.TryLock() {
		return toolError(errRunInProgress), nil, nil
	}
	defer t.runMu.Unlock()

	report, err := t.pipeline.Run(ctx)
	if err != nil {
		return toolError(err), nil, nil
	}
	t.archive.Invalidate()
	return toolJSON(archive.Encode(report))
}

func limit[T any](items []T, n int) []T {
	if n > 0 && n < len(items) {
		return items[:n]
	}
	return items
}

func toolJSON(res []byte, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSONBytes(res), nil, nil
}

func toolJSONBytes(res []byte) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(res)},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
