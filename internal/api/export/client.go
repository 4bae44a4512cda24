// Package export reads the raw PHPMyAdmin JSON exports of the prediction
// site database.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/omarshaarawi/pronos/internal/models"
)

// ErrTableNotFound is returned when an export file holds no table of the
// requested name.
var ErrTableNotFound = errors.New("table not found in export")

const (
	SeasonsFile     = "saisons.json"
	UsersFile       = "users.json"
	ScoresFile      = "scores.json"
	BonusFile       = "points-1n2.json"
	TeamsFile       = "teams.json"
	PredictionsDir  = "pronostics"
	matchesPattern  = "matches-*.json"
	pronosPattern   = "pronos-*.json"
	SeasonsTable    = "xfxg_multileague_season"
	UsersTable      = "xfxg_users"
	ScoresTable     = "xfxg_pronostik_scores"
	BonusTable      = "xfxg_pronostik_1n2"
	TeamsTable      = "xfxg_multileague_team"
	GamesTable      = "xfxg_multileague_game"
	PredictionTable = "xfxg_multileague_player_prediction"
)

type Client struct {
	root string
}

func NewClient(root string) *Client {
	return &Client{root: root}
}

func (c *Client) Root() string {
	return c.root
}

// Path resolves a file name relative to the export directory.
func (c *Client) Path(elem ...string) string {
	return filepath.Join(append([]string{c.root}, elem...)...)
}

// ReadTable decodes the rows of the named table into rows, which must be a
// pointer to a slice. A missing file yields an error wrapping os.ErrNotExist.
func (c *Client) ReadTable(path, table string, rows any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	var items []models.ExportItem
	if err := json.NewDecoder(f).Decode(&items); err != nil {
		return fmt.Errorf("decoding export %s: %w", filepath.Base(path), err)
	}

	for _, item := range items {
		if item.Type != "table" || item.Name != table {
			continue
		}
		if err := json.Unmarshal(item.Data, rows); err != nil {
			return fmt.Errorf("decoding table %s: %w", table, err)
		}
		return nil
	}
	return fmt.Errorf("%s in %s: %w", table, filepath.Base(path), ErrTableNotFound)
}

// Glob lists export files matching pattern under dir, sorted by name.
func (c *Client) Glob(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.Path(dir), pattern))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", pattern, err)
	}
	return matches, nil
}
