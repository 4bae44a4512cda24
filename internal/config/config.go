package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

const dateLayout = "2006-01-02"

type Config struct {
	Pipeline Pipeline
}

type BotConfig struct {
	Pipeline    Pipeline
	TelegramBot TelegramBot
}

type MCPConfig struct {
	Pipeline Pipeline
	MCP      MCP
}

type Pipeline struct {
	DataDir       string        `envconfig:"DATA_DIR" default:"data"`
	SourceDir     string        `envconfig:"SOURCE_DIR" default:"datasources"`
	Force         bool          `envconfig:"FORCE"`
	ReferenceDate string        `envconfig:"REFERENCE_DATE"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"60m"`
	Cron          string        `envconfig:"PIPELINE_CRON" default:"0 6 * * *"`
	Timezone      string        `envconfig:"TIMEZONE" default:"Europe/Paris"`
	Watch         bool          `envconfig:"WATCH"`
}

type TelegramBot struct {
	Token      string `envconfig:"TELEGRAM_TOKEN" required:"true"`
	ChatID     int64  `envconfig:"CHAT_ID"`
	HealthAddr string `envconfig:"HEALTH_ADDR" default:":80"`
}

type MCP struct {
	Addr   string `envconfig:"MCP_ADDR" default:":8080"`
	Path   string `envconfig:"MCP_PATH" default:"/mcp"`
	APIKey string `envconfig:"MCP_API_KEY"`
}

func New() (*Config, error) {
	var c Config
	if err := load(&c, &c.Pipeline); err != nil {
		return nil, err
	}
	return &c, nil
}

func NewBot() (*BotConfig, error) {
	var c BotConfig
	if err := load(&c, &c.Pipeline); err != nil {
		return nil, err
	}
	return &c, nil
}

func NewMCP() (*MCPConfig, error) {
	var c MCPConfig
	if err := load(&c, &c.Pipeline); err != nil {
		return nil, err
	}
	return &c, nil
}

func load(target any, p *Pipeline) error {
	if err := envconfig.Process("", target); err != nil {
		return err
	}
	return p.validate()
}

func (p *Pipeline) validate() error {
	if _, err := cron.ParseStandard(p.Cron); err != nil {
		return fmt.Errorf("invalid PIPELINE_CRON %q: %w", p.Cron, err)
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", p.Timezone, err)
	}
	if p.ReferenceDate != "" {
		if _, err := time.Parse(dateLayout, p.ReferenceDate); err != nil {
			return fmt.Errorf("invalid REFERENCE_DATE %q: %w", p.ReferenceDate, err)
		}
	}
	if p.CacheTTL < 0 {
		return fmt.Errorf("invalid CACHE_TTL %s", p.CacheTTL)
	}
	return nil
}

// Location is the time zone the scheduler and season statuses run in.
func (p Pipeline) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Reference returns the date season statuses are computed against:
// REFERENCE_DATE when set, else now in the configured location.
func (p Pipeline) Reference(now time.Time) time.Time {
	if p.ReferenceDate != "" {
		if ref, err := time.ParseInLocation(dateLayout, p.ReferenceDate, p.Location()); err == nil {
			return ref
		}
	}
	return now.In(p.Location())
}
