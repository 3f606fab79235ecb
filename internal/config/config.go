// Package config loads the bot's settings from the environment, reading a
// .env file first when one exists.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// StatsBackend selects where game records are kept
type StatsBackend string

const (
	StatsBackendRedis  StatsBackend = "redis"
	StatsBackendSQLite StatsBackend = "sqlite"
)

// Config holds every setting the bot reads at startup
type Config struct {
	Discord Discord
	Redis   Redis
	Stats   Stats
	Tables  Tables
	Rewards Rewards

	// StatusAddr is where the status HTTP server listens; empty disables it
	StatusAddr string `env:"STATUS_ADDR" envDefault:":8080"`

	// LogLevel is a zap level name
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// SeasonSchedule is the cron spec for rolling coin seasons over
	SeasonSchedule string `env:"SEASON_SCHEDULE" envDefault:"@weekly"`
}

// Discord holds the bot credentials
type Discord struct {
	Token         string `env:"DISCORD_TOKEN,required,notEmpty"`
	ApplicationID string `env:"APPLICATION_ID"`

	// GuildID registers commands on one server, for development
	GuildID string `env:"GUILD_ID"`
}

// Redis holds the connection settings
type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Stats selects the stats store
type Stats struct {
	Backend    StatsBackend `env:"STATS_BACKEND" envDefault:"redis"`
	SQLitePath string       `env:"STATS_SQLITE_PATH" envDefault:"tablebot.db"`
}

// Tables holds lobby and table limits
type Tables struct {
	LobbyTimeout time.Duration `env:"LOBBY_TIMEOUT" envDefault:"10m"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"5m"`

	UnoHandSize int `env:"UNO_HAND_SIZE" envDefault:"7"`

	PokerStartingStack int64 `env:"POKER_STARTING_STACK" envDefault:"1000"`
	PokerSmallBlind    int64 `env:"POKER_SMALL_BLIND" envDefault:"5"`
	PokerBigBlind      int64 `env:"POKER_BIG_BLIND" envDefault:"10"`
}

// Rewards are the coins paid out when a game finishes
type Rewards struct {
	UnoWin        int64 `env:"REWARD_UNO_WIN" envDefault:"50"`
	Participation int64 `env:"REWARD_PARTICIPATION" envDefault:"5"`
}

// Load reads the given .env files, or .env when none are named, and parses
// the environment. Missing files are skipped; variables already set in the
// environment win over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the parser cannot
func (c *Config) Validate() error {
	switch c.Stats.Backend {
	case StatsBackendRedis:
	case StatsBackendSQLite:
		if c.Stats.SQLitePath == "" {
			return errors.New("STATS_SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown STATS_BACKEND %q", c.Stats.Backend)
	}

	if c.Tables.LobbyTimeout <= 0 || c.Tables.IdleTimeout <= 0 {
		return errors.New("LOBBY_TIMEOUT and IDLE_TIMEOUT must be positive")
	}
	if c.Tables.PokerSmallBlind <= 0 || c.Tables.PokerBigBlind < c.Tables.PokerSmallBlind {
		return errors.New("poker blinds must be positive with the big blind at least the small blind")
	}
	if c.Tables.PokerStartingStack < c.Tables.PokerBigBlind {
		return errors.New("POKER_STARTING_STACK must cover the big blind")
	}
	if c.Rewards.UnoWin < 0 || c.Rewards.Participation < 0 {
		return errors.New("rewards cannot be negative")
	}
	return nil
}
