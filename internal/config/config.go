package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration marks a configuration problem that must stop the process at startup.
var ErrConfiguration = errors.New("configuration error")

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token       string  `yaml:"token"`
	Mode        string  `yaml:"mode"`         // polling | webhook (future)
	Workers     int     `yaml:"workers"`      // update workers, sharded by sender id
	PollTimeout int     `yaml:"poll_timeout"` // long-poll timeout in seconds
	Debug       bool    `yaml:"debug"`        // tgbotapi request logging
	AdminIDs    []int64 `yaml:"admin_ids"`
}

type SupportConfig struct {
	PanelTargetID          int64  `yaml:"panel_target_id"`
	RepresentativeTargetID int64  `yaml:"representative_target_id"`
	Language               string `yaml:"language"` // fa | en
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"` // ops server: /health and /metrics
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // sqlite | postgres
	URL      string `yaml:"url"`    // postgres DSN
	Path     string `yaml:"path"`   // sqlite file
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // block-status cache ttl
}

type SessionConfig struct {
	Store string `yaml:"store"` // memory | redis
}

type BroadcastConfig struct {
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
	JobWorkers    int     `yaml:"job_workers"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Support   SupportConfig   `yaml:"support"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Session   SessionConfig   `yaml:"session"`
	Broadcast BroadcastConfig `yaml:"broadcast"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (a missing file is allowed), loads a
// .env file from the working directory when present, applies environment
// overrides and defaults, then validates the result.
func LoadConfig(path string, dev bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// env-only deployment
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); v != "" {
		cfg.Bot.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.Database.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.Redis.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("SUPPORT_PANEL_TARGET_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: SUPPORT_PANEL_TARGET_ID: %v", ErrConfiguration, err)
		}
		cfg.Support.PanelTargetID = id
	}
	if v := strings.TrimSpace(os.Getenv("SUPPORT_REPRESENTATIVE_TARGET_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: SUPPORT_REPRESENTATIVE_TARGET_ID: %v", ErrConfiguration, err)
		}
		cfg.Support.RepresentativeTargetID = id
	}
	if v := strings.TrimSpace(os.Getenv("BOT_ADMIN_IDS")); v != "" {
		ids, err := parseIDList(v)
		if err != nil {
			return fmt.Errorf("%w: BOT_ADMIN_IDS: %v", ErrConfiguration, err)
		}
		cfg.Bot.AdminIDs = ids
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.PollTimeout <= 0 {
		cfg.Bot.PollTimeout = 60
	}
	if cfg.Support.Language == "" {
		cfg.Support.Language = "fa"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 9090
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "bot.db"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Session.Store == "" {
		cfg.Session.Store = "memory"
	}
	if cfg.Broadcast.RatePerSecond <= 0 {
		// Telegram allows roughly 30 messages/sec for bulk sends.
		cfg.Broadcast.RatePerSecond = 25
	}
	if cfg.Broadcast.Burst <= 0 {
		cfg.Broadcast.Burst = 1
	}
	if cfg.Broadcast.JobWorkers <= 0 {
		cfg.Broadcast.JobWorkers = 1
	}
}

// Validate checks the settings the bot cannot start without.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("%w: bot.token (or TELEGRAM_BOT_TOKEN) is required", ErrConfiguration)
	}
	if c.Support.PanelTargetID == 0 || c.Support.RepresentativeTargetID == 0 {
		return fmt.Errorf("%w: support.panel_target_id and support.representative_target_id are required", ErrConfiguration)
	}
	if c.Support.PanelTargetID == c.Support.RepresentativeTargetID {
		return fmt.Errorf("%w: support targets must be distinct", ErrConfiguration)
	}
	if len(c.Bot.AdminIDs) == 0 {
		return fmt.Errorf("%w: bot.admin_ids must list at least one admin", ErrConfiguration)
	}
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("%w: database.url is required for postgres", ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown database.driver %q", ErrConfiguration, c.Database.Driver)
	}
	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("%w: redis.url is required when session.store is redis", ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown session.store %q", ErrConfiguration, c.Session.Store)
	}
	return nil
}

func parseIDList(s string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
