// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is shared by the play and serve commands. Flags override it.
type Config struct {
	Store      string `env:"CHOPSTICKS_STORE"       envDefault:"file"`
	SavePath   string `env:"CHOPSTICKS_SAVE_PATH"   envDefault:"game_saves.json"`
	RedisURL   string `env:"CHOPSTICKS_REDIS_URL"   envDefault:"redis://localhost:6379"`
	SQLitePath string `env:"CHOPSTICKS_SQLITE_PATH" envDefault:"chopsticks.db"`

	Addr           string        `env:"CHOPSTICKS_ADDR"            envDefault:":8080"`
	MaxSessions    int           `env:"CHOPSTICKS_MAX_SESSIONS"    envDefault:"1000"`
	SessionTimeout time.Duration `env:"CHOPSTICKS_SESSION_TIMEOUT" envDefault:"30m"`
	AllowedOrigins []string      `env:"CHOPSTICKS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	LogLevel    string `env:"CHOPSTICKS_LOG_LEVEL"    envDefault:"info"`
	LogFormat   string `env:"CHOPSTICKS_LOG_FORMAT"   envDefault:"text"`
	ClearScreen bool   `env:"CHOPSTICKS_CLEAR_SCREEN" envDefault:"false"`
}

// Load parses the environment into a Config with defaults applied.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case "file", "memory", "redis", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("max sessions must be positive, got %d", c.MaxSessions))
	}
	if c.SessionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("session timeout must be positive, got %s", c.SessionTimeout))
	}
	return errors.Join(errs...)
}

// NewLogger builds the process logger writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
