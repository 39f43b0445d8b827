// Package store opens the persistence backend that holds saved matches.
package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tkahng/chopsticks/sticks"
	"github.com/tkahng/chopsticks/store/file"
	"github.com/tkahng/chopsticks/store/memory"
	redisstore "github.com/tkahng/chopsticks/store/redis"
	"github.com/tkahng/chopsticks/store/sqlite"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Store is a Gateway that owns resources and can enumerate its saves.
type Store interface {
	sticks.Gateway
	io.Closer

	// List returns every save id in sorted order
	List(ctx context.Context) ([]string, error)
}

type Config struct {
	Backend    string
	SavePath   string
	RedisURL   string
	SQLitePath string
	Logger     *slog.Logger
}

// Open creates the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendFile, "":
		s, err = file.New(cfg.SavePath)
	case BackendMemory:
		s = memory.New()
	case BackendRedis:
		redisCfg := redisstore.DefaultConfig()
		if cfg.RedisURL != "" {
			redisCfg.URL = cfg.RedisURL
		}
		s, err = redisstore.New(ctx, redisCfg)
	case BackendSQLite:
		s, err = sqlite.Open(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	logger.Debug("store opened", slog.String("backend", cfg.Backend))
	return s, nil
}
