package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tkahng/chopsticks/sticks"
)

// Storage is a Redis-backed save gateway. All saves share one hash so the
// document stays a single id to snapshot mapping.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Ensure Storage implements the interface
var _ sticks.Gateway = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context, id string) (sticks.Snapshot, error) {
	data, err := s.client.HGet(ctx, savesKey(), id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sticks.Snapshot{}, fmt.Errorf("%w: %q", sticks.ErrSaveNotFound, id)
		}
		return sticks.Snapshot{}, fmt.Errorf("failed to get save: %w", err)
	}

	var snap sticks.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return sticks.Snapshot{}, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	return snap, nil
}

func (s *Storage) Save(ctx context.Context, id string, snapshot sticks.Snapshot) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty save id", sticks.ErrInvalidSnapshot)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal save: %w", err)
	}

	if err := s.client.HSet(ctx, savesKey(), id, data).Err(); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

func (s *Storage) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.HKeys(ctx, savesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}
