package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/tkahng/chopsticks/sticks"
)

// Storage keeps snapshots in process memory.
type Storage struct {
	mu    sync.RWMutex
	saves map[string]sticks.Snapshot
}

func New() *Storage {
	return &Storage{
		saves: make(map[string]sticks.Snapshot),
	}
}

// Ensure Storage implements the interface
var _ sticks.Gateway = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context, id string) (sticks.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return sticks.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.saves[id]
	if !ok {
		return sticks.Snapshot{}, fmt.Errorf("%w: %q", sticks.ErrSaveNotFound, id)
	}
	return snap, nil
}

func (s *Storage) Save(ctx context.Context, id string, snapshot sticks.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty save id", sticks.ErrInvalidSnapshot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves[id] = snapshot
	return nil
}

// List returns the stored save ids in sorted order.
func (s *Storage) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.saves))
	for id := range s.saves {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Storage) Close() error {
	return nil
}
