// Package file stores every saved match in one JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/tkahng/chopsticks/sticks"
)

// DefaultPath is the document name used when none is configured.
const DefaultPath = "game_saves.json"

// document maps save id to snapshot.
type document map[string]sticks.Snapshot

// Storage reads and rewrites the whole document on each call. Writes go to a
// temp file that replaces the document only once fully written.
type Storage struct {
	mu   sync.Mutex
	path string
}

func New(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	path = filepath.Clean(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create save directory: %w", err)
		}
	}
	return &Storage{path: path}, nil
}

var _ sticks.Gateway = (*Storage)(nil)

func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) Load(ctx context.Context, id string) (sticks.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return sticks.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return sticks.Snapshot{}, err
	}
	snap, ok := doc[id]
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

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc[id] = snapshot
	return s.write(doc)
}

func (s *Storage) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(doc))
	for id := range doc {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Storage) Close() error {
	return nil
}

// read returns an empty document when the file does not exist yet.
func (s *Storage) read() (document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return document{}, nil
		}
		return nil, fmt.Errorf("read save document: %w", err)
	}
	doc := document{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode save document %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *Storage) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode save document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp save document: %w", err)
	}
	tmpName := tmp.Name()
	// the temp file is gone after a successful rename
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write save document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync save document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close save document: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace save document: %w", err)
	}
	return nil
}
