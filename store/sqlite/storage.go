// Package sqlite provides a SQLite-backed save gateway.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tkahng/chopsticks/sticks"
)

const schema = `CREATE TABLE IF NOT EXISTS saves (
	id             TEXT PRIMARY KEY,
	game_mode      TEXT    NOT NULL,
	turn           INTEGER NOT NULL,
	current_left   INTEGER NOT NULL,
	current_right  INTEGER NOT NULL,
	opposing_left  INTEGER NOT NULL,
	opposing_right INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL
)`

// Store persists snapshots in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the database at path and creates the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer at a time; SQLite serializes writes anyway
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

var _ sticks.Gateway = (*Store)(nil)

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Load(ctx context.Context, id string) (sticks.Snapshot, error) {
	var (
		snap sticks.Snapshot
		mode string
	)
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT game_mode, turn, current_left, current_right, opposing_left, opposing_right
		   FROM saves WHERE id = ?`,
		id,
	).Scan(&mode, &snap.Turn, &snap.CurrentLeft, &snap.CurrentRight, &snap.OpposingLeft, &snap.OpposingRight)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sticks.Snapshot{}, fmt.Errorf("%w: %q", sticks.ErrSaveNotFound, id)
		}
		return sticks.Snapshot{}, fmt.Errorf("load save: %w", err)
	}
	snap.Mode = sticks.Mode(mode)
	return snap, nil
}

func (s *Store) Save(ctx context.Context, id string, snapshot sticks.Snapshot) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty save id", sticks.ErrInvalidSnapshot)
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO saves (
		   id, game_mode, turn, current_left, current_right, opposing_left, opposing_right, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   game_mode = excluded.game_mode,
		   turn = excluded.turn,
		   current_left = excluded.current_left,
		   current_right = excluded.current_right,
		   opposing_left = excluded.opposing_left,
		   opposing_right = excluded.opposing_right,
		   updated_at = excluded.updated_at`,
		id,
		string(snapshot.Mode),
		snapshot.Turn,
		snapshot.CurrentLeft,
		snapshot.CurrentRight,
		snapshot.OpposingLeft,
		snapshot.OpposingRight,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id FROM saves ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan save id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	return ids, nil
}
