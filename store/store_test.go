package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkahng/chopsticks/sticks"
)

func TestOpen(t *testing.T) {
	mini := miniredis.RunT(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default is file", cfg: Config{SavePath: filepath.Join(dir, "default.json")}},
		{name: "file", cfg: Config{Backend: BackendFile, SavePath: filepath.Join(dir, "saves.json")}},
		{name: "memory", cfg: Config{Backend: BackendMemory}},
		{name: "redis", cfg: Config{Backend: BackendRedis, RedisURL: "redis://" + mini.Addr()}},
		{name: "sqlite", cfg: Config{Backend: BackendSQLite, SQLitePath: filepath.Join(dir, "saves.db")}},
		{name: "unknown", cfg: Config{Backend: "tape"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, err := Open(ctx, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer func() { _ = s.Close() }()

			m, err := sticks.NewMatch(sticks.ModeStandard)
			require.NoError(t, err)
			require.NoError(t, m.Save(ctx, s, "open-test"))

			loaded, err := sticks.Load(ctx, s, "open-test")
			require.NoError(t, err)
			assert.Equal(t, m.Snapshot(), loaded.Snapshot())
		})
	}
}
