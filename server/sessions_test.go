package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkahng/chopsticks/sticks"
	"github.com/tkahng/chopsticks/websocket"
)

// stubClient stands in for a connection; the registry only uses it as a key.
type stubClient struct {
	websocket.Client
	name string
}

func newTestRegistry(limit int, timeout time.Duration) *Registry {
	return NewRegistry(limit, timeout, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func openSession(t *testing.T, r *Registry, c websocket.Client) (*Session, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s, err := r.Open(ctx, cancel, c)
	require.NoError(t, err)
	return s, ctx
}

func TestRegistryLimitsSessions(t *testing.T) {
	r := newTestRegistry(2, time.Minute)
	a, b, c := &stubClient{name: "a"}, &stubClient{name: "b"}, &stubClient{name: "c"}

	sa, _ := openSession(t, r, a)
	sb, _ := openSession(t, r, b)
	assert.NotEqual(t, sa.ID, sb.ID)

	_, err := r.Open(context.Background(), func() {}, c)
	assert.ErrorIs(t, err, errAtCapacity)
	assert.Equal(t, 0, r.Stats().AvailableSlots)

	r.Close(a)
	r.Close(a)
	assert.Equal(t, 1, r.Stats().AvailableSlots)

	_, ok := r.Get(a)
	assert.False(t, ok)
	got, ok := r.Get(b)
	require.True(t, ok)
	assert.Same(t, sb, got)

	openSession(t, r, c)
	assert.Equal(t, 2, r.Stats().ActiveSessions)
}

func TestRegistryCloseCancelsSession(t *testing.T) {
	r := newTestRegistry(1, time.Minute)
	c := &stubClient{name: "a"}
	_, ctx := openSession(t, r, c)

	r.Close(c)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestCleanupStaleSessions(t *testing.T) {
	r := newTestRegistry(3, time.Minute)
	idle, busy := &stubClient{name: "idle"}, &stubClient{name: "busy"}

	idleSession, idleCtx := openSession(t, r, idle)
	_, busyCtx := openSession(t, r, busy)

	now := time.Now()
	idleSession.mu.Lock()
	idleSession.lastActive = now.Add(-2 * time.Minute)
	idleSession.mu.Unlock()

	assert.Equal(t, 1, r.cleanupStaleSessions(now))
	assert.Error(t, idleCtx.Err())
	assert.NoError(t, busyCtx.Err())
}

func TestRegistryStats(t *testing.T) {
	r := newTestRegistry(4, time.Minute)
	c := &stubClient{name: "a"}
	s, _ := openSession(t, r, &stubClient{name: "b"})
	openSession(t, r, c)

	match, err := sticks.NewMatch(sticks.ModeStandard)
	require.NoError(t, err)
	s.mu.Lock()
	s.match = match
	s.mu.Unlock()
	r.matchFinished()

	stats := r.Stats()
	assert.Equal(t, 2, stats.ActiveSessions)
	assert.Equal(t, 1, stats.ActiveMatches)
	assert.Equal(t, 2, stats.AvailableSlots)
	assert.EqualValues(t, 1, stats.FinishedMatches)
	assert.NotZero(t, stats.Timestamp)
}

func TestRegistryStopCancelsSessions(t *testing.T) {
	r := newTestRegistry(1, time.Minute)
	r.Start()
	_, ctx := openSession(t, r, &stubClient{name: "a"})

	r.Stop()
	assert.Error(t, ctx.Err())
}
