package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tkahng/chopsticks/sticks"
	"github.com/tkahng/chopsticks/websocket"
)

var (
	errAtCapacity      = errors.New("server at capacity")
	errNoMatch         = errors.New("no match in progress")
	errMatchInProgress = errors.New("a match is already in progress")
)

// Session is one websocket connection playing hot-seat matches. Messages
// for a session are handled one at a time.
type Session struct {
	ID        string
	StartTime time.Time

	mu         sync.Mutex
	match      *sticks.Match
	lastActive time.Time
	ctx        context.Context
	cancel     context.CancelFunc
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Stats is a point in time view of the registry.
type Stats struct {
	ActiveSessions  int   `json:"active_sessions"`
	ActiveMatches   int   `json:"active_matches"`
	AvailableSlots  int   `json:"available_slots"`
	FinishedMatches int64 `json:"finished_matches"`
	Timestamp       int64 `json:"timestamp"`
}

// Registry tracks live sessions, caps how many run at once and drops those
// left idle longer than the timeout.
type Registry struct {
	// Configuration
	maxSessions int
	idleTimeout time.Duration
	logger      *slog.Logger

	sessions      map[websocket.Client]*Session
	sessionsMutex *sync.RWMutex

	// Concurrency control
	slots chan struct{}

	finished atomic.Int64

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

func NewRegistry(maxSessions int, idleTimeout time.Duration, logger *slog.Logger) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		maxSessions:   maxSessions,
		idleTimeout:   idleTimeout,
		logger:        logger,
		sessions:      make(map[websocket.Client]*Session),
		sessionsMutex: new(sync.RWMutex),
		slots:         make(chan struct{}, maxSessions),
		ctx:           ctx,
		cancel:        cancel,
		wg:            new(sync.WaitGroup),
	}
}

// Start launches the cleanup and monitoring workers
func (r *Registry) Start() {
	r.wg.Add(2)
	go r.cleanupWorker()
	go r.monitoringWorker()
	r.logger.Info("session registry started", slog.Int("max_sessions", r.maxSessions))
}

// Stop ends the workers and cancels every open session
func (r *Registry) Stop() {
	r.cancel()
	r.wg.Wait()

	r.sessionsMutex.Lock()
	for _, session := range r.sessions {
		session.cancel()
	}
	r.sessionsMutex.Unlock()

	r.logger.Info("session registry stopped")
}

// Open claims a slot for client. ctx scopes the session's store calls and
// cancel is called when the session is dropped for idling or shutdown.
func (r *Registry) Open(ctx context.Context, cancel context.CancelFunc, client websocket.Client) (*Session, error) {
	select {
	case r.slots <- struct{}{}:
	default:
		return nil, errAtCapacity
	}

	now := time.Now()
	session := &Session{
		ID:         uuid.NewString(),
		StartTime:  now,
		lastActive: now,
		ctx:        ctx,
		cancel:     cancel,
	}

	r.sessionsMutex.Lock()
	r.sessions[client] = session
	r.sessionsMutex.Unlock()

	r.logger.Info("session opened", slog.String("session_id", session.ID))
	return session, nil
}

func (r *Registry) Get(client websocket.Client) (*Session, bool) {
	r.sessionsMutex.RLock()
	defer r.sessionsMutex.RUnlock()
	session, ok := r.sessions[client]
	return session, ok
}

// Close releases the slot held by client. Closing twice is harmless.
func (r *Registry) Close(client websocket.Client) {
	r.sessionsMutex.Lock()
	session, ok := r.sessions[client]
	if ok {
		delete(r.sessions, client)
	}
	r.sessionsMutex.Unlock()
	if !ok {
		return
	}

	session.cancel()
	<-r.slots // Release slot
	r.logger.Info("session closed",
		slog.String("session_id", session.ID),
		slog.Duration("duration", time.Since(session.StartTime)))
}

// matchFinished counts a match that reached a winner
func (r *Registry) matchFinished() {
	r.finished.Add(1)
}

func (r *Registry) Stats() Stats {
	r.sessionsMutex.RLock()
	active := len(r.sessions)
	matches := 0
	for _, s := range r.sessions {
		s.mu.Lock()
		if s.match != nil {
			matches++
		}
		s.mu.Unlock()
	}
	r.sessionsMutex.RUnlock()

	return Stats{
		ActiveSessions:  active,
		ActiveMatches:   matches,
		AvailableSlots:  r.maxSessions - len(r.slots),
		FinishedMatches: r.finished.Load(),
		Timestamp:       time.Now().Unix(),
	}
}

// cleanupWorker periodically drops idle sessions
func (r *Registry) cleanupWorker() {
	defer r.wg.Done()

	interval := r.idleTimeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			r.cleanupStaleSessions(now)
		case <-r.ctx.Done():
			return
		}
	}
}

// cleanupStaleSessions cancels sessions idle for longer than the timeout;
// their connections then close and call Close.
func (r *Registry) cleanupStaleSessions(now time.Time) int {
	r.sessionsMutex.RLock()
	defer r.sessionsMutex.RUnlock()

	dropped := 0
	for _, session := range r.sessions {
		if now.Sub(session.idleSince()) > r.idleTimeout {
			r.logger.Info("dropping idle session", slog.String("session_id", session.ID))
			session.cancel()
			dropped++
		}
	}
	return dropped
}

// monitoringWorker logs registry metrics
func (r *Registry) monitoringWorker() {
	defer r.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := r.Stats()
			r.logger.Info("registry metrics",
				slog.Int("active_sessions", stats.ActiveSessions),
				slog.Int("active_matches", stats.ActiveMatches),
				slog.Int("available_slots", stats.AvailableSlots),
				slog.Int64("finished_matches", stats.FinishedMatches))
		case <-r.ctx.Done():
			return
		}
	}
}
