package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tkahng/chopsticks/sticks"
	"github.com/tkahng/chopsticks/websocket"
)

const (
	DefaultMaxSessions    = 1000
	DefaultSessionTimeout = 30 * time.Minute
	DefaultPingInterval   = 30 * time.Second
)

type Config struct {
	Gateway        sticks.Gateway
	Logger         *slog.Logger
	MaxSessions    int
	SessionTimeout time.Duration
	AllowedOrigins []string
	PingInterval   time.Duration
}

// GameServer carries hot-seat chopsticks sessions over websocket
// connections. Both players of a match share one connection.
type GameServer struct {
	gateway   sticks.Gateway
	logger    *slog.Logger
	registry  *Registry
	manager   websocket.Manager
	origins   []string
	ping      time.Duration
	mux       *http.ServeMux
	startTime time.Time
	cancel    context.CancelFunc
}

// New builds a server. Start must be called before connections are served.
func New(cfg Config) (*GameServer, error) {
	if cfg.Gateway == nil {
		return nil, errors.New("server: gateway is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = DefaultSessionTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultPingInterval
	}

	gs := &GameServer{
		gateway:   cfg.Gateway,
		logger:    cfg.Logger,
		registry:  NewRegistry(cfg.MaxSessions, cfg.SessionTimeout, cfg.Logger),
		manager:   websocket.NewManager(),
		origins:   cfg.AllowedOrigins,
		ping:      cfg.PingInterval,
		mux:       http.NewServeMux(),
		startTime: time.Now(),
	}
	gs.setupRoutes()
	return gs, nil
}

func (gs *GameServer) Handler() http.Handler {
	return RequestID(gs.logger, Cors(gs.origins, gs.mux))
}

// Start runs the session registry and the websocket manager until Stop is
// called or ctx is done.
func (gs *GameServer) Start(ctx context.Context) {
	ctx, gs.cancel = context.WithCancel(ctx)
	gs.registry.Start()
	go gs.manager.Run(ctx)
}

// Stop closes every connection and stops the registry workers.
func (gs *GameServer) Stop() {
	if gs.cancel != nil {
		gs.cancel()
	}
	gs.registry.Stop()
}

// Stats reports the registry's current counters.
func (gs *GameServer) Stats() Stats {
	return gs.registry.Stats()
}

// setupRoutes configures HTTP routes
func (gs *GameServer) setupRoutes() {
	gs.mux.HandleFunc("GET /api/ws", websocket.ServeWS(
		websocket.DefaultUpgrader(gs.origins),
		websocket.DefaultSetupConn,
		websocket.NewClientFactory(gs.logger),
		gs.onCreate,
		gs.onDestroy,
		gs.ping,
		[]websocket.MessageHandler{gs.handleMessage},
	))
	gs.mux.HandleFunc("GET /api/stats", gs.handleStats)
	gs.mux.HandleFunc("GET /api/health", gs.handleHealth)
}

func (gs *GameServer) onCreate(ctx context.Context, cf context.CancelFunc, c websocket.Client) error {
	session, err := gs.registry.Open(ctx, cf, c)
	if err != nil {
		return err
	}
	gs.manager.RegisterClient(ctx, cf, c)
	gs.send(c, MessageTypeWelcome, WelcomeMessageData{
		SessionID: session.ID,
		Modes:     sticks.Modes(),
	})
	return nil
}

func (gs *GameServer) onDestroy(c websocket.Client) {
	gs.registry.Close(c)
	gs.manager.UnregisterClient(c)
}

// handleMessage applies one client message to the session's match
func (gs *GameServer) handleMessage(c websocket.Client, payload []byte) {
	session, ok := gs.registry.Get(c)
	if !ok {
		return
	}
	session.touch(time.Now())

	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		gs.sendError(c, errors.Join(errBadMessage, err))
		return
	}
	in, err := decodeIntent(msg)
	if err != nil {
		gs.sendError(c, err)
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	ctx := session.ctx

	switch in.(type) {
	case sticks.NewGameIntent, sticks.LoadGameIntent:
		if session.match != nil {
			gs.sendError(c, errMatchInProgress)
			return
		}
		match, err := sticks.Start(ctx, gs.gateway, in)
		if err != nil {
			gs.sendError(c, err)
			return
		}
		session.match = match
		c.Log(slog.LevelInfo, "match started",
			"session_id", session.ID, "mode", match.Mode().String(), "turn", match.Turn())
		gs.send(c, MessageTypeState, match.Board())
		return
	}

	if session.match == nil {
		gs.sendError(c, errNoMatch)
		return
	}
	res, err := session.match.Apply(ctx, gs.gateway, in)
	if err != nil {
		gs.sendError(c, err)
		return
	}

	switch {
	case res.Finished():
		session.match = nil
		gs.registry.matchFinished()
		c.Log(slog.LevelInfo, "match finished", "session_id", session.ID, "winner", res.Winner)
		gs.send(c, MessageTypeGameEnd, GameEndMessageData{Winner: res.Winner, Board: res.Board})
	case res.SavedID != "":
		c.Log(slog.LevelInfo, "match saved", "session_id", session.ID, "save_id", res.SavedID)
		gs.send(c, MessageTypeSaved, SavedMessageData{ID: res.SavedID, Board: res.Board})
	default:
		gs.send(c, MessageTypeState, res.Board)
	}
}

// handleStats provides server statistics
func (gs *GameServer) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gs.registry.Stats())
}

// handleHealth provides health check endpoint
func (gs *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(gs.startTime).String(),
	})
}

// Helper methods

func (gs *GameServer) send(c websocket.Client, msgType MessageType, data any) {
	b, err := encode(msgType, data)
	if err != nil {
		c.Log(slog.LevelError, "error encoding message", "type", string(msgType), "error", err.Error())
		return
	}
	if _, err := c.Write(b); err != nil {
		c.Log(slog.LevelDebug, "error sending message", "type", string(msgType), "error", err.Error())
	}
}

func (gs *GameServer) sendError(c websocket.Client, err error) {
	code := errorCode(err)
	level := slog.LevelDebug
	if code == "internal" {
		level = slog.LevelError
	}
	c.Log(level, "rejecting message", "code", code, "error", err.Error())
	gs.send(c, MessageTypeError, ErrorMessageData{Code: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nolint:errcheck
	json.NewEncoder(w).Encode(v)
}
