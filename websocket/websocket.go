// Package websocket
// Author: Jon Brown
// Date: Mar 30, 2024
// URL: https://github.com/brojonat/websocket
//
// Adapted to carry chopsticks sessions: clients log through an injected
// slog.Logger and the manager stops cleanly on shutdown.

package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrClientClosed is returned by Write once the client has shut down.
var ErrClientClosed = errors.New("websocket client closed")

// DefaultSetupConn limits message size and keeps the read deadline moving
// while pongs arrive.
func DefaultSetupConn(c *websocket.Conn) {
	pw := 60 * time.Second
	c.SetReadLimit(4096)
	_ = c.SetReadDeadline(time.Now().Add(pw))
	c.SetPongHandler(func(string) error {
		_ = c.SetReadDeadline(time.Now().Add(pw))
		return nil
	})
}

// DefaultUpgrader accepts connections whose Origin is listed. A "*" entry
// accepts every origin.
func DefaultUpgrader(origins []string) websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		HandshakeTimeout:  0,
		WriteBufferPool:   nil,
		Subprotocols:      nil,
		Error:             nil,
		CheckOrigin:       nil,
		EnableCompression: false,
	}
	upgrader.CheckOrigin = func(r *http.Request) bool {
		if slices.Contains(origins, "*") {
			return true
		}
		return slices.Contains(origins, r.Header.Get("Origin"))
	}
	return upgrader
}

// Client is an interface for reading from and writing to a websocket
// connection. It is designed to be used as a middleman between a service and a
// client websocket connection.
type Client interface {
	io.Writer
	io.Closer

	// WriteForever is responsible for writing messages to the client (including
	// the regularly spaced ping messages)
	WriteForever(context.Context, func(Client), time.Duration)

	// ReadForever is responsible for reading messages from the client, and passing
	// them to the message handlers
	ReadForever(context.Context, func(Client), ...MessageHandler)

	// Log writes through the client's logger with the caller attached
	Log(slog.Level, string, ...any)

	Conn() *websocket.Conn

	// Wait blocks until the client is done processing messages
	Wait()
}

type MessageHandler func(Client, []byte)

// ServeWS upgrades HTTP connections to WebSocket, creates the Client, calls the
// onCreate callback, and starts goroutines that handle reading (writing)
// from (to) the client.
func ServeWS(
	// upgrader upgrades the connection
	upgrader websocket.Upgrader,
	// connSetup is called on the upgraded WebSocket connection to configure
	// the connection
	connSetup func(*websocket.Conn),
	// clientFactory is a function that takes a connection and returns a new Client
	clientFactory func(*websocket.Conn) Client,
	// onCreate is called once the Client exists; returning an error closes
	// the connection before any message is read
	onCreate func(context.Context, context.CancelFunc, Client) error,
	// onDestroy is a function to call after the WebSocket connection is closed
	onDestroy func(Client),
	// ping is the interval at which ping messages are sent
	ping time.Duration,
	// msgHandlers are callbacks that handle messages received from the client
	msgHandlers []MessageHandler,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// if Upgrade fails it closes the connection, so just return
			return
		}
		connSetup(conn)
		client := clientFactory(conn)
		ctx, cf := context.WithCancel(context.Background())
		if err := onCreate(ctx, cf, client); err != nil {
			cf()
			client.Log(slog.LevelWarn, "rejecting connection", "error", err.Error())
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
				time.Now().Add(time.Second))
			_ = conn.Close()
			return
		}

		// all writes will happen in this goroutine, ensuring only one write on
		// the connection at a time
		go client.WriteForever(ctx, onDestroy, ping)

		// all reads will happen in this goroutine, ensuring only one reader on
		// the connection at a time
		go client.ReadForever(ctx, onDestroy, msgHandlers...)
	}
}

type client struct {
	wg     *sync.WaitGroup
	conn   *websocket.Conn
	egress chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// Conn implements Client.
func (c *client) Conn() *websocket.Conn {
	return c.conn
}

// NewClientFactory returns a client factory for ServeWS whose clients log
// to logger.
func NewClientFactory(logger *slog.Logger) func(*websocket.Conn) Client {
	return func(c *websocket.Conn) Client {
		return NewClient(c, logger)
	}
}

// NewClient returns a new Client from a *websocket.Conn.
func NewClient(c *websocket.Conn, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	// add 2 to the wait group for the read/write goroutines
	wg := &sync.WaitGroup{}
	wg.Add(2)
	return &client{
		wg:     wg,
		conn:   c,
		egress: make(chan []byte, 32),
		done:   make(chan struct{}),
		logger: logger.With("remote_addr", c.RemoteAddr().String()),
	}
}

// Write queues p for the write loop.
func (c *client) Write(p []byte) (int, error) {
	select {
	case <-c.done:
		return 0, ErrClientClosed
	default:
	}
	select {
	case c.egress <- p:
		return len(p), nil
	case <-c.done:
		return 0, ErrClientClosed
	}
}

// Close implements the Closer interface. Calling it more than once is a
// no-op; errors from the underlying connection are swallowed.
func (c *client) Close() error {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
		_ = c.conn.Close()
	})
	return nil
}

// WriteForever serially processes messages from the egress channel and writes them
// to the client, ensuring that all writes to the underlying connection are
// performed here.
func (c *client) WriteForever(ctx context.Context, onDestroy func(Client), ping time.Duration) {
	pingTicker := time.NewTicker(ping)
	defer func() {
		c.wg.Done()
		pingTicker.Stop()
		onDestroy(c)
	}()

	for {
		select {
		case <-ctx.Done():
			c.drain()
			_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		case <-c.done:
			return
		case msgBytes := <-c.egress:
			if err := c.conn.WriteMessage(websocket.TextMessage, msgBytes); err != nil {
				c.Log(slog.LevelError, fmt.Sprintf("error writing message: %v", err))
				return
			}
		case <-pingTicker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				c.Log(slog.LevelError, fmt.Sprintf("error writing ping: %v", err))
				return
			}
		}
	}
}

// drain flushes whatever was queued before shutdown.
func (c *client) drain() {
	for {
		select {
		case msgBytes := <-c.egress:
			if err := c.conn.WriteMessage(websocket.TextMessage, msgBytes); err != nil {
				return
			}
		default:
			return
		}
	}
}

// ReadForever serially processes messages from the client and passes them to
// the supplied message handlers. Messages are handled one at a time, so a
// handler never races with itself for the same client.
func (c *client) ReadForever(ctx context.Context, onDestroy func(Client), handlers ...MessageHandler) {
	defer func() {
		c.wg.Done()
		onDestroy(c)
	}()

	ingress := make(chan []byte)
	errCancel := make(chan error, 1)

	// read forever and push into ingress
	go func() {
		for {
			_, payload, err := c.conn.ReadMessage()
			if err != nil {
				errCancel <- err
				return
			}
			select {
			case ingress <- payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.Log(slog.LevelDebug, "read loop cancelled, shutting down")
			return
		case err := <-errCancel:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.Log(slog.LevelWarn, "read loop encountered error, shutting down", "error", err.Error())
			} else {
				c.Log(slog.LevelDebug, "client connection closed in read loop")
			}
			return
		case payload := <-ingress:
			for _, h := range handlers {
				h(c, payload)
			}
		}
	}
}

func (c *client) Log(level slog.Level, s string, args ...any) {
	_, f, l, ok := runtime.Caller(1)
	if ok {
		args = append(args, "caller_source", fmt.Sprintf("%s %d", f, l))
	}
	c.logger.Log(context.Background(), level, s, args...)
}

// Wait blocks until the read/write goroutines have completed
func (c *client) Wait() {
	c.wg.Wait()
}
