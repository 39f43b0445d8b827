package websocket_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gwebsocket "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkahng/chopsticks/websocket"
)

func dial(t *testing.T, s *httptest.Server) *gwebsocket.Conn {
	t.Helper()
	rawWS, _, err := gwebsocket.DefaultDialer.Dial(
		"ws"+strings.TrimPrefix(s.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rawWS.Close() })
	return rawWS
}

func TestWSHandler(t *testing.T) {
	testBytes := []byte("testing")

	upgrader := websocket.DefaultUpgrader([]string{"*"})

	// synchronization helpers
	doneReg := make(chan websocket.Client, 1)
	doneUnreg := make(chan websocket.Client, 2)

	var c websocket.Client

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	manager := websocket.NewManager()
	go manager.Run(ctx)

	h := websocket.ServeWS(
		upgrader,
		websocket.DefaultSetupConn,
		websocket.NewClientFactory(nil),
		func(ctx context.Context, cf context.CancelFunc, _c websocket.Client) error {
			c = _c
			manager.RegisterClient(ctx, cf, c)
			doneReg <- c
			return nil
		},
		func(_c websocket.Client) {
			manager.UnregisterClient(_c)
			doneUnreg <- _c
		},
		50*time.Second,
		[]websocket.MessageHandler{func(c websocket.Client, b []byte) { _, _ = c.Write(b) }},
	)

	// setup and connect to the the test server using a basic websocket
	s := httptest.NewServer(h)
	defer s.Close()
	rawWS := dial(t, s)

	// once registration is done, the manager should have one client
	<-doneReg
	assert.Equal(t, 1, len(manager.Clients()))

	// write a message to the server; this will be echoed back
	err := rawWS.WriteMessage(gwebsocket.TextMessage, testBytes)
	require.NoError(t, err)
	_, msg, err := rawWS.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, testBytes, msg)

	// close the connection, which should trigger the server to cleanup and
	// unregister the client connection
	_ = rawWS.WriteControl(gwebsocket.CloseMessage, nil, time.Now().Add(1*time.Second))
	_p := <-doneUnreg
	assert.Equal(t, c, _p)
	assert.Eventually(t, func() bool { return len(manager.Clients()) == 0 }, time.Second, 10*time.Millisecond)

	_, err = c.Write([]byte("late"))
	assert.ErrorIs(t, err, websocket.ErrClientClosed)
}

func TestWSHandlerRejectsOnCreateError(t *testing.T) {
	h := websocket.ServeWS(
		websocket.DefaultUpgrader([]string{"*"}),
		websocket.DefaultSetupConn,
		websocket.NewClientFactory(nil),
		func(context.Context, context.CancelFunc, websocket.Client) error {
			return errors.New("full")
		},
		func(websocket.Client) {},
		time.Minute,
		nil,
	)
	s := httptest.NewServer(h)
	defer s.Close()
	rawWS := dial(t, s)

	_, _, err := rawWS.ReadMessage()
	var closeErr *gwebsocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, gwebsocket.CloseTryAgainLater, closeErr.Code)
	assert.Equal(t, "full", closeErr.Text)
}

func TestDefaultUpgraderChecksOrigin(t *testing.T) {
	upgrader := websocket.DefaultUpgrader([]string{"http://allowed.test"})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "http://allowed.test")
	assert.True(t, upgrader.CheckOrigin(r))

	r.Header.Set("Origin", "http://evil.test")
	assert.False(t, upgrader.CheckOrigin(r))
}

func TestManagerClosesClientsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	manager := websocket.NewManager()
	stopped := make(chan struct{})
	go func() {
		manager.Run(ctx)
		close(stopped)
	}()

	registered := make(chan struct{}, 1)
	h := websocket.ServeWS(
		websocket.DefaultUpgrader([]string{"*"}),
		websocket.DefaultSetupConn,
		websocket.NewClientFactory(nil),
		func(ctx context.Context, cf context.CancelFunc, c websocket.Client) error {
			manager.RegisterClient(ctx, cf, c)
			registered <- struct{}{}
			return nil
		},
		manager.UnregisterClient,
		time.Minute,
		nil,
	)
	s := httptest.NewServer(h)
	defer s.Close()
	rawWS := dial(t, s)
	<-registered

	cancel()
	<-stopped

	_, _, err := rawWS.ReadMessage()
	assert.Error(t, err)
	assert.Empty(t, manager.Clients())
}
