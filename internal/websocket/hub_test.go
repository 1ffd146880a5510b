package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-admin-panel/internal/event"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) event.Event {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var e event.Event
	require.NoError(t, json.Unmarshal(data, &e))
	return e
}

func TestHub_SnapshotThenBroadcast(t *testing.T) {
	bus := event.NewBus()
	hub := NewHub(bus, func() event.Event {
		return event.Event{Type: event.TypeStateChanged, Payload: map[string]any{"state": "authenticated"}}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(NewHandler(hub, nil))
	defer srv.Close()

	conn := dial(t, srv)

	first := readEvent(t, conn)
	assert.Equal(t, event.TypeStateChanged, first.Type)

	bus.Publish(event.Event{Type: event.TypeSignedOut, Payload: map[string]any{"redirect": "/login"}})

	next := readEvent(t, conn)
	assert.Equal(t, event.TypeSignedOut, next.Type)
	assert.Equal(t, "/login", next.Payload.(map[string]any)["redirect"])
	assert.NotEmpty(t, next.ID)
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub(event.NewBus(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(NewHandler(hub, []string{"https://admin.example.com"}))
	defer srv.Close()

	header := map[string][]string{"Origin": {"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestHub_StopsOnContextEnd(t *testing.T) {
	hub := NewHub(event.NewBus(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(NewHandler(hub, nil))
	defer srv.Close()
	conn := dial(t, srv)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
