package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/artpar/portfolio/internal/estimate"
	"github.com/artpar/portfolio/internal/portfolio"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

type progressEvent struct {
	Type string                     `json:"type"`
	Data portfolio.ProgressEstimate `json:"data"`
}

func readProgress(t *testing.T, conn *websocket.Conn) progressEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev progressEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestHub_BroadcastsProgress(t *testing.T) {
	hub, srv := startHub(t)

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	hub.NotifyProgress(portfolio.ProgressEstimate{ThumbnailsInProgress: 12, Estimate: estimate.Tier(12)})

	for _, conn := range []*websocket.Conn{a, b} {
		ev := readProgress(t, conn)
		assert.Equal(t, EventProgress, ev.Type)
		assert.Equal(t, int64(12), ev.Data.ThumbnailsInProgress)
		assert.Equal(t, estimate.SeverityBusy, ev.Data.Estimate.Severity)
	}
}

func TestHub_LateJoinerGetsLatestProgress(t *testing.T) {
	hub, srv := startHub(t)

	hub.NotifyProgress(portfolio.ProgressEstimate{ThumbnailsInProgress: 3})
	hub.NotifyProgress(portfolio.ProgressEstimate{ThumbnailsInProgress: 4})

	conn := dial(t, srv)
	ev := readProgress(t, conn)
	assert.Equal(t, int64(4), ev.Data.ThumbnailsInProgress)
}

func TestHub_ClientLeaves(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)

	assert.NoError(t, hub.Broadcast(Event{Type: "noop"}))
}

func TestHub_Close(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Close())
	assert.Zero(t, hub.Clients())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
