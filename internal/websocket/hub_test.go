package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tourID := int64(1)
		if r.URL.Query().Get("tour") == "2" {
			tourID = 2
		}
		hub.ServeWs(w, r, tourID)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastReachesTourWatchers(t *testing.T) {
	hub, srv := startHub(t)

	watcher := dial(t, srv, "tour=1")
	other := dial(t, srv, "tour=2")
	require.Eventually(t, func() bool {
		return hub.GetClientCount(1) == 1 && hub.GetClientCount(2) == 1
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastBookingConfirmed(1, 55, 4)

	require.NoError(t, watcher.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := watcher.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageTypeBookingConfirmed, msg.Type)
	assert.Equal(t, int64(1), msg.TourID)
	assert.Equal(t, int64(55), msg.BookingID)
	assert.Equal(t, 4, msg.AvailableSlots)
	assert.NotZero(t, msg.Timestamp)

	// The watcher of another tour gets nothing.
	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, "tour=1")
	require.Eventually(t, func() bool { return hub.GetClientCount(1) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.GetClientCount(1) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_SlotsUpdatedMessage(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, "tour=2")
	require.Eventually(t, func() bool { return hub.GetClientCount(2) == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastSlotsUpdated(2, 0)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"slots_updated"`)
	assert.Contains(t, string(data), `"available_slots":0`)
}
