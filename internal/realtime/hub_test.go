package realtime

import (
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

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		NewClient(hub, conn)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func joinRoom(t *testing.T, conn *websocket.Conn, hub *Hub, room string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(clientMessage{Type: "joinRoom", Room: room}))
	require.Eventually(t, func() bool {
		return hub.RoomCount(room) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestHub_BroadcastReachesRoomMembers(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub)
	joinRoom(t, conn, hub, "board:b")

	hub.Broadcast("board:b", EventUpdateThreads, map[string]string{"board": "b"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type string            `json:"type"`
		Body map[string]string `json:"body"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, EventUpdateThreads, got.Type)
	assert.Equal(t, "b", got.Body["board"])
}

func TestHub_BroadcastSkipsOtherRooms(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub)
	joinRoom(t, conn, hub, "thread:b_100")

	hub.Broadcast("thread:b_200", EventNewResponse, map[string]int{"id": 1})
	hub.Broadcast("thread:b_100", EventNewResponse, map[string]int{"id": 2})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Body map[string]int `json:"body"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 2, got.Body["id"])
}

func TestHub_DisconnectLeavesRooms(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub)
	joinRoom(t, conn, hub, "board:b")

	conn.Close()
	require.Eventually(t, func() bool {
		return hub.RoomCount("board:b") == 0
	}, time.Second, 5*time.Millisecond)
}

func TestHub_SlowClientIsEvictedNotPanicked(t *testing.T) {
	hub := NewHub()

	serverConn := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverConn <- conn
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// no pumps: nothing drains the buffer, so the second broadcast overflows
	c := &Client{hub: hub, conn: <-serverConn, send: make(chan []byte, 1)}
	hub.join("board:b", c)

	hub.Broadcast("board:b", EventUpdateThreads, map[string]string{"board": "b"})
	hub.Broadcast("board:b", EventUpdateThreads, map[string]string{"board": "b"})
	assert.Equal(t, 0, hub.RoomCount("board:b"))

	// the evicted client is gone; further broadcasts see an empty room
	hub.Broadcast("board:b", EventUpdateThreads, map[string]string{"board": "b"})
}

func TestHub_IgnoresMalformedClientMessages(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	joinRoom(t, conn, hub, "board:b")
}
