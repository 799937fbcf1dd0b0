// Package realtime pushes board and thread updates to connected websocket
// clients. Clients subscribe to rooms; the hub fans events out to every
// member of a room.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/14ChannelBBS/Qua/internal/logger"
)

// Room names. Board rooms carry thread-list updates, thread rooms carry new
// responses for that thread.
//
//	board:{boardId}
//	thread:{boardId}_{threadKey}
const (
	EventUpdateThreads = "updateThreads"
	EventNewResponse   = "newResponse"
)

type envelope struct {
	Type string `json:"type"`
	Body any    `json:"body"`
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: map[string]map[*Client]struct{}{}}
}

func (h *Hub) join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = map[*Client]struct{}{}
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast marshals event once and queues it for every member of room.
// Clients whose send buffer is full are dropped rather than blocked on.
// Queuing happens under the room lock: a client's send channel is only
// closed after leave() has removed it, so no send can race the close.
func (h *Hub) Broadcast(room, eventType string, body any) {
	payload, err := json.Marshal(envelope{Type: eventType, Body: body})
	if err != nil {
		logger.Log.Error("failed to marshal realtime event", "type", eventType, "error", err)
		return
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.rooms[room] {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logger.Log.Warn("realtime client too slow, disconnecting", "room", room)
		h.leave(c)
		c.conn.Close()
	}
}

// RoomCount reports how many clients are in room. Used by tests and metrics.
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
