package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/14ChannelBBS/Qua/internal/logger"
	"github.com/14ChannelBBS/Qua/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// cookies carry no authority on this endpoint, every event is public
	CheckOrigin: func(*http.Request) bool { return true },
}

func (h *Handler) Websocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Debug("websocket upgrade failed", "error", err)
		return
	}
	realtime.NewClient(h.hub, conn)
}
