package handlers

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rightsdesk/docket-api/config"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// auth happens in the middleware chain, the upgrade itself accepts any origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NotificationHub fans reminder events out to connected staff clients over
// websockets. A staff member may hold several connections at once (desktop
// and phone), each one registered under the same user ID.
type NotificationHub struct {
	mu      sync.RWMutex
	clients map[string]map[*websocket.Conn]bool
}

// NewNotificationHub returns an empty hub
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		clients: map[string]map[*websocket.Conn]bool{},
	}
}

// ServeWS upgrades the request to a websocket and keeps it registered until
// the client goes away
func (h *NotificationHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		config.ErrorStatus("query param user_id is required", http.StatusBadRequest, w, fmt.Errorf("query param user_id is required"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("failed to upgrade websocket", "error", err)
		return
	}

	h.register(userID, conn)
	zap.S().Debugw("websocket client connected", "userId", userID)

	// the read loop only exists to notice the close
	go func() {
		defer func() {
			h.unregister(userID, conn)
			conn.Close()
			zap.S().Debugw("websocket client disconnected", "userId", userID)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast pushes a payload to every open connection of one staff member.
// It satisfies the scheduler's Broadcaster contract and never blocks a
// reminder run on a slow client.
func (h *NotificationHub) Broadcast(userID string, payload interface{}) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[userID]))
	for conn := range h.clients[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(payload); err != nil {
			zap.S().Warnw("failed to push notification, dropping connection",
				"userId", userID,
				"error", err,
			)
			h.unregister(userID, conn)
			conn.Close()
		}
	}
}

func (h *NotificationHub) register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*websocket.Conn]bool{}
	}
	h.clients[userID][conn] = true
}

func (h *NotificationHub) unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[userID], conn)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}
