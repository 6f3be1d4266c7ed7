package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"taskdeck/internal/apperr"
)

// Event is one entity-change notification pushed to connected clients of the
// owning user. Clients use it to invalidate their cached queries.
type Event struct {
	Event    string    `json:"event"`
	Resource string    `json:"resource"`
	ID       uuid.UUID `json:"id"`
}

// Hub tracks websocket connections per user and fans change events out to
// them.
type Hub struct {
	connections    map[uuid.UUID]map[*websocket.Conn]bool
	mutex          sync.Mutex
	allowedOrigins []string
	logger         *log.Logger
}

func NewHub(allowedOrigins []string, logger *log.Logger) *Hub {
	return &Hub{
		connections:    make(map[uuid.UUID]map[*websocket.Conn]bool),
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// Broadcast sends an event to every connection of the given user. Broken
// connections are dropped.
func (hub *Hub) Broadcast(userID uuid.UUID, ev Event) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	conns, exists := hub.connections[userID]
	if !exists {
		return
	}

	message, err := json.Marshal(ev)
	if err != nil {
		hub.logger.Error("marshal event", "err", err)
		return
	}
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			hub.logger.Warn("drop websocket connection", "err", err)
			delete(conns, conn)
			conn.Close()
		}
	}
}

func (hub *Hub) add(userID uuid.UUID, conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if hub.connections[userID] == nil {
		hub.connections[userID] = make(map[*websocket.Conn]bool)
	}
	hub.connections[userID][conn] = true
}

func (hub *Hub) remove(userID uuid.UUID, conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.connections[userID], conn)
}

// checkOrigin allows every origin when no allowlist is configured.
func (hub *Hub) checkOrigin(r *http.Request) bool {
	if len(hub.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range hub.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// handleWebSocket handles GET /ws: it upgrades the connection and streams
// the caller's change events until the client goes away.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(r)
	if !ok {
		h.respondError(w, apperr.ErrUnauthenticated, "Auth")
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: h.hub.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "err", err)
		return
	}

	h.hub.add(scope.UserID, conn)
	defer func() {
		h.hub.remove(scope.UserID, conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
