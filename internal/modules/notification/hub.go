package notification

import (
	"sync"

	"github.com/gorilla/websocket"

	"veriflow/internal/domain"
)

// Hub tracks live websocket connections by user. Admin and verifier
// connections are indexed separately so workflow events can fan out to the
// review team without touching regular users.
type Hub struct {
	connections map[int64]*websocket.Conn
	admins      map[int64]struct{}
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]*websocket.Conn),
		admins:      make(map[int64]struct{}),
	}
}

func (h *Hub) Register(userID int64, role domain.UserRole, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if oldConn, exists := h.connections[userID]; exists && oldConn != nil {
		_ = oldConn.Close()
	}

	h.connections[userID] = conn
	if role == domain.RoleAdmin || role == domain.RoleVerifier {
		h.admins[userID] = struct{}{}
	}
}

func (h *Hub) Unregister(userID int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conn, exists := h.connections[userID]; exists && conn != nil {
		_ = conn.Close()
	}
	delete(h.connections, userID)
	delete(h.admins, userID)
}

func (h *Hub) SendToUser(userID int64, message interface{}) bool {
	h.mutex.RLock()
	conn, exists := h.connections[userID]
	h.mutex.RUnlock()

	if !exists || conn == nil {
		return false
	}

	if err := conn.WriteJSON(message); err != nil {
		h.Unregister(userID)
		return false
	}

	return true
}

// BroadcastToAdmins delivers to every connected admin/verifier and returns
// how many connections received the message.
func (h *Hub) BroadcastToAdmins(message interface{}) int {
	h.mutex.RLock()
	ids := make([]int64, 0, len(h.admins))
	for id := range h.admins {
		ids = append(ids, id)
	}
	h.mutex.RUnlock()

	sent := 0
	for _, id := range ids {
		if h.SendToUser(id, message) {
			sent++
		}
	}
	return sent
}

func (h *Hub) BroadcastToAll(message interface{}) int {
	h.mutex.RLock()
	ids := make([]int64, 0, len(h.connections))
	for id := range h.connections {
		ids = append(ids, id)
	}
	h.mutex.RUnlock()

	sent := 0
	for _, id := range ids {
		if h.SendToUser(id, message) {
			sent++
		}
	}
	return sent
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.connections[userID]
	return exists
}

func (h *Hub) GetOnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, conn := range h.connections {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.connections, userID)
		delete(h.admins, userID)
	}
}
