package events

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans auth events out to connected admin watchers. One connection per
// watcher; a reconnect displaces the previous socket.
type Hub struct {
	watchers map[int64]*websocket.Conn
	mutex    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		watchers: make(map[int64]*websocket.Conn),
	}
}

func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if oldConn, exists := h.watchers[userID]; exists && oldConn != nil {
		_ = oldConn.Close()
	}

	h.watchers[userID] = conn
}

func (h *Hub) Unregister(userID int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conn, exists := h.watchers[userID]; exists && conn != nil {
		_ = conn.Close()
		delete(h.watchers, userID)
	}
}

// Broadcast writes the event to every watcher. Dead connections are dropped;
// delivery is best effort by design.
func (h *Hub) Broadcast(event any) {
	h.mutex.RLock()
	conns := make(map[int64]*websocket.Conn, len(h.watchers))
	for id, conn := range h.watchers {
		conns[id] = conn
	}
	h.mutex.RUnlock()

	for id, conn := range conns {
		if conn == nil {
			continue
		}
		if err := conn.WriteJSON(event); err != nil {
			h.Unregister(id)
		}
	}
}

func (h *Hub) WatcherCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.watchers)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, conn := range h.watchers {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.watchers, id)
	}
}
