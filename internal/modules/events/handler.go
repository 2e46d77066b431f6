package events

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Auth happens in middleware before the upgrade, not via Origin.
		return true
	},
}

// Handler exposes the live auth event stream to admin watchers.
type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/events/ws", h.Stream)
}

// Stream upgrades the connection and registers the caller as a watcher. The
// socket is write-only from the server's point of view; the read loop exists
// to notice the client going away.
func (h *Handler) Stream(c *gin.Context) {
	userID := c.GetInt64("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("events upgrade failed user=%d error=%v", userID, err)
		return
	}

	h.hub.Register(userID, conn)
	go h.readUntilClosed(userID, conn)
}

func (h *Handler) readUntilClosed(userID int64, conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.Unregister(userID)
			return
		}
	}
}
