package services

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/cartonmill/cartones-backend/utils/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressHub fans generation progress out to connected websocket clients so
// a UI can follow an in-flight order.
type ProgressHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{clients: make(map[*websocket.Conn]chan []byte)}
}

// HandleWebSocket upgrades the request and keeps the client subscribed until
// it disconnects.
func (h *ProgressHub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("[WS] upgrade error: %v", err)
		return
	}

	send := make(chan []byte, 32)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()
	logger.Infof("[WS] progress client connected (total=%d)", h.clientCount())

	go h.writePump(conn, send)
	h.readPump(conn)
}

func (h *ProgressHub) readPump(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *ProgressHub) writePump(conn *websocket.Conn, send chan []byte) {
	for msg := range send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (h *ProgressHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
	h.mu.Unlock()
	conn.Close()
}

func (h *ProgressHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends one progress event to every client. Slow clients drop
// events rather than stall generation.
func (h *ProgressHub) Broadcast(p Progress) {
	msg, err := json.Marshal(p)
	if err != nil {
		return
	}
	h.mu.Lock()
	for _, send := range h.clients {
		select {
		case send <- msg:
		default:
		}
	}
	h.mu.Unlock()
}
