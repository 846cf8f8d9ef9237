package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/diazdennis/task-board-next/internal/db"
	"github.com/diazdennis/task-board-next/internal/models"
	"github.com/gorilla/websocket"
)

const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskDeleted = "task_deleted"
)

// WSHub tracks WebSocket subscribers per board and fans out task
// events after store writes.
type WSHub struct {
	connections map[string]map[*websocket.Conn]bool
	mutex       sync.Mutex
}

func NewWSHub() *WSHub {
	return &WSHub{connections: make(map[string]map[*websocket.Conn]bool)}
}

// BroadcastTaskEvent sends a task event to all WebSocket connections
// subscribed to the task's board.
func (h *WSHub) BroadcastTaskEvent(event string, task *models.Task) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conns, exists := h.connections[task.BoardID]
	if !exists {
		return
	}

	message, err := json.Marshal(map[string]interface{}{
		"event":   event,
		"taskId":  task.ID,
		"boardId": task.BoardID,
		"title":   task.Title,
		"status":  task.Status,
	})
	if err != nil {
		log.Printf("Failed to marshal task event: %v", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("Failed to send WebSocket message: %v", err)
			delete(conns, conn)
			conn.Close()
		}
	}
}

// HandleWebSocket upgrades GET /ws?board_id={id} and subscribes the
// connection to that board's task events.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := r.RemoteAddr
	if !h.RateLimiter.Allow(clientIP) {
		sendError(w, "Too many WebSocket connection attempts", http.StatusTooManyRequests)
		return
	}

	boardID := r.URL.Query().Get("board_id")
	if boardID == "" {
		sendError(w, "board_id query parameter is required", http.StatusBadRequest)
		return
	}
	if _, err := h.BoardRepo.GetByID(r.Context(), boardID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			sendError(w, "Board not found", http.StatusNotFound)
			return
		}
		log.Printf("Error fetching board: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Adjust for production (e.g., check specific origins)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.WSHub.mutex.Lock()
	if h.WSHub.connections[boardID] == nil {
		h.WSHub.connections[boardID] = make(map[*websocket.Conn]bool)
	}
	h.WSHub.connections[boardID][conn] = true
	h.WSHub.mutex.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.WSHub.mutex.Lock()
			delete(h.WSHub.connections[boardID], conn)
			h.WSHub.mutex.Unlock()
			conn.Close()
			return
		}
		// incoming client messages are ignored
	}
}
