package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/diazdennis/task-board-next/internal/db"
)

type Handler struct {
	BoardRepo   *db.BoardRepository
	TaskRepo    *db.TaskRepository
	RateLimiter *RateLimiter
	WSHub       *WSHub
}

// Register wires all routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/boards", h.HandleBoards)
	mux.HandleFunc("/boards/", h.HandleBoardByID)
	mux.HandleFunc("/tasks", h.HandleTasks)
	mux.HandleFunc("/tasks/", h.HandleTaskByID)
	mux.HandleFunc("/ws", h.HandleWebSocket)
}

type RateLimiter struct {
	attempts map[string]int
	limit    int
	mutex    sync.Mutex
	window   time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		attempts: make(map[string]int),
		limit:    limit,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	count, exists := rl.attempts[ip]
	if !exists {
		rl.attempts[ip] = 1
		return true
	}
	if count >= rl.limit {
		return false
	}
	rl.attempts[ip]++
	return true
}

func (rl *RateLimiter) cleanup() {
	for {
		time.Sleep(rl.window)
		rl.mutex.Lock()
		rl.attempts = make(map[string]int)
		rl.mutex.Unlock()
	}
}

// errorResponse is the envelope for every non-2xx body. Details maps
// field name to message and is present only on validation failures.
type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func sendJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func sendError(w http.ResponseWriter, msg string, code int) {
	sendJSON(w, code, errorResponse{Error: msg})
}

func sendValidationError(w http.ResponseWriter, details map[string]string) {
	sendJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation failed", Details: details})
}

func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(strings.ToLower(ct), "application/json")
}

// deref flattens an optional JSON string for validation; absent and
// null both validate as empty.
func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// nullable converts an optional input string to its stored form: a
// value that trims to empty becomes NULL, matching the API contract
// that empty optional fields are cleared rather than stored as "".
// The validator skips those same values, so nothing unvalidated is
// ever persisted.
func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
