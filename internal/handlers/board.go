package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/diazdennis/task-board-next/internal/db"
	"github.com/diazdennis/task-board-next/internal/models"
	"github.com/diazdennis/task-board-next/internal/validate"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var boardSchema = map[string]validate.Rule{
	"name":        {Label: "Board name", Required: true, MaxLength: 255},
	"description": {Label: "Description", MaxLength: 1000},
	"color":       {Pattern: hexColor, Message: "Color must be a valid hex code"},
}

/*
handles routes:
GET /boards - list boards
POST /boards - create board
*/
func (h *Handler) HandleBoards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listBoards(w, r)
	case http.MethodPost:
		h.createBoard(w, r)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

/*
handles routes:
GET /boards/{id} - board including its tasks
DELETE /boards/{id} - delete board, cascading to tasks
*/
func (h *Handler) HandleBoardByID(w http.ResponseWriter, r *http.Request) {
	boardID := strings.TrimPrefix(r.URL.Path, "/boards/")
	if boardID == "" {
		sendError(w, "Board ID is required", http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.getBoard(w, r, boardID)
	case http.MethodDelete:
		h.deleteBoard(w, r, boardID)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listBoards(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	boards, err := h.BoardRepo.List(ctx)
	if err != nil {
		log.Printf("Error fetching boards: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, boards)
}

func (h *Handler) createBoard(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var input struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Color       *string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	details := validate.Form(map[string]string{
		"name":        input.Name,
		"description": deref(input.Description),
		"color":       deref(input.Color),
	}, boardSchema)
	if len(details) > 0 {
		sendValidationError(w, details)
		return
	}

	now := time.Now().UTC()
	board := &models.Board{
		ID:          models.NewBoardID(),
		Name:        strings.TrimSpace(input.Name),
		Description: nullable(deref(input.Description)),
		Color:       nullable(deref(input.Color)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.BoardRepo.Create(ctx, board); err != nil {
		log.Printf("Error creating board: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Location", "/boards/"+board.ID)
	sendJSON(w, http.StatusCreated, board)
}

// boardWithTasks is the GET /boards/{id} response shape: every board
// field plus the owned tasks.
type boardWithTasks struct {
	*models.Board
	Tasks []*models.Task `json:"tasks"`
}

func (h *Handler) getBoard(w http.ResponseWriter, r *http.Request, boardID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	board, err := h.BoardRepo.GetByID(ctx, boardID)
	if errors.Is(err, db.ErrNotFound) {
		sendError(w, "Board not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error fetching board: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	tasks, err := h.TaskRepo.ListByBoardID(ctx, boardID)
	if err != nil {
		log.Printf("Error fetching board tasks: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, boardWithTasks{Board: board, Tasks: tasks})
}

func (h *Handler) deleteBoard(w http.ResponseWriter, r *http.Request, boardID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	removed, err := h.BoardRepo.DeleteCascade(ctx, boardID)
	if errors.Is(err, db.ErrNotFound) {
		sendError(w, "Board not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error deleting board: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"message":           "Board and all associated tasks deleted successfully",
		"deletedTasksCount": removed,
	})
}
