package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/diazdennis/task-board-next/internal/db"
	"github.com/diazdennis/task-board-next/internal/models"
	"github.com/diazdennis/task-board-next/internal/validate"
)

var taskSchema = map[string]validate.Rule{
	"title":       {Label: "Task title", Required: true, MaxLength: 255},
	"description": {Label: "Description", MaxLength: 2000},
	"status":      {Label: "Status", Enum: models.TaskStatuses},
	"priority":    {Label: "Priority", Enum: models.TaskPriorities},
	"dueDate":     {Validate: isValidDate, Message: "Due date must be a valid date"},
	"assignedTo":  {Label: "Assigned to", MaxLength: 255},
}

func isValidDate(s string) bool {
	_, err := parseDate(s)
	return err == nil
}

/*
handles routes:
- GET /tasks?board_id={board_id} - list tasks for a board
- POST /tasks - create a new task
*/
func (h *Handler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTasks(w, r)
	case http.MethodPost:
		h.createTask(w, r)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

/*
handles routes:
- PATCH /tasks/{id} - partial update
- DELETE /tasks/{id} - delete task
*/
func (h *Handler) HandleTaskByID(w http.ResponseWriter, r *http.Request) {
	taskID := strings.TrimPrefix(r.URL.Path, "/tasks/")
	if taskID == "" {
		sendError(w, "Task ID is required", http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		h.updateTask(w, r, taskID)
	case http.MethodDelete:
		h.deleteTask(w, r, taskID)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	boardID := r.URL.Query().Get("board_id")
	if boardID == "" {
		sendError(w, "board_id query parameter is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// no board existence check: an unknown board yields an empty list
	tasks, err := h.TaskRepo.ListByBoardID(ctx, boardID)
	if err != nil {
		log.Printf("Error fetching tasks: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, tasks)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var input struct {
		BoardID     string  `json:"boardId"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
		Priority    *string `json:"priority"`
		DueDate     *string `json:"dueDate"`
		AssignedTo  *string `json:"assignedTo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	details := validate.Form(map[string]string{
		"title":       input.Title,
		"description": deref(input.Description),
		"status":      deref(input.Status),
		"priority":    deref(input.Priority),
		"dueDate":     deref(input.DueDate),
		"assignedTo":  deref(input.AssignedTo),
	}, taskSchema)

	// An unknown board is a boardId field error, not a 404.
	if input.BoardID == "" {
		details["boardId"] = "Board ID is required"
	} else {
		_, err := h.BoardRepo.GetByID(ctx, input.BoardID)
		if errors.Is(err, db.ErrNotFound) {
			details["boardId"] = "Board not found"
		} else if err != nil {
			log.Printf("Error checking board: %v", err)
			sendError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}

	if len(details) > 0 {
		sendValidationError(w, details)
		return
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          models.NewTaskID(),
		BoardID:     input.BoardID,
		Title:       strings.TrimSpace(input.Title),
		Description: nullable(deref(input.Description)),
		Status:      models.TaskStatusTodo,
		AssignedTo:  nullable(deref(input.AssignedTo)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// The validator treats values that trim to empty as absent, so the
	// apply decision has to use the same emptiness or an unvalidated
	// whitespace value would slip through.
	if s := strings.TrimSpace(deref(input.Status)); s != "" {
		task.Status = models.TaskStatus(s)
	}
	if p := strings.TrimSpace(deref(input.Priority)); p != "" {
		priority := models.TaskPriority(p)
		task.Priority = &priority
	}
	if d := deref(input.DueDate); strings.TrimSpace(d) != "" {
		due, err := parseDate(d)
		if err != nil {
			sendValidationError(w, map[string]string{"dueDate": "Due date must be a valid date"})
			return
		}
		task.DueDate = &due
	}

	if err := h.TaskRepo.Create(ctx, task); err != nil {
		log.Printf("Error creating task: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.WSHub.BroadcastTaskEvent(EventTaskCreated, task)
	w.Header().Set("Location", "/tasks/"+task.ID)
	sendJSON(w, http.StatusCreated, task)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request, taskID string) {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	// Raw messages keep absent, null and empty distinguishable: only
	// keys present in the payload are validated and applied, and an
	// explicit null clears a nullable field.
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	existing, err := h.TaskRepo.GetByID(ctx, taskID)
	if errors.Is(err, db.ErrNotFound) {
		sendError(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error fetching task: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	updated := *existing
	details := make(map[string]string)
	applied := 0

	if raw, ok := payload["title"]; ok {
		value, err := rawString(raw)
		if err != nil {
			sendError(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
		if msg := validate.Field(value, taskSchema["title"]); msg != "" {
			details["title"] = msg
		} else {
			updated.Title = strings.TrimSpace(value)
			applied++
		}
	}
	if raw, ok := payload["description"]; ok {
		value, err := rawString(raw)
		if err != nil {
			sendError(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
		if msg := validate.Field(value, taskSchema["description"]); msg != "" {
			details["description"] = msg
		} else {
			updated.Description = nullable(value)
			applied++
		}
	}
	if raw, ok := payload["status"]; ok {
		value, err := rawString(raw)
		// status is never null: present-but-empty fails the enum
		// check instead of clearing.
		if err != nil || !contains(models.TaskStatuses, value) {
			details["status"] = "Status must be one of: " + strings.Join(models.TaskStatuses, ", ")
		} else {
			updated.Status = models.TaskStatus(value)
			applied++
		}
	}
	if raw, ok := payload["priority"]; ok {
		value, err := rawString(raw)
		if err != nil || validate.Field(value, taskSchema["priority"]) != "" {
			details["priority"] = "Priority must be one of: " + strings.Join(models.TaskPriorities, ", ")
		} else if strings.TrimSpace(value) == "" {
			updated.Priority = nil
			applied++
		} else {
			priority := models.TaskPriority(value)
			updated.Priority = &priority
			applied++
		}
	}
	if raw, ok := payload["dueDate"]; ok {
		value, err := rawString(raw)
		switch {
		case err != nil:
			details["dueDate"] = "Due date must be a valid date"
		case strings.TrimSpace(value) == "":
			// explicit null (or empty) clears the due date
			updated.DueDate = nil
			applied++
		default:
			due, err := parseDate(value)
			if err != nil {
				details["dueDate"] = "Due date must be a valid date"
			} else {
				updated.DueDate = &due
				applied++
			}
		}
	}
	if raw, ok := payload["assignedTo"]; ok {
		value, err := rawString(raw)
		if err != nil {
			sendError(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
		if msg := validate.Field(value, taskSchema["assignedTo"]); msg != "" {
			details["assignedTo"] = msg
		} else {
			updated.AssignedTo = nullable(value)
			applied++
		}
	}

	if len(details) > 0 {
		sendValidationError(w, details)
		return
	}
	if applied == 0 {
		sendError(w, "No fields to update", http.StatusBadRequest)
		return
	}

	updated.UpdatedAt = time.Now().UTC()
	if err := h.TaskRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			sendError(w, "Task not found", http.StatusNotFound)
			return
		}
		log.Printf("Error updating task: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.WSHub.BroadcastTaskEvent(EventTaskUpdated, &updated)
	sendJSON(w, http.StatusOK, &updated)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request, taskID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	existing, err := h.TaskRepo.GetByID(ctx, taskID)
	if errors.Is(err, db.ErrNotFound) {
		sendError(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error fetching task: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.TaskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			sendError(w, "Task not found", http.StatusNotFound)
			return
		}
		log.Printf("Error deleting task: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.WSHub.BroadcastTaskEvent(EventTaskDeleted, existing)
	sendJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// rawString decodes a raw JSON value as a string; null decodes to "".
func rawString(raw json.RawMessage) (string, error) {
	var p *string
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", err
	}
	if p == nil {
		return "", nil
	}
	return *p, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
