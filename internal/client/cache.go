package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/diazdennis/task-board-next/internal/models"
)

// CreateBoardInput mirrors the POST /boards body.
type CreateBoardInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// CreateTaskInput mirrors the POST /tasks body.
type CreateTaskInput struct {
	BoardID     string `json:"boardId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	AssignedTo  string `json:"assignedTo,omitempty"`
}

// UpdateTaskInput mirrors the PATCH /tasks/{id} body. A nil field is
// omitted from the payload and left unchanged by the server; a
// pointer to an empty string clears the (nullable) field.
type UpdateTaskInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	AssignedTo  *string `json:"assignedTo,omitempty"`
}

// tempID synthesizes a placeholder id for an optimistic create. Temp
// ids never reach the server; the authoritative entity replaces the
// placeholder in place on success.
func tempID() string {
	return fmt.Sprintf("temp-%d", time.Now().UnixNano())
}

// BoardCache is the in-memory board list of a single view. It is a
// best-effort mirror: eventually overwritten by the next Fetch or an
// authoritative server response.
type BoardCache struct {
	mu      sync.Mutex
	client  *Client
	boards  []models.Board
	lastErr error
}

func NewBoardCache(c *Client) *BoardCache {
	return &BoardCache{client: c}
}

// Boards returns a copy of the current list.
func (bc *BoardCache) Boards() []models.Board {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	out := make([]models.Board, len(bc.boards))
	copy(out, bc.boards)
	return out
}

// Err returns the error of the most recent failed operation, if the
// last operation failed.
func (bc *BoardCache) Err() error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.lastErr
}

// Fetch replaces the whole list with the server response; no merge.
func (bc *BoardCache) Fetch(ctx context.Context) error {
	var boards []models.Board
	if err := bc.client.Get(ctx, "/boards", &boards); err != nil {
		bc.setErr(err)
		return err
	}
	bc.mu.Lock()
	bc.boards = boards
	bc.lastErr = nil
	bc.mu.Unlock()
	return nil
}

// Create appends a placeholder immediately, then swaps in the server
// board on success or removes the placeholder on failure.
func (bc *BoardCache) Create(ctx context.Context, input CreateBoardInput) (models.Board, error) {
	now := time.Now().UTC()
	placeholder := models.Board{
		ID:          tempID(),
		Name:        input.Name,
		Description: optional(input.Description),
		Color:       optional(input.Color),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	bc.mu.Lock()
	bc.boards = append(bc.boards, placeholder)
	bc.mu.Unlock()

	var created models.Board
	if err := bc.client.Post(ctx, "/boards", input, &created); err != nil {
		bc.mu.Lock()
		bc.boards = removeBoard(bc.boards, placeholder.ID)
		bc.lastErr = err
		bc.mu.Unlock()
		return models.Board{}, err
	}

	bc.mu.Lock()
	for i := range bc.boards {
		if bc.boards[i].ID == placeholder.ID {
			bc.boards[i] = created
			break
		}
	}
	bc.mu.Unlock()
	return created, nil
}

// Delete removes the board immediately and restores the whole
// pre-mutation list if the server refuses.
func (bc *BoardCache) Delete(ctx context.Context, boardID string) error {
	bc.mu.Lock()
	snapshot := make([]models.Board, len(bc.boards))
	copy(snapshot, bc.boards)
	bc.boards = removeBoard(bc.boards, boardID)
	bc.mu.Unlock()

	if err := bc.client.Delete(ctx, "/boards/"+boardID); err != nil {
		bc.mu.Lock()
		bc.boards = snapshot
		bc.lastErr = err
		bc.mu.Unlock()
		return err
	}
	return nil
}

func (bc *BoardCache) setErr(err error) {
	bc.mu.Lock()
	bc.lastErr = err
	bc.mu.Unlock()
}

// TaskCache is the in-memory task list of one board's view.
type TaskCache struct {
	mu      sync.Mutex
	client  *Client
	boardID string
	tasks   []models.Task
	lastErr error
}

func NewTaskCache(c *Client, boardID string) *TaskCache {
	return &TaskCache{client: c, boardID: boardID}
}

func (tc *TaskCache) Tasks() []models.Task {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	out := make([]models.Task, len(tc.tasks))
	copy(out, tc.tasks)
	return out
}

func (tc *TaskCache) Err() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.lastErr
}

// Fetch replaces the whole list with the server response; no merge.
func (tc *TaskCache) Fetch(ctx context.Context) error {
	var tasks []models.Task
	if err := tc.client.Get(ctx, "/tasks?board_id="+tc.boardID, &tasks); err != nil {
		tc.setErr(err)
		return err
	}
	tc.mu.Lock()
	tc.tasks = tasks
	tc.lastErr = nil
	tc.mu.Unlock()
	return nil
}

// Create appends a placeholder with defaulted status/priority, then
// swaps in the server task on success or removes the placeholder on
// failure, returning the list to its pre-mutation state.
func (tc *TaskCache) Create(ctx context.Context, input CreateTaskInput) (models.Task, error) {
	now := time.Now().UTC()
	placeholder := models.Task{
		ID:          tempID(),
		BoardID:     input.BoardID,
		Title:       input.Title,
		Description: optional(input.Description),
		Status:      models.TaskStatusTodo,
		AssignedTo:  optional(input.AssignedTo),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if s := strings.TrimSpace(input.Status); s != "" {
		placeholder.Status = models.TaskStatus(s)
	}
	if p := strings.TrimSpace(input.Priority); p != "" {
		priority := models.TaskPriority(p)
		placeholder.Priority = &priority
	}
	if strings.TrimSpace(input.DueDate) != "" {
		if due, err := parseDate(input.DueDate); err == nil {
			placeholder.DueDate = &due
		}
	}

	tc.mu.Lock()
	tc.tasks = append(tc.tasks, placeholder)
	tc.mu.Unlock()

	var created models.Task
	if err := tc.client.Post(ctx, "/tasks", input, &created); err != nil {
		tc.mu.Lock()
		tc.tasks = removeTask(tc.tasks, placeholder.ID)
		tc.lastErr = err
		tc.mu.Unlock()
		return models.Task{}, err
	}

	tc.mu.Lock()
	for i := range tc.tasks {
		if tc.tasks[i].ID == placeholder.ID {
			tc.tasks[i] = created
			break
		}
	}
	tc.mu.Unlock()
	return created, nil
}

// Update patches the in-memory task immediately (only provided fields
// change), then replaces it with the server's authoritative version
// or restores the pre-mutation snapshot of that one task on failure.
func (tc *TaskCache) Update(ctx context.Context, taskID string, updates UpdateTaskInput) (models.Task, error) {
	tc.mu.Lock()
	idx := -1
	for i := range tc.tasks {
		if tc.tasks[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		tc.mu.Unlock()
		return models.Task{}, fmt.Errorf("task %s not in cache", taskID)
	}
	snapshot := tc.tasks[idx]
	tc.tasks[idx] = mergeTask(snapshot, updates)
	tc.mu.Unlock()

	var updated models.Task
	if err := tc.client.Patch(ctx, "/tasks/"+taskID, updates, &updated); err != nil {
		tc.mu.Lock()
		for i := range tc.tasks {
			if tc.tasks[i].ID == taskID {
				tc.tasks[i] = snapshot
				break
			}
		}
		tc.lastErr = err
		tc.mu.Unlock()
		return models.Task{}, err
	}

	tc.mu.Lock()
	for i := range tc.tasks {
		if tc.tasks[i].ID == taskID {
			tc.tasks[i] = updated
			break
		}
	}
	tc.mu.Unlock()
	return updated, nil
}

// Delete removes the task immediately and restores the whole
// pre-mutation list if the server refuses.
func (tc *TaskCache) Delete(ctx context.Context, taskID string) error {
	tc.mu.Lock()
	snapshot := make([]models.Task, len(tc.tasks))
	copy(snapshot, tc.tasks)
	tc.tasks = removeTask(tc.tasks, taskID)
	tc.mu.Unlock()

	if err := tc.client.Delete(ctx, "/tasks/"+taskID); err != nil {
		tc.mu.Lock()
		tc.tasks = snapshot
		tc.lastErr = err
		tc.mu.Unlock()
		return err
	}
	return nil
}

func (tc *TaskCache) setErr(err error) {
	tc.mu.Lock()
	tc.lastErr = err
	tc.mu.Unlock()
}

// mergeTask applies a partial update the same way the server does:
// provided fields overwrite, empty values clear nullable fields.
func mergeTask(t models.Task, updates UpdateTaskInput) models.Task {
	if updates.Title != nil {
		t.Title = strings.TrimSpace(*updates.Title)
	}
	if updates.Description != nil {
		t.Description = optional(*updates.Description)
	}
	if updates.Status != nil && strings.TrimSpace(*updates.Status) != "" {
		t.Status = models.TaskStatus(*updates.Status)
	}
	if updates.Priority != nil {
		if strings.TrimSpace(*updates.Priority) == "" {
			t.Priority = nil
		} else {
			priority := models.TaskPriority(*updates.Priority)
			t.Priority = &priority
		}
	}
	if updates.DueDate != nil {
		if strings.TrimSpace(*updates.DueDate) == "" {
			t.DueDate = nil
		} else if due, err := parseDate(*updates.DueDate); err == nil {
			t.DueDate = &due
		}
	}
	if updates.AssignedTo != nil {
		t.AssignedTo = optional(*updates.AssignedTo)
	}
	return t
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// parseDate accepts the same two due date formats the server does: a
// full RFC 3339 timestamp or a bare YYYY-MM-DD day.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func removeBoard(boards []models.Board, id string) []models.Board {
	out := boards[:0]
	for _, b := range boards {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

func removeTask(tasks []models.Task, id string) []models.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
