package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diazdennis/task-board-next/internal/models"
)

func serveJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func serverTask(id, title string, status models.TaskStatus) models.Task {
	now := time.Now().UTC()
	return models.Task{
		ID:        id,
		BoardID:   "board-1",
		Title:     title,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTaskCache_FetchReplacesList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveJSON(w, http.StatusOK, []models.Task{
			serverTask("t1", "from server", models.TaskStatusTodo),
		})
	}))
	defer srv.Close()

	tc := NewTaskCache(New(srv.URL), "board-1")
	tc.tasks = []models.Task{serverTask("stale", "stale local", models.TaskStatusDone)}

	if err := tc.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	tasks := tc.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Fatalf("fetch did not replace the list: %+v", tasks)
	}
}

func TestTaskCache_CreateReplacesPlaceholderInPlace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveJSON(w, http.StatusCreated, serverTask("real-id", "new task", models.TaskStatusTodo))
	}))
	defer srv.Close()

	tc := NewTaskCache(New(srv.URL), "board-1")
	tc.tasks = []models.Task{serverTask("t1", "existing", models.TaskStatusTodo)}

	created, err := tc.Create(context.Background(), CreateTaskInput{BoardID: "board-1", Title: "new task"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "real-id" {
		t.Errorf("created.ID = %q", created.ID)
	}

	tasks := tc.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	// placeholder position is preserved: appended last, replaced last
	if tasks[1].ID != "real-id" {
		t.Errorf("authoritative task not in placeholder position: %+v", tasks)
	}
	for _, task := range tasks {
		if strings.HasPrefix(task.ID, "temp-") {
			t.Errorf("temp id survived reconciliation: %q", task.ID)
		}
	}
}

func TestTaskCache_PlaceholderParsesDateOnlyDueDate(t *testing.T) {
	var duringRequest []models.Task
	var tc *TaskCache

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		duringRequest = tc.Tasks()
		serveJSON(w, http.StatusCreated, serverTask("real-id", "t", models.TaskStatusTodo))
	}))
	defer srv.Close()

	tc = NewTaskCache(New(srv.URL), "board-1")
	if _, err := tc.Create(context.Background(), CreateTaskInput{
		BoardID: "board-1", Title: "t", DueDate: "2026-04-01",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// bare YYYY-MM-DD is a valid due date on the wire, so the
	// placeholder carries it too
	if len(duringRequest) != 1 || duringRequest[0].DueDate == nil {
		t.Fatalf("placeholder dropped the due date: %+v", duringRequest)
	}
	want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if !duringRequest[0].DueDate.Equal(want) {
		t.Errorf("placeholder dueDate = %v, want %v", duringRequest[0].DueDate, want)
	}
}

func TestMergeTask_DueDateFormatsAndWhitespace(t *testing.T) {
	base := serverTask("t1", "t", models.TaskStatusTodo)

	day := "2026-04-01"
	merged := mergeTask(base, UpdateTaskInput{DueDate: &day})
	if merged.DueDate == nil || !merged.DueDate.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date-only dueDate not applied: %+v", merged.DueDate)
	}

	stamp := "2026-04-01T09:30:00Z"
	merged = mergeTask(base, UpdateTaskInput{DueDate: &stamp})
	if merged.DueDate == nil || merged.DueDate.Hour() != 9 {
		t.Fatalf("RFC 3339 dueDate not applied: %+v", merged.DueDate)
	}

	blank := " "
	merged = mergeTask(merged, UpdateTaskInput{DueDate: &blank})
	if merged.DueDate != nil {
		t.Errorf("whitespace dueDate should clear, got %v", merged.DueDate)
	}
}

func TestTaskCache_CreateRollbackOnFailure(t *testing.T) {
	var tc *TaskCache
	var duringRequest []models.Task

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the optimistic placeholder must be visible while the
		// request is outstanding
		duringRequest = tc.Tasks()
		serveJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}))
	defer srv.Close()

	tc = NewTaskCache(New(srv.URL), "board-1")
	tc.tasks = []models.Task{serverTask("t1", "existing", models.TaskStatusTodo)}

	_, err := tc.Create(context.Background(), CreateTaskInput{BoardID: "board-1", Title: "doomed"})
	if err == nil {
		t.Fatal("expected an error")
	}

	if len(duringRequest) != 2 || !strings.HasPrefix(duringRequest[1].ID, "temp-") {
		t.Errorf("placeholder missing during the request: %+v", duringRequest)
	}

	tasks := tc.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Errorf("list not returned to pre-mutation state: %+v", tasks)
	}
	if tc.Err() == nil {
		t.Error("expected the failure to be surfaced via Err")
	}
}

func TestTaskCache_UpdateAppliesPatchThenAuthoritative(t *testing.T) {
	authoritative := serverTask("t1", "server title", models.TaskStatusDone)
	var duringRequest []models.Task
	var tc *TaskCache

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		duringRequest = tc.Tasks()
		serveJSON(w, http.StatusOK, authoritative)
	}))
	defer srv.Close()

	tc = NewTaskCache(New(srv.URL), "board-1")
	tc.tasks = []models.Task{serverTask("t1", "old title", models.TaskStatusTodo)}

	status := string(models.TaskStatusDone)
	updated, err := tc.Update(context.Background(), "t1", UpdateTaskInput{Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	// speculative merge only touched the provided field
	if duringRequest[0].Status != models.TaskStatusDone || duringRequest[0].Title != "old title" {
		t.Errorf("speculative state wrong: %+v", duringRequest[0])
	}
	if updated.Title != "server title" {
		t.Errorf("authoritative version not returned: %+v", updated)
	}
	if tc.Tasks()[0].Title != "server title" {
		t.Errorf("authoritative version not stored: %+v", tc.Tasks())
	}
}

func TestTaskCache_UpdateRestoresSnapshotOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveJSON(w, http.StatusBadRequest, map[string]string{"error": "Validation failed"})
	}))
	defer srv.Close()

	tc := NewTaskCache(New(srv.URL), "board-1")
	original := serverTask("t1", "original", models.TaskStatusTodo)
	tc.tasks = []models.Task{original}

	title := "changed"
	if _, err := tc.Update(context.Background(), "t1", UpdateTaskInput{Title: &title}); err == nil {
		t.Fatal("expected an error")
	}

	got := tc.Tasks()[0]
	if got.Title != "original" || got.Status != models.TaskStatusTodo {
		t.Errorf("snapshot not restored: %+v", got)
	}
}

func TestTaskCache_DeleteRestoresWholeListOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}))
	defer srv.Close()

	tc := NewTaskCache(New(srv.URL), "board-1")
	tc.tasks = []models.Task{
		serverTask("t1", "first", models.TaskStatusTodo),
		serverTask("t2", "second", models.TaskStatusDone),
	}

	if err := tc.Delete(context.Background(), "t1"); err == nil {
		t.Fatal("expected an error")
	}

	tasks := tc.Tasks()
	if len(tasks) != 2 || tasks[0].ID != "t1" || tasks[1].ID != "t2" {
		t.Errorf("whole-list snapshot not restored in order: %+v", tasks)
	}
}

func TestTaskCache_DeleteRemovesImmediately(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
	}))
	defer srv.Close()

	tc := NewTaskCache(New(srv.URL), "board-1")
	tc.tasks = []models.Task{serverTask("t1", "bye", models.TaskStatusTodo)}

	if err := tc.Delete(context.Background(), "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(tc.Tasks()) != 0 {
		t.Errorf("task still present: %+v", tc.Tasks())
	}
}

func TestBoardCache_CreateAndRollback(t *testing.T) {
	fail := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			serveJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "Validation failed",
				"details": map[string]string{"name": "Board name is required"},
			})
			return
		}
		now := time.Now().UTC()
		serveJSON(w, http.StatusCreated, models.Board{ID: "b1", Name: "Real", CreatedAt: now, UpdatedAt: now})
	}))
	defer srv.Close()

	bc := NewBoardCache(New(srv.URL))

	created, err := bc.Create(context.Background(), CreateBoardInput{Name: "Real"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "b1" || len(bc.Boards()) != 1 {
		t.Fatalf("board not stored: %+v", bc.Boards())
	}

	fail = true
	if _, err := bc.Create(context.Background(), CreateBoardInput{}); err == nil {
		t.Fatal("expected an error")
	}
	boards := bc.Boards()
	if len(boards) != 1 || boards[0].ID != "b1" {
		t.Errorf("placeholder not rolled back: %+v", boards)
	}

	// field details are carried through the client error
	var apiErr *APIError
	if err := bc.Err(); err != nil {
		var ok bool
		apiErr, ok = err.(*APIError)
		if !ok {
			t.Fatalf("expected *APIError, got %T", err)
		}
	}
	if apiErr == nil || apiErr.Details["name"] != "Board name is required" {
		t.Errorf("details not decoded: %+v", apiErr)
	}
}

func TestBoardCache_DeleteRestoresListOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveJSON(w, http.StatusNotFound, map[string]string{"error": "Board not found"})
	}))
	defer srv.Close()

	bc := NewBoardCache(New(srv.URL))
	now := time.Now().UTC()
	bc.boards = []models.Board{
		{ID: "b1", Name: "one", CreatedAt: now, UpdatedAt: now},
		{ID: "b2", Name: "two", CreatedAt: now, UpdatedAt: now},
	}

	if err := bc.Delete(context.Background(), "b2"); err == nil {
		t.Fatal("expected an error")
	}
	boards := bc.Boards()
	if len(boards) != 2 || boards[1].ID != "b2" {
		t.Errorf("list not restored: %+v", boards)
	}
}
