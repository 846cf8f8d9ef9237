package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// TaskStatuses lists the allowed status values in lifecycle order.
var TaskStatuses = []string{
	string(TaskStatusTodo),
	string(TaskStatusInProgress),
	string(TaskStatusDone),
}

var TaskPriorities = []string{
	string(TaskPriorityLow),
	string(TaskPriorityMedium),
	string(TaskPriorityHigh),
}

// Task belongs to exactly one board. Status is never null; the other
// optional fields serialize as explicit null when unset.
type Task struct {
	ID          string        `json:"id"`
	BoardID     string        `json:"boardId"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Status      TaskStatus    `json:"status"`
	Priority    *TaskPriority `json:"priority"`
	AssignedTo  *string       `json:"assignedTo"`
	DueDate     *time.Time    `json:"dueDate"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// StatusOrdinal maps a status to its lifecycle position (TODO first).
// Unknown values sort last.
func StatusOrdinal(s TaskStatus) int {
	switch s {
	case TaskStatusTodo:
		return 1
	case TaskStatusInProgress:
		return 2
	case TaskStatusDone:
		return 3
	default:
		return 4
	}
}

func NewTaskID() string { return uuid.New().String() }
