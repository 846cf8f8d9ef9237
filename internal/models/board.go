package models

import (
	"time"

	"github.com/google/uuid"
)

// Board groups tasks. Deleting a board removes all of its tasks.
type Board struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Color       *string   `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewBoardID() string { return uuid.New().String() }
