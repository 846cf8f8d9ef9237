package client

import (
	"sort"

	"github.com/diazdennis/task-board-next/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type FilterStatus string

const (
	FilterAll        FilterStatus = "ALL"
	FilterTodo       FilterStatus = FilterStatus(models.TaskStatusTodo)
	FilterInProgress FilterStatus = FilterStatus(models.TaskStatusInProgress)
	FilterDone       FilterStatus = FilterStatus(models.TaskStatusDone)
)

type SortField string

const (
	SortByTitle  SortField = "title"
	SortByStatus SortField = "status"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type SortOption struct {
	Field SortField
	Order SortOrder
}

// VisibleTasks is the board-detail view transform: filter by status,
// then stable-sort. Titles compare locale-aware; statuses compare by
// lifecycle position. The input list is never mutated.
func VisibleTasks(tasks []models.Task, filter FilterStatus, opt SortOption) []models.Task {
	result := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter == FilterAll || FilterStatus(t.Status) == filter {
			result = append(result, t)
		}
	}

	col := collate.New(language.Und)
	sort.SliceStable(result, func(i, j int) bool {
		var c int
		switch opt.Field {
		case SortByStatus:
			c = models.StatusOrdinal(result[i].Status) - models.StatusOrdinal(result[j].Status)
		default:
			c = col.CompareString(result[i].Title, result[j].Title)
		}
		if opt.Order == SortDesc {
			c = -c
		}
		return c < 0
	})
	return result
}

// CountByStatus tallies tasks per filter value, ALL included.
func CountByStatus(tasks []models.Task) map[FilterStatus]int {
	counts := map[FilterStatus]int{
		FilterAll:        len(tasks),
		FilterTodo:       0,
		FilterInProgress: 0,
		FilterDone:       0,
	}
	for _, t := range tasks {
		counts[FilterStatus(t.Status)]++
	}
	return counts
}
