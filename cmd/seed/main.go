// Command seed wipes the store and loads the example boards and
// tasks. It reads the same environment as the server.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/diazdennis/task-board-next/internal/db"
	"github.com/diazdennis/task-board-next/internal/models"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type seedTask struct {
	title       string
	description string
	status      models.TaskStatus
	priority    models.TaskPriority
	assignedTo  string
}

type seedBoard struct {
	name        string
	description string
	color       string
	tasks       []seedTask
}

var boards = []seedBoard{
	{
		name:        "Project Alpha",
		description: "Main project board for Alpha development",
		color:       "#3B82F6",
		tasks: []seedTask{
			{"Set up development environment", "Install dependencies and configure local setup", models.TaskStatusDone, models.TaskPriorityHigh, ""},
			{"Design database schema", "Create ERD and define table relationships", models.TaskStatusDone, models.TaskPriorityHigh, ""},
			{"Implement user authentication", "Add login and registration functionality", models.TaskStatusInProgress, models.TaskPriorityHigh, ""},
			{"Write API documentation", "Document all endpoints with examples", models.TaskStatusTodo, models.TaskPriorityMedium, ""},
			{"Set up CI/CD pipeline", "Configure automated testing and deployment", models.TaskStatusTodo, models.TaskPriorityMedium, ""},
			{"Code review and refactoring", "Review codebase and improve code quality", models.TaskStatusTodo, models.TaskPriorityLow, ""},
		},
	},
	{
		name:        "Marketing Campaign",
		description: "Tasks for Q1 marketing initiatives",
		color:       "#10B981",
		tasks: []seedTask{
			{"Create social media content", "Design posts for Instagram, Twitter, and LinkedIn", models.TaskStatusInProgress, models.TaskPriorityHigh, ""},
			{"Schedule email campaign", "Prepare and schedule Q1 newsletter", models.TaskStatusTodo, models.TaskPriorityHigh, ""},
			{"Analyze competitor strategies", "Research and document competitor marketing approaches", models.TaskStatusDone, models.TaskPriorityMedium, ""},
			{"Design landing page", "Create new landing page for campaign", models.TaskStatusTodo, models.TaskPriorityMedium, ""},
		},
	},
	{
		name:        "Bug Fixes",
		description: "Critical bugs and issues to resolve",
		color:       "#EF4444",
		tasks: []seedTask{
			{"Fix login page crash on mobile", "Application crashes when logging in from mobile devices", models.TaskStatusInProgress, models.TaskPriorityHigh, "John Doe"},
			{"Resolve database connection timeout", "Connection times out after 30 seconds of inactivity", models.TaskStatusTodo, models.TaskPriorityHigh, "Jane Smith"},
			{"Fix typo in error message", "Correct spelling error in validation message", models.TaskStatusDone, models.TaskPriorityLow, ""},
			{"Memory leak in dashboard", "Dashboard consumes increasing memory over time", models.TaskStatusTodo, models.TaskPriorityMedium, "John Doe"},
		},
	},
	{
		name:        "Feature Requests",
		description: "New features and enhancements",
		color:       "#8B5CF6",
		tasks: []seedTask{
			{"Add dark mode support", "Implement dark/light theme toggle", models.TaskStatusDone, models.TaskPriorityMedium, ""},
			{"Export data to CSV", "Allow users to export board data as CSV file", models.TaskStatusTodo, models.TaskPriorityLow, ""},
			{"Add task comments", "Let users discuss tasks inline", models.TaskStatusTodo, models.TaskPriorityMedium, ""},
		},
	},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("POSTGRES_HOST"), os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"), os.Getenv("POSTGRES_DB"),
		os.Getenv("POSTGRES_PORT"))

	dbConn, err := db.Connect("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbConn.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, dbConn); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	if err := seed(ctx, dbConn); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding finished")
}

func seed(ctx context.Context, dbConn *sql.DB) error {
	log.Println("Clearing existing data")
	if _, err := dbConn.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return err
	}
	if _, err := dbConn.ExecContext(ctx, `DELETE FROM boards`); err != nil {
		return err
	}

	boardRepo := db.NewBoardRepository(dbConn)
	taskRepo := db.NewTaskRepository(dbConn)

	for _, sb := range boards {
		log.Printf("Creating board %q with %d tasks", sb.name, len(sb.tasks))
		now := time.Now().UTC()
		board := &models.Board{
			ID:          models.NewBoardID(),
			Name:        sb.name,
			Description: &sb.description,
			Color:       &sb.color,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := boardRepo.Create(ctx, board); err != nil {
			return err
		}
		for _, st := range sb.tasks {
			task := &models.Task{
				ID:          models.NewTaskID(),
				BoardID:     board.ID,
				Title:       st.title,
				Description: &st.description,
				Status:      st.status,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			priority := st.priority
			task.Priority = &priority
			if st.assignedTo != "" {
				assignedTo := st.assignedTo
				task.AssignedTo = &assignedTo
			}
			if err := taskRepo.Create(ctx, task); err != nil {
				return err
			}
		}
	}
	return nil
}
