package task

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskTypeEntryAnalysis is the type of tasks that score a journal entry.
const TaskTypeEntryAnalysis = "entry_analysis"

// Task is a unit of background work.
type Task interface {
	ID() uuid.UUID
	Type() string
	Payload() []byte
	Status() TaskStatus
	Execute(ctx context.Context) error
}

// Record is a task as stored in the database.
type Record struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       TaskStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TaskStore persists tasks.
type TaskStore interface {
	// SaveTask stores a new task.
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus sets the status and error message of a task.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// ClaimTask moves a pending task to processing and reports whether
	// this caller won it.
	ClaimTask(ctx context.Context, taskID uuid.UUID) (bool, error)

	// GetPendingTasks returns every pending task, oldest first.
	GetPendingTasks(ctx context.Context) ([]Record, error)

	// GetProcessingTasks returns processing tasks last updated more than
	// olderThan ago. Zero returns all of them.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Record, error)

	// WithTx returns a TaskStore bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}
