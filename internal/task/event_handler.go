package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/events"
)

// EntryTaskCreator creates an analysis task for an entry.
type EntryTaskCreator interface {
	CreateTask(entryID uuid.UUID) (Task, error)
}

// Submitter accepts tasks for execution.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler turns entry analysis requests into submitted tasks.
type TaskFactoryEventHandler struct {
	factory EntryTaskCreator
	runner  Submitter
	logger  *slog.Logger
}

// NewTaskFactoryEventHandler creates a new handler.
func NewTaskFactoryEventHandler(
	factory EntryTaskCreator,
	runner Submitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With(slog.String("component", "task_factory_event_handler")),
	}
}

// HandleEvent implements events.EventHandler.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event.Type != TaskTypeEntryAnalysis {
		return nil
	}

	var payload entryAnalysisPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	t, err := h.factory.CreateTask(payload.EntryID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, t); err != nil {
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.DebugContext(ctx, "submitted analysis task",
		slog.String("task_id", t.ID().String()),
		slog.String("entry_id", payload.EntryID.String()),
		slog.String("event_id", event.ID.String()))
	return nil
}

// EntryAnalysisRequest builds the event that asks for entryID to be analyzed.
func EntryAnalysisRequest(entryID uuid.UUID) (*events.TaskRequestEvent, error) {
	return events.NewTaskRequestEvent(TaskTypeEntryAnalysis, entryAnalysisPayload{EntryID: entryID})
}
