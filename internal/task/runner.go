package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/platform/metrics"
)

// TaskRunnerConfig holds configuration for the task runner.
type TaskRunnerConfig struct {
	// WorkerCount determines how many tasks run concurrently.
	WorkerCount int

	// QueueSize is the buffer size of the in-memory queue.
	QueueSize int

	// StuckTaskAge is how long a task may stay in processing before
	// RequeueStuckTasks resets it.
	StuckTaskAge time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults.
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:  2,
		QueueSize:    100,
		StuckTaskAge: 30 * time.Minute,
	}
}

// TaskRunner executes persisted tasks on a pool of workers.
type TaskRunner struct {
	store      TaskStore
	registry   *Registry
	queue      *TaskQueue
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTaskRunner creates a new TaskRunner. Invalid config values fall back to
// the defaults.
func NewTaskRunner(store TaskStore, registry *Registry, config TaskRunnerConfig, log *slog.Logger) *TaskRunner {
	if store == nil {
		panic("task store cannot be nil")
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if log == nil {
		log = slog.Default()
	}

	defaults := DefaultTaskRunnerConfig()
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.StuckTaskAge <= 0 {
		config.StuckTaskAge = defaults.StuckTaskAge
	}

	log = log.With(slog.String("component", "task_runner"))
	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:    store,
		registry: registry,
		queue:    NewTaskQueue(config.QueueSize, log),
		config:   config,
		logger:   log,
		errHandler: func(task Task, err error) {
			log.Error("task execution failed",
				slog.String("task_id", task.ID().String()),
				slog.String("task_type", task.Type()),
				slog.String("error", err.Error()))
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetErrorHandler replaces the function called when a task fails.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit persists task and queues it. A full queue is not fatal: the task
// stays pending in the store and is picked up by the next recovery.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task); err != nil {
		if errors.Is(err, ErrQueueFull) {
			logger.FromContextOrDefault(ctx, r.logger).Warn("task queue full, task left pending",
				slog.String("task_id", task.ID().String()))
			return nil
		}
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return nil
}

// Start recovers unfinished tasks and starts the workers.
func (r *TaskRunner) Start(ctx context.Context) error {
	if err := r.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.logger.Info("task runner started", slog.Int("workers", r.config.WorkerCount))
	return nil
}

// Stop signals the workers to exit and waits for running tasks to finish.
func (r *TaskRunner) Stop() {
	r.cancel()
	r.queue.Close()
	r.wg.Wait()
	r.logger.Info("task runner stopped")
}

// Recover queues every pending task and resets every processing task left
// behind by a previous process.
func (r *TaskRunner) Recover(ctx context.Context) error {
	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processing, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		slog.Int("pending_count", len(pending)),
		slog.Int("processing_count", len(processing)))

	for _, rec := range pending {
		r.requeue(ctx, rec)
	}
	for _, rec := range processing {
		if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending, "reset after restart"); err != nil {
			r.logger.Error("failed to reset processing task",
				slog.String("task_id", rec.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		r.requeue(ctx, rec)
	}

	return nil
}

// RequeueStuckTasks resets tasks that have been processing for longer than
// StuckTaskAge and queues them again. It returns how many were requeued.
func (r *TaskRunner) RequeueStuckTasks(ctx context.Context) (int, error) {
	stuck, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
	if err != nil {
		return 0, fmt.Errorf("failed to check for stuck tasks: %w", err)
	}

	requeued := 0
	for _, rec := range stuck {
		if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending,
			"reset after being stuck in processing state"); err != nil {
			r.logger.Error("failed to reset stuck task",
				slog.String("task_id", rec.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if r.requeue(ctx, rec) {
			requeued++
		}
	}

	if requeued > 0 {
		r.logger.Info("requeued stuck tasks", slog.Int("count", requeued))
	}
	return requeued, nil
}

// requeue rebuilds rec and queues it. Records that cannot be rebuilt are
// marked failed so they are not retried forever.
func (r *TaskRunner) requeue(ctx context.Context, rec Record) bool {
	log := r.logger.With(
		slog.String("task_id", rec.ID.String()),
		slog.String("task_type", rec.Type))

	t, err := r.registry.Rehydrate(rec)
	if err != nil {
		log.Error("failed to rebuild task", slog.String("error", err.Error()))
		if uErr := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusFailed, err.Error()); uErr != nil {
			log.Error("failed to mark task failed", slog.String("error", uErr.Error()))
		}
		return false
	}

	if err := r.queue.Enqueue(t); err != nil {
		log.Warn("failed to requeue task", slog.String("error", err.Error()))
		return false
	}
	return true
}

func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case t, ok := <-r.queue.Tasks():
			if !ok {
				return
			}
			r.processTask(t, id)
		}
	}
}

func (r *TaskRunner) processTask(t Task, workerID int) {
	log := r.logger.With(
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()),
		slog.Int("worker_id", workerID))
	ctx := logger.WithLogger(context.Background(), log)

	claimed, err := r.store.ClaimTask(ctx, t.ID())
	if err != nil {
		log.Error("failed to claim task", slog.String("error", err.Error()))
		return
	}
	if !claimed {
		log.Debug("task already claimed, skipping")
		return
	}

	start := time.Now()
	if err := t.Execute(ctx); err != nil {
		metrics.RecordTask(t.Type(), string(TaskStatusFailed), time.Since(start))
		if uErr := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusFailed, err.Error()); uErr != nil {
			log.Error("failed to update task status to failed", slog.String("error", uErr.Error()))
		}
		r.errHandler(t, err)
		return
	}

	metrics.RecordTask(t.Type(), string(TaskStatusCompleted), time.Since(start))
	if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusCompleted, ""); err != nil {
		log.Error("failed to update task status to completed", slog.String("error", err.Error()))
		return
	}
	log.Info("task completed", slog.Duration("duration", time.Since(start)))
}
