package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/platform/logger"
	"github.com/taskhive/taskhive-api/internal/store"
)

// Audit action labels written by the task service.
const (
	auditActionCreated = "Task Created"
	auditActionUpdated = "Task Updated"
)

// Dispatcher is the notification boundary the task service depends on.
// Implementations persist the notification and attempt best-effort live
// delivery; the only error they may return is a persistence failure.
type Dispatcher interface {
	Dispatch(ctx context.Context, recipientID uuid.UUID, message string, taskID uuid.NullUUID) error
}

// CreateTaskInput carries the fields of a task creation request.
// Zero values fall back to the domain defaults (medium priority, pending
// status, empty description, no assignee, no due date).
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	Status      domain.TaskStatus
	DueDate     *time.Time
	AssigneeID  uuid.NullUUID
}

// TaskListOptions narrows a my-tasks listing.
type TaskListOptions struct {
	Scope    store.TaskScope
	Status   *domain.TaskStatus
	Priority *domain.TaskPriority
	Search   string
}

// TaskService is the mutation engine for tasks: it enforces permission
// rules, computes diffs, records audit entries, and hands notification
// targets to the dispatcher. Notification failures never fail a mutation.
type TaskService interface {
	// Create persists a new task for the actor, audits it, and notifies the
	// assignee when one is set and is not the actor.
	Create(ctx context.Context, actorID uuid.UUID, input CreateTaskInput) (*domain.Task, error)

	// Update applies a patch to a task the actor may edit (creator or
	// current assignee), audits the change, and notifies the stakeholders.
	// Returns store.ErrTaskNotFound or ErrForbidden.
	Update(ctx context.Context, actorID, taskID uuid.UUID, patch TaskPatch) (*domain.Task, error)

	// Delete removes a task and its audit log. Only the creator may delete.
	// The assignee, when set and not the actor, is notified before removal.
	Delete(ctx context.Context, actorID, taskID uuid.UUID) error

	// Get fetches a single task the actor may view (creator or assignee).
	Get(ctx context.Context, actorID, taskID uuid.UUID) (*domain.Task, error)

	// List fetches the actor's tasks (created or assigned, per options),
	// newest first.
	List(ctx context.Context, actorID uuid.UUID, opts TaskListOptions) ([]*domain.Task, error)

	// ListAuditLog fetches a task's audit entries, newest first, for an
	// actor who may view the task.
	ListAuditLog(ctx context.Context, actorID, taskID uuid.UUID) ([]*domain.AuditEntry, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	tasks      store.TaskStore
	audits     store.TaskAuditStore
	dispatcher Dispatcher
	logger     *slog.Logger
}

// Ensure taskServiceImpl implements TaskService
var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	audits store.TaskAuditStore,
	dispatcher Dispatcher,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", nil)
	}
	if audits == nil {
		return nil, domain.NewValidationError("audits", "cannot be nil", nil)
	}
	if dispatcher == nil {
		return nil, domain.NewValidationError("dispatcher", "cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:      tasks,
		audits:     audits,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "task_service")),
	}, nil
}

// Create implements TaskService.Create.
func (s *taskServiceImpl) Create(
	ctx context.Context,
	actorID uuid.UUID,
	input CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(actorID, input.Title)
	if err != nil {
		return nil, err
	}

	task.Description = input.Description
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	if input.Status != "" {
		task.Status = input.Status
	}
	task.DueDate = input.DueDate
	task.AssigneeID = input.AssigneeID

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, NewTaskServiceError("create", "failed to persist task", err)
	}

	entry, err := domain.NewAuditEntry(
		task.ID,
		auditActionCreated,
		actorID,
		fmt.Sprintf("Task %q was created", task.Title),
	)
	if err != nil {
		return nil, NewTaskServiceError("create", "failed to build audit entry", err)
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		return nil, NewTaskServiceError("create", "failed to record audit entry", err)
	}

	if task.AssigneeID.Valid && task.AssigneeID.UUID != actorID {
		s.notify(ctx, task.AssigneeID.UUID,
			fmt.Sprintf("New task assigned: %s", task.Title), task.ID)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("creator_id", actorID.String()))
	return task, nil
}

// Update implements TaskService.Update.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	actorID, taskID uuid.UUID,
	patch TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	current, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !current.CanEdit(actorID) {
		return nil, fmt.Errorf("%w: only the creator or assignee may edit this task", ErrForbidden)
	}

	change, err := ApplyTaskPatch(actorID, *current, patch, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, &change.Task); err != nil {
		return nil, NewTaskServiceError("update", "failed to persist task", err)
	}

	entry, err := domain.NewAuditEntry(
		taskID,
		auditActionUpdated,
		actorID,
		strings.Join(change.Changes, ", "),
	)
	if err != nil {
		return nil, NewTaskServiceError("update", "failed to build audit entry", err)
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		return nil, NewTaskServiceError("update", "failed to record audit entry", err)
	}

	for _, target := range change.Targets {
		s.notify(ctx, target.RecipientID, target.Message, taskID)
	}

	log.Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("actor_id", actorID.String()),
		slog.Int("change_count", len(change.Changes)))
	return &change.Task, nil
}

// Delete implements TaskService.Delete.
func (s *taskServiceImpl) Delete(ctx context.Context, actorID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if !task.CanDelete(actorID) {
		return fmt.Errorf("%w: only the creator may delete this task", ErrForbidden)
	}

	// Notify the assignee before the task and its data disappear.
	if task.AssigneeID.Valid && task.AssigneeID.UUID != actorID {
		s.notify(ctx, task.AssigneeID.UUID,
			fmt.Sprintf("Task deleted: %s", task.Title), taskID)
	}

	// The store removes the audit entries and the task in one transaction.
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return NewTaskServiceError("delete", "failed to delete task", err)
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("actor_id", actorID.String()))
	return nil
}

// Get implements TaskService.Get.
func (s *taskServiceImpl) Get(ctx context.Context, actorID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !task.CanView(actorID) {
		return nil, fmt.Errorf("%w: only the creator or assignee may view this task", ErrForbidden)
	}

	return task, nil
}

// List implements TaskService.List.
func (s *taskServiceImpl) List(
	ctx context.Context,
	actorID uuid.UUID,
	opts TaskListOptions,
) ([]*domain.Task, error) {
	scope := opts.Scope
	if scope == "" {
		scope = store.TaskScopeAll
	}

	return s.tasks.List(ctx, store.TaskFilter{
		UserID:   actorID,
		Scope:    scope,
		Status:   opts.Status,
		Priority: opts.Priority,
		Search:   opts.Search,
	})
}

// ListAuditLog implements TaskService.ListAuditLog.
func (s *taskServiceImpl) ListAuditLog(
	ctx context.Context,
	actorID, taskID uuid.UUID,
) ([]*domain.AuditEntry, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !task.CanView(actorID) {
		return nil, fmt.Errorf("%w: only the creator or assignee may view this task's log", ErrForbidden)
	}

	return s.audits.ListByTask(ctx, taskID)
}

// notify dispatches a single notification as a best-effort side effect.
// The mutation that triggered it has already succeeded, so a dispatch
// failure is logged and swallowed here, never propagated.
func (s *taskServiceImpl) notify(ctx context.Context, recipientID uuid.UUID, message string, taskID uuid.UUID) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ref := uuid.NullUUID{UUID: taskID, Valid: true}
	if err := s.dispatcher.Dispatch(ctx, recipientID, message, ref); err != nil {
		log.Error("failed to dispatch notification",
			slog.String("error", err.Error()),
			slog.String("recipient_id", recipientID.String()),
			slog.String("task_id", taskID.String()))
	}
}
