package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
)

// TaskScope selects which relationship to the user a task list covers.
type TaskScope string

// Possible task list scopes
const (
	// TaskScopeAll matches tasks the user created or is assigned to.
	TaskScopeAll TaskScope = "all"

	// TaskScopeCreated matches only tasks the user created.
	TaskScopeCreated TaskScope = "created"

	// TaskScopeAssigned matches only tasks assigned to the user.
	TaskScopeAssigned TaskScope = "assigned"
)

// TaskFilter narrows a task listing. UserID is required; the zero values of
// the remaining fields mean "no constraint".
type TaskFilter struct {
	// UserID anchors the listing: only tasks visible to this user are returned.
	UserID uuid.UUID

	// Scope selects created/assigned/all relative to UserID. Empty means all.
	Scope TaskScope

	// Status restricts results to a single status when non-nil.
	Status *domain.TaskStatus

	// Priority restricts results to a single priority when non-nil.
	Priority *domain.TaskPriority

	// Search matches title or description case-insensitively when non-empty.
	Search string
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update persists the task's current field values.
	// Returns ErrTaskNotFound if the task does not exist.
	// Concurrent updates are last-write-wins; no optimistic locking is applied.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task and its audit log entries in a single
	// transaction, deleting the entries first so no orphaned entry can
	// outlive its task. Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves tasks matching the filter, newest first.
	// Returns an empty slice when nothing matches.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
}

// TaskAuditStore defines the interface for audit log persistence.
// Entries are append-only; they are removed only when their task is deleted.
type TaskAuditStore interface {
	// Create appends a new audit entry.
	// Returns validation errors from the domain AuditEntry if data is invalid.
	// Returns ErrInvalidEntity if the referenced task does not exist.
	Create(ctx context.Context, entry *domain.AuditEntry) error

	// ListByTask retrieves all audit entries for a task, newest first.
	// Returns an empty slice when the task has no entries.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.AuditEntry, error)
}
