package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskPriority represents the urgency of a task.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// TaskStatus represents the progress state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Field length limits for Task
const (
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 2000
)

// Task-specific validation errors
var (
	// ErrEmptyTaskID is returned when a task ID is empty or nil.
	ErrEmptyTaskID = errors.New("task ID cannot be empty")

	// ErrEmptyTaskTitle is returned when a task title is empty.
	ErrEmptyTaskTitle = errors.New("task title cannot be empty")

	// ErrTaskTitleTooLong is returned when a task title exceeds the length limit.
	ErrTaskTitleTooLong = errors.New("task title cannot exceed 200 characters")

	// ErrTaskDescriptionTooLong is returned when a description exceeds the limit.
	ErrTaskDescriptionTooLong = errors.New("task description cannot exceed 2000 characters")

	// ErrInvalidTaskPriority is returned when a priority is not a valid value.
	ErrInvalidTaskPriority = errors.New("invalid task priority")

	// ErrInvalidTaskStatus is returned when a status is not a valid value.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrEmptyTaskCreator is returned when a task has no creator.
	ErrEmptyTaskCreator = errors.New("task creator cannot be empty")

	// ErrDueDateInPast is returned when a due date is not strictly in the future.
	ErrDueDateInPast = errors.New("due date must be in the future")
)

// Task represents a unit of work created by one user and optionally
// assigned to another. The creator is immutable after creation; only the
// creator or the current assignee may mutate a task, and only the creator
// may delete it.
type Task struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Priority    TaskPriority  `json:"priority"`
	Status      TaskStatus    `json:"status"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	AssigneeID  uuid.NullUUID `json:"assignee_id"`
	CreatorID   uuid.UUID     `json:"creator_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewTask creates a new Task with the given creator and title, applying
// defaults for the remaining fields (medium priority, pending status,
// empty description). Returns an error if validation fails.
func NewTask(creatorID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		Title:     title,
		Priority:  TaskPriorityMedium,
		Status:    TaskStatusPending,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
// The due date is checked against the wall clock: it must be strictly in
// the future whenever it is set.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if len(t.Title) > MaxTaskTitleLength {
		return ErrTaskTitleTooLong
	}

	if len(t.Description) > MaxTaskDescriptionLength {
		return ErrTaskDescriptionTooLong
	}

	if !isValidTaskPriority(t.Priority) {
		return ErrInvalidTaskPriority
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if t.CreatorID == uuid.Nil {
		return ErrEmptyTaskCreator
	}

	if t.DueDate != nil && !t.DueDate.After(time.Now()) {
		return ErrDueDateInPast
	}

	return nil
}

// CanEdit reports whether the given actor is allowed to mutate the task.
// Only the creator and the current assignee may edit.
func (t *Task) CanEdit(actorID uuid.UUID) bool {
	if t.CreatorID == actorID {
		return true
	}
	return t.AssigneeID.Valid && t.AssigneeID.UUID == actorID
}

// CanDelete reports whether the given actor is allowed to delete the task.
// Only the creator may delete.
func (t *Task) CanDelete(actorID uuid.UUID) bool {
	return t.CreatorID == actorID
}

// CanView reports whether the given actor may read the task and its audit
// log. The read policy matches the edit policy.
func (t *Task) CanView(actorID uuid.UUID) bool {
	return t.CanEdit(actorID)
}

// isValidTaskPriority checks if the given priority is a valid TaskPriority.
func isValidTaskPriority(p TaskPriority) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}
