package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Field length limits for AuditEntry
const (
	MaxAuditActionLength  = 100
	MaxAuditDetailsLength = 500
)

// AuditEntry-specific validation errors
var (
	// ErrEmptyAuditID is returned when an audit entry ID is empty or nil.
	ErrEmptyAuditID = errors.New("audit entry ID cannot be empty")

	// ErrEmptyAuditTaskID is returned when an audit entry has no task reference.
	ErrEmptyAuditTaskID = errors.New("audit entry task ID cannot be empty")

	// ErrEmptyAuditAction is returned when an audit entry has no action label.
	ErrEmptyAuditAction = errors.New("audit entry action cannot be empty")

	// ErrAuditActionTooLong is returned when an action label exceeds the limit.
	ErrAuditActionTooLong = errors.New("audit entry action cannot exceed 100 characters")

	// ErrEmptyAuditActor is returned when an audit entry has no actor.
	ErrEmptyAuditActor = errors.New("audit entry actor cannot be empty")

	// ErrAuditDetailsTooLong is returned when the details exceed the limit.
	ErrAuditDetailsTooLong = errors.New("audit entry details cannot exceed 500 characters")
)

// AuditEntry is an immutable record of one action performed against a task.
// Entries are owned by the task they reference and are deleted with it.
type AuditEntry struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	Action    string    `json:"action"`
	ActorID   uuid.UUID `json:"actor_id"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAuditEntry creates a new AuditEntry for the given task, action, and actor.
// Details is a human-readable summary of what changed and may be empty.
// Returns an error if validation fails.
func NewAuditEntry(taskID uuid.UUID, action string, actorID uuid.UUID, details string) (*AuditEntry, error) {
	entry := &AuditEntry{
		ID:        uuid.New(),
		TaskID:    taskID,
		Action:    action,
		ActorID:   actorID,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the AuditEntry has valid data.
// Returns an error if any field fails validation.
func (e *AuditEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyAuditID
	}

	if e.TaskID == uuid.Nil {
		return ErrEmptyAuditTaskID
	}

	if e.Action == "" {
		return ErrEmptyAuditAction
	}

	if len(e.Action) > MaxAuditActionLength {
		return ErrAuditActionTooLong
	}

	if e.ActorID == uuid.Nil {
		return ErrEmptyAuditActor
	}

	if len(e.Details) > MaxAuditDetailsLength {
		return ErrAuditDetailsTooLong
	}

	return nil
}
