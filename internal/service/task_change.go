package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
)

// TaskPatch carries the fields present in an update request. A nil pointer
// means the field was absent and must be left untouched; for the nullable
// fields (assignee, due date) the inner Valid flag distinguishes "set to a
// value" from "clear".
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *domain.TaskPriority
	Status      *domain.TaskStatus
	DueDate     *sql.NullTime
	Assignee    *uuid.NullUUID
}

// NotificationTarget pairs a recipient with the message the dispatcher
// should deliver.
type NotificationTarget struct {
	RecipientID uuid.UUID
	Message     string
}

// TaskChange is the outcome of applying a patch: the new task state, the
// human-readable change descriptions destined for the audit log, and the
// notification targets the change produced.
type TaskChange struct {
	Task    domain.Task
	Changes []string
	Targets []NotificationTarget
}

// ApplyTaskPatch computes the effect of a patch on a task without performing
// any I/O. Only fields present in the patch are applied, and only applied
// fields that differ from their prior value contribute a change description.
//
// Notification targets follow the task's stakeholders: the creator when the
// actor is someone else, the (new) assignee when set and not the actor, and
// a previous assignee who was just reassigned away, with a distinct
// "unassigned" message. Targets are not deduplicated: an actor who is, say,
// both creator and prior assignee of record can appear twice. The caller is
// expected to have verified the actor's edit permission already.
func ApplyTaskPatch(
	actorID uuid.UUID,
	current domain.Task,
	patch TaskPatch,
	now time.Time,
) (TaskChange, error) {
	updated := current
	var changes []string

	if patch.Title != nil && *patch.Title != current.Title {
		if *patch.Title == "" {
			return TaskChange{}, domain.ErrEmptyTaskTitle
		}
		if len(*patch.Title) > domain.MaxTaskTitleLength {
			return TaskChange{}, domain.ErrTaskTitleTooLong
		}
		updated.Title = *patch.Title
		changes = append(changes, fmt.Sprintf("Title changed to %q", updated.Title))
	}

	if patch.Description != nil && *patch.Description != current.Description {
		if len(*patch.Description) > domain.MaxTaskDescriptionLength {
			return TaskChange{}, domain.ErrTaskDescriptionTooLong
		}
		updated.Description = *patch.Description
		changes = append(changes, "Description updated")
	}

	if patch.Priority != nil && *patch.Priority != current.Priority {
		if !isValidPriority(*patch.Priority) {
			return TaskChange{}, domain.ErrInvalidTaskPriority
		}
		updated.Priority = *patch.Priority
		changes = append(changes, fmt.Sprintf("Priority changed to %s", updated.Priority))
	}

	if patch.Status != nil && *patch.Status != current.Status {
		if !isValidStatus(*patch.Status) {
			return TaskChange{}, domain.ErrInvalidTaskStatus
		}
		updated.Status = *patch.Status
		changes = append(changes, fmt.Sprintf("Status changed from %s to %s", current.Status, updated.Status))
	}

	if patch.DueDate != nil {
		switch {
		case patch.DueDate.Valid:
			// A newly supplied due date must be strictly in the future; an
			// untouched stored due date is allowed to age into the past.
			if !patch.DueDate.Time.After(now) {
				return TaskChange{}, domain.ErrDueDateInPast
			}
			if current.DueDate == nil || !current.DueDate.Equal(patch.DueDate.Time) {
				due := patch.DueDate.Time
				updated.DueDate = &due
				changes = append(changes, fmt.Sprintf("Due date changed to %s", due.Format("2006-01-02")))
			}
		case current.DueDate != nil:
			updated.DueDate = nil
			changes = append(changes, "Due date cleared")
		}
	}

	previousAssignee := current.AssigneeID
	if patch.Assignee != nil && *patch.Assignee != current.AssigneeID {
		updated.AssigneeID = *patch.Assignee
		if updated.AssigneeID.Valid {
			changes = append(changes, "Task reassigned")
		} else {
			changes = append(changes, "Assignee removed")
		}
	}

	if len(changes) > 0 {
		updated.UpdatedAt = now
	}

	updatedMsg := fmt.Sprintf("Task updated: %s", updated.Title)
	var targets []NotificationTarget

	if current.CreatorID != actorID {
		targets = append(targets, NotificationTarget{
			RecipientID: current.CreatorID,
			Message:     updatedMsg,
		})
	}

	if updated.AssigneeID.Valid && updated.AssigneeID.UUID != actorID {
		targets = append(targets, NotificationTarget{
			RecipientID: updated.AssigneeID.UUID,
			Message:     updatedMsg,
		})
	}

	reassignedAway := previousAssignee.Valid &&
		(!updated.AssigneeID.Valid || updated.AssigneeID.UUID != previousAssignee.UUID)
	if reassignedAway && previousAssignee.UUID != actorID {
		targets = append(targets, NotificationTarget{
			RecipientID: previousAssignee.UUID,
			Message:     fmt.Sprintf("Task unassigned: %s", updated.Title),
		})
	}

	return TaskChange{
		Task:    updated,
		Changes: changes,
		Targets: targets,
	}, nil
}

func isValidPriority(p domain.TaskPriority) bool {
	switch p {
	case domain.TaskPriorityLow, domain.TaskPriorityMedium, domain.TaskPriorityHigh:
		return true
	default:
		return false
	}
}

func isValidStatus(s domain.TaskStatus) bool {
	switch s {
	case domain.TaskStatusPending, domain.TaskStatusInProgress, domain.TaskStatusCompleted:
		return true
	default:
		return false
	}
}
