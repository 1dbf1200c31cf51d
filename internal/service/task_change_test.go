package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive-api/internal/domain"
)

func ptr[T any](v T) *T {
	return &v
}

// baseTask returns a task created by creatorID with stable timestamps,
// suitable as the "current" state for patch tests.
func baseTask(creatorID uuid.UUID) domain.Task {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Task{
		ID:          uuid.New(),
		Title:       "Ship release notes",
		Description: "Draft and publish",
		Priority:    domain.TaskPriorityMedium,
		Status:      domain.TaskStatusPending,
		CreatorID:   creatorID,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestApplyTaskPatch_FieldChanges(t *testing.T) {
	t.Parallel()

	creator := uuid.New()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	t.Run("empty patch produces no changes and no targets", func(t *testing.T) {
		t.Parallel()
		current := baseTask(creator)

		change, err := ApplyTaskPatch(creator, current, TaskPatch{}, now)
		require.NoError(t, err)
		assert.Empty(t, change.Changes, "no fields supplied should mean no changes")
		assert.Empty(t, change.Targets)
		assert.Equal(t, current.UpdatedAt, change.Task.UpdatedAt,
			"UpdatedAt should not move when nothing changed")
	})

	t.Run("patch equal to current values is a no-op", func(t *testing.T) {
		t.Parallel()
		current := baseTask(creator)
		patch := TaskPatch{
			Title:    ptr(current.Title),
			Priority: ptr(current.Priority),
			Status:   ptr(current.Status),
		}

		change, err := ApplyTaskPatch(creator, current, patch, now)
		require.NoError(t, err)
		assert.Empty(t, change.Changes)
		assert.Equal(t, current.UpdatedAt, change.Task.UpdatedAt)
	})

	t.Run("title change is applied and described", func(t *testing.T) {
		t.Parallel()
		current := baseTask(creator)

		change, err := ApplyTaskPatch(creator, current, TaskPatch{Title: ptr("New title")}, now)
		require.NoError(t, err)
		assert.Equal(t, "New title", change.Task.Title)
		assert.Equal(t, []string{`Title changed to "New title"`}, change.Changes)
		assert.Equal(t, now, change.Task.UpdatedAt)
	})

	t.Run("empty title is rejected", func(t *testing.T) {
		t.Parallel()
		current := baseTask(creator)

		_, err := ApplyTaskPatch(creator, current, TaskPatch{Title: ptr("")}, now)
		assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
	})

	t.Run("status change records old and new value", func(t *testing.T) {
		t.Parallel()
		current := baseTask(creator)

		change, err := ApplyTaskPatch(creator, current,
			TaskPatch{Status: ptr(domain.TaskStatusInProgress)}, now)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusInProgress, change.Task.Status)
		assert.Contains(t, change.Changes, "Status changed from pending to in_progress")
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		t.Parallel()
		current := baseTask(creator)

		_, err := ApplyTaskPatch(creator, current,
			TaskPatch{Status: ptr(domain.TaskStatus("archived"))}, now)
		assert.ErrorIs(t, err, domain.ErrInvalidTaskStatus)
	})

	t.Run("invalid priority is rejected", func(t *testing.T) {
		t.Parallel()
		current := baseTask(creator)

		_, err := ApplyTaskPatch(creator, current,
			TaskPatch{Priority: ptr(domain.TaskPriority("urgent"))}, now)
		assert.ErrorIs(t, err, domain.ErrInvalidTaskPriority)
	})

	t.Run("description change uses a generic description", func(t *testing.T) {
		t.Parallel()
		current := baseTask(creator)

		change, err := ApplyTaskPatch(creator, current,
			TaskPatch{Description: ptr("Rewritten")}, now)
		require.NoError(t, err)
		assert.Equal(t, "Rewritten", change.Task.Description)
		assert.Equal(t, []string{"Description updated"}, change.Changes)
	})
}

func TestApplyTaskPatch_DueDate(t *testing.T) {
	t.Parallel()

	creator := uuid.New()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	t.Run("future due date is applied", func(t *testing.T) {
		t.Parallel()
		current := baseTask(creator)
		due := now.Add(72 * time.Hour)

		change, err := ApplyTaskPatch(creator, current,
			TaskPatch{DueDate: &sql.NullTime{Time: due, Valid: true}}, now)
		require.NoError(t, err)
		require.NotNil(t, change.Task.DueDate)
		assert.True(t, change.Task.DueDate.Equal(due))
		assert.Contains(t, change.Changes, "Due date changed to 2025-06-13")
	})

	t.Run("past due date is rejected", func(t *testing.T) {
		t.Parallel()
		current := baseTask(creator)

		_, err := ApplyTaskPatch(creator, current,
			TaskPatch{DueDate: &sql.NullTime{Time: now.Add(-time.Hour), Valid: true}}, now)
		assert.ErrorIs(t, err, domain.ErrDueDateInPast)
	})

	t.Run("null due date clears an existing one", func(t *testing.T) {
		t.Parallel()
		current := baseTask(creator)
		due := now.Add(24 * time.Hour)
		current.DueDate = &due

		change, err := ApplyTaskPatch(creator, current,
			TaskPatch{DueDate: &sql.NullTime{}}, now)
		require.NoError(t, err)
		assert.Nil(t, change.Task.DueDate)
		assert.Contains(t, change.Changes, "Due date cleared")
	})

	t.Run("null due date on a task without one is a no-op", func(t *testing.T) {
		t.Parallel()
		current := baseTask(creator)

		change, err := ApplyTaskPatch(creator, current,
			TaskPatch{DueDate: &sql.NullTime{}}, now)
		require.NoError(t, err)
		assert.Empty(t, change.Changes)
	})

	t.Run("aged stored due date does not block unrelated updates", func(t *testing.T) {
		t.Parallel()
		current := baseTask(creator)
		past := now.Add(-48 * time.Hour)
		current.DueDate = &past

		change, err := ApplyTaskPatch(creator, current,
			TaskPatch{Status: ptr(domain.TaskStatusCompleted)}, now)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCompleted, change.Task.Status)
		require.NotNil(t, change.Task.DueDate)
		assert.True(t, change.Task.DueDate.Equal(past), "stored due date must be preserved")
	})
}

func TestApplyTaskPatch_NotificationTargets(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	t.Run("creator reassigns from one assignee to another", func(t *testing.T) {
		t.Parallel()
		u1 := uuid.New() // creator, actor
		u2 := uuid.New() // prior assignee
		u3 := uuid.New() // new assignee

		current := baseTask(u1)
		current.AssigneeID = uuid.NullUUID{UUID: u2, Valid: true}

		change, err := ApplyTaskPatch(u1, current,
			TaskPatch{Assignee: &uuid.NullUUID{UUID: u3, Valid: true}}, now)
		require.NoError(t, err)

		assert.Contains(t, change.Changes, "Task reassigned")

		byRecipient := make(map[uuid.UUID]string, len(change.Targets))
		for _, target := range change.Targets {
			byRecipient[target.RecipientID] = target.Message
		}
		assert.Len(t, change.Targets, 2)
		assert.Equal(t, "Task updated: Ship release notes", byRecipient[u3],
			"new assignee should be told about the assignment")
		assert.Equal(t, "Task unassigned: Ship release notes", byRecipient[u2],
			"prior assignee should get the distinct unassigned message")
		assert.NotContains(t, byRecipient, u1, "actor should receive nothing")
	})

	t.Run("assignee edits and notifies only the creator", func(t *testing.T) {
		t.Parallel()
		creator := uuid.New()
		assignee := uuid.New()

		current := baseTask(creator)
		current.AssigneeID = uuid.NullUUID{UUID: assignee, Valid: true}

		change, err := ApplyTaskPatch(assignee, current,
			TaskPatch{Status: ptr(domain.TaskStatusCompleted)}, now)
		require.NoError(t, err)

		require.Len(t, change.Targets, 1)
		assert.Equal(t, creator, change.Targets[0].RecipientID)
		assert.Equal(t, "Task updated: Ship release notes", change.Targets[0].Message)
	})

	t.Run("creator edits own unassigned task and notifies nobody", func(t *testing.T) {
		t.Parallel()
		creator := uuid.New()
		current := baseTask(creator)

		change, err := ApplyTaskPatch(creator, current,
			TaskPatch{Title: ptr("Renamed")}, now)
		require.NoError(t, err)
		assert.Empty(t, change.Targets)
	})

	t.Run("removing the assignee sends only the unassigned message", func(t *testing.T) {
		t.Parallel()
		creator := uuid.New()
		assignee := uuid.New()

		current := baseTask(creator)
		current.AssigneeID = uuid.NullUUID{UUID: assignee, Valid: true}

		change, err := ApplyTaskPatch(creator, current,
			TaskPatch{Assignee: &uuid.NullUUID{}}, now)
		require.NoError(t, err)

		assert.Contains(t, change.Changes, "Assignee removed")
		require.Len(t, change.Targets, 1)
		assert.Equal(t, assignee, change.Targets[0].RecipientID)
		assert.Equal(t, "Task unassigned: Ship release notes", change.Targets[0].Message)
	})

	t.Run("assignee reassigning away from themselves is not notified", func(t *testing.T) {
		t.Parallel()
		creator := uuid.New()
		assignee := uuid.New()
		next := uuid.New()

		current := baseTask(creator)
		current.AssigneeID = uuid.NullUUID{UUID: assignee, Valid: true}

		change, err := ApplyTaskPatch(assignee, current,
			TaskPatch{Assignee: &uuid.NullUUID{UUID: next, Valid: true}}, now)
		require.NoError(t, err)

		byRecipient := make(map[uuid.UUID]string, len(change.Targets))
		for _, target := range change.Targets {
			byRecipient[target.RecipientID] = target.Message
		}
		assert.Len(t, change.Targets, 2)
		assert.Contains(t, byRecipient, creator)
		assert.Contains(t, byRecipient, next)
		assert.NotContains(t, byRecipient, assignee,
			"actor should not be told about their own reassignment")
	})

	t.Run("update notifications fire even for a no-op patch", func(t *testing.T) {
		t.Parallel()
		creator := uuid.New()
		assignee := uuid.New()

		current := baseTask(creator)
		current.AssigneeID = uuid.NullUUID{UUID: assignee, Valid: true}

		change, err := ApplyTaskPatch(assignee, current, TaskPatch{}, now)
		require.NoError(t, err)
		assert.Empty(t, change.Changes)
		require.Len(t, change.Targets, 1)
		assert.Equal(t, creator, change.Targets[0].RecipientID)
	})
}
