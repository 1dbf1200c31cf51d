package api

import (
	"database/sql"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/service"
	"github.com/taskhive/taskhive-api/internal/store"
)

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	tasks     service.TaskService
	validator *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{
		tasks:     tasks,
		validator: validator.New(),
	}
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req CreateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		Status:      domain.TaskStatus(req.Status),
		DueDate:     req.DueDate,
	}
	if req.AssigneeID != nil {
		input.AssigneeID = uuid.NullUUID{UUID: *req.AssigneeID, Valid: true}
	}

	task, err := h.tasks.Create(r.Context(), userID, input)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// List handles GET /api/tasks/my-tasks.
// Supported query parameters: filter (created|assigned|all), status,
// priority, and q (title/description search). The literal value "all"
// disables a status or priority filter.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	opts := service.TaskListOptions{
		Search: r.URL.Query().Get("q"),
	}

	switch r.URL.Query().Get("filter") {
	case "created":
		opts.Scope = store.TaskScopeCreated
	case "assigned":
		opts.Scope = store.TaskScopeAssigned
	case "", "all":
		opts.Scope = store.TaskScopeAll
	default:
		RespondWithError(w, r, http.StatusBadRequest, "Invalid filter: must be created, assigned, or all")
		return
	}

	if raw := r.URL.Query().Get("status"); raw != "" && raw != "all" {
		status := domain.TaskStatus(raw)
		switch status {
		case domain.TaskStatusPending, domain.TaskStatusInProgress, domain.TaskStatusCompleted:
			opts.Status = &status
		default:
			RespondWithError(w, r, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}
	if raw := r.URL.Query().Get("priority"); raw != "" && raw != "all" {
		priority := domain.TaskPriority(raw)
		switch priority {
		case domain.TaskPriorityLow, domain.TaskPriorityMedium, domain.TaskPriorityHigh:
			opts.Priority = &priority
		default:
			RespondWithError(w, r, http.StatusBadRequest, "Invalid priority filter")
			return
		}
	}

	tasks, err := h.tasks.List(r.Context(), userID, opts)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(tasks))
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Update handles PUT /api/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.tasks.Update(r.Context(), userID, taskID, buildTaskPatch(&req))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// ListAuditLog handles GET /api/tasks/{id}/logs.
func (h *TaskHandler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.tasks.ListAuditLog(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewAuditLogResponse(entries))
}

// buildTaskPatch converts the wire-level update request into the service
// patch, preserving the absent/null/value distinction of the nullable fields.
func buildTaskPatch(req *UpdateTaskRequest) service.TaskPatch {
	patch := service.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.DueDateSet() {
		due := sql.NullTime{}
		if req.DueDate != nil {
			due = sql.NullTime{Time: *req.DueDate, Valid: true}
		}
		patch.DueDate = &due
	}
	if req.AssigneeSet() {
		assignee := uuid.NullUUID{}
		if req.AssigneeID != nil {
			assignee = uuid.NullUUID{UUID: *req.AssigneeID, Valid: true}
		}
		patch.Assignee = &assignee
	}
	return patch
}
