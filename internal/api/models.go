package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// Username echoes the registered display name
	Username string `json:"username"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreateTaskRequest defines the payload for task creation.
// Omitted optional fields fall back to server defaults.
type CreateTaskRequest struct {
	Title       string     `json:"title"        validate:"required,max=200"`
	Description string     `json:"description"  validate:"omitempty,max=2000"`
	Priority    string     `json:"priority"     validate:"omitempty,oneof=low medium high"`
	Status      string     `json:"status"       validate:"omitempty,oneof=pending in_progress completed"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
}

// UpdateTaskRequest defines the payload for task updates. Every field is
// optional; absent fields are untouched. For due_date and assignee_id an
// explicit JSON null clears the stored value, which is why presence is
// tracked separately from the value.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Priority    *string    `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Status      *string    `json:"status"      validate:"omitempty,oneof=pending in_progress completed"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`

	// dueDateSet and assigneeSet record whether the key appeared in the
	// request body at all; see UnmarshalJSON.
	dueDateSet  bool
	assigneeSet bool
}

// UnmarshalJSON records which nullable keys were present so that "absent"
// and "null" can be told apart.
func (r *UpdateTaskRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateTaskRequest
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	_, r.dueDateSet = keys["due_date"]
	_, r.assigneeSet = keys["assignee_id"]
	return nil
}

// DueDateSet reports whether the due_date key appeared in the request.
func (r *UpdateTaskRequest) DueDateSet() bool { return r.dueDateSet }

// AssigneeSet reports whether the assignee_id key appeared in the request.
func (r *UpdateTaskRequest) AssigneeSet() bool { return r.assigneeSet }

// TaskResponse is the JSON shape of a task.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	CreatorID   uuid.UUID  `json:"creator_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTaskResponse maps a domain task onto its JSON shape.
func NewTaskResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		DueDate:     task.DueDate,
		CreatorID:   task.CreatorID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.AssigneeID.Valid {
		assignee := task.AssigneeID.UUID
		resp.AssigneeID = &assignee
	}
	return resp
}

// NewTaskListResponse maps a slice of domain tasks.
func NewTaskListResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, NewTaskResponse(task))
	}
	return out
}

// AuditEntryResponse is the JSON shape of one audit log entry.
type AuditEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	Action    string    `json:"action"`
	ActorID   uuid.UUID `json:"actor_id"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAuditLogResponse maps domain audit entries onto their JSON shape.
func NewAuditLogResponse(entries []*domain.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, AuditEntryResponse{
			ID:        entry.ID,
			TaskID:    entry.TaskID,
			Action:    entry.Action,
			ActorID:   entry.ActorID,
			Details:   entry.Details,
			CreatedAt: entry.CreatedAt,
		})
	}
	return out
}

// NotificationResponse is the JSON shape of a notification.
type NotificationResponse struct {
	ID          uuid.UUID  `json:"id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	Message     string     `json:"message"`
	Read        bool       `json:"read"`
	TaskID      *uuid.UUID `json:"task_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewNotificationResponse maps a domain notification onto its JSON shape.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Message:     n.Message,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt,
	}
	if n.TaskID.Valid {
		taskID := n.TaskID.UUID
		resp.TaskID = &taskID
	}
	return resp
}

// NewNotificationListResponse maps a slice of domain notifications.
func NewNotificationListResponse(notifications []*domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, NewNotificationResponse(n))
	}
	return out
}

// MarkAllReadResponse reports how many notifications a mark-all-read flipped.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// UserResponse is the JSON shape of a user in assignment pickers.
// It deliberately omits email-adjacent secrets and timestamps.
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// NewUserResponse maps a domain user onto its JSON shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// NewUserListResponse maps a slice of domain users.
func NewUserListResponse(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}
