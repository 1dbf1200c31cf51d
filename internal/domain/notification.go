package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxNotificationMessageLength limits the message text of a notification.
const MaxNotificationMessageLength = 500

// Notification-specific validation errors
var (
	// ErrEmptyNotificationID is returned when a notification ID is empty or nil.
	ErrEmptyNotificationID = errors.New("notification ID cannot be empty")

	// ErrEmptyNotificationRecipient is returned when a notification has no recipient.
	ErrEmptyNotificationRecipient = errors.New("notification recipient cannot be empty")

	// ErrEmptyNotificationMessage is returned when a notification has no message.
	ErrEmptyNotificationMessage = errors.New("notification message cannot be empty")

	// ErrNotificationMessageTooLong is returned when the message exceeds the limit.
	ErrNotificationMessageTooLong = errors.New("notification message cannot exceed 500 characters")
)

// Notification is a durable record that a recipient should be told about
// an event, usually a change to a task they care about. The recipient is
// immutable; after creation only the Read flag ever changes.
type Notification struct {
	ID          uuid.UUID     `json:"id"`
	RecipientID uuid.UUID     `json:"recipient_id"`
	Message     string        `json:"message"`
	Read        bool          `json:"read"`
	TaskID      uuid.NullUUID `json:"task_id"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewNotification creates a new unread Notification for the given recipient.
// taskID may be invalid (unset) for notifications that do not reference a task.
// Returns an error if validation fails.
func NewNotification(recipientID uuid.UUID, message string, taskID uuid.NullUUID) (*Notification, error) {
	n := &Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Message:     message,
		TaskID:      taskID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// Validate checks if the Notification has valid data.
// Returns an error if any field fails validation.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNotificationID
	}

	if n.RecipientID == uuid.Nil {
		return ErrEmptyNotificationRecipient
	}

	if n.Message == "" {
		return ErrEmptyNotificationMessage
	}

	if len(n.Message) > MaxNotificationMessageLength {
		return ErrNotificationMessageTooLong
	}

	return nil
}
