package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
)

// NotificationStore defines the interface for notification persistence.
// Records are created only by the dispatcher; after creation the only
// permitted mutation is flipping the read flag.
type NotificationStore interface {
	// Create durably persists a new unread notification.
	// It must succeed independently of whether the recipient is reachable.
	// Returns validation errors from the domain Notification if data is invalid.
	Create(ctx context.Context, notification *domain.Notification) error

	// ListByRecipient retrieves every notification for the recipient,
	// newest first, regardless of read state.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error)

	// MarkAllRead flips every currently-unread notification for the recipient
	// to read and returns how many were changed. A repeat call returns 0.
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)

	// MarkRead flips a single notification to read only if it belongs to the
	// recipient and is currently unread, returning the updated record.
	// Returns ErrNotificationNotFound when the notification is missing,
	// owned by someone else, or already read.
	MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) (*domain.Notification, error)
}
