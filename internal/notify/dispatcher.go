// Package notify implements the notification dispatcher: the single place
// where a notification is durably persisted and, when the recipient has a
// live connection, pushed to it.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/platform/logger"
	"github.com/taskhive/taskhive-api/internal/presence"
	"github.com/taskhive/taskhive-api/internal/store"
)

// EventNotification is the name of the single outbound live event.
const EventNotification = "notification"

// Dispatcher persists notifications and attempts best-effort live delivery.
//
// Persistence is the delivery guarantee: the store write happens before and
// independently of the live push, which is fire-and-forget with no
// acknowledgement and no retry. A client that missed a push recovers by
// fetching its notification list on reconnect.
type Dispatcher struct {
	notifications store.NotificationStore
	registry      presence.Registry
	logger        *slog.Logger
}

// NewDispatcher creates a Dispatcher.
// If logger is nil, the default logger is used.
func NewDispatcher(
	notifications store.NotificationStore,
	registry presence.Registry,
	logger *slog.Logger,
) (*Dispatcher, error) {
	if notifications == nil {
		return nil, domain.NewValidationError("notifications", "cannot be nil", nil)
	}
	if registry == nil {
		return nil, domain.NewValidationError("registry", "cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		notifications: notifications,
		registry:      registry,
		logger:        logger.With(slog.String("component", "dispatcher")),
	}, nil
}

// Dispatch persists a notification for the recipient and pushes it to their
// live connection if one exists.
//
// A nil recipient ID is a warning-level no-op, not an error. The only error
// Dispatch can return is a failure to persist; the live-push step is
// structurally incapable of producing one. Callers dispatching as a side
// effect of a successful mutation must log the error and report the mutation
// as successful regardless.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	recipientID uuid.UUID,
	message string,
	taskID uuid.NullUUID,
) error {
	log := logger.FromContextOrDefault(ctx, d.logger)

	if recipientID == uuid.Nil {
		log.Warn("no recipient for notification",
			slog.String("message", message))
		return nil
	}

	notification, err := domain.NewNotification(recipientID, message, taskID)
	if err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}

	if err := d.notifications.Create(ctx, notification); err != nil {
		log.Error("failed to persist notification",
			slog.String("error", err.Error()),
			slog.String("recipient_id", recipientID.String()))
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	conn, online := d.registry.Lookup(recipientID)
	if !online {
		log.Debug("recipient offline, notification stored",
			slog.String("recipient_id", recipientID.String()),
			slog.String("notification_id", notification.ID.String()))
		return nil
	}

	// Fire-and-forget: Send never blocks and never reports failure.
	conn.Send(EventNotification, notification)
	log.Debug("notification pushed to live connection",
		slog.String("recipient_id", recipientID.String()),
		slog.String("notification_id", notification.ID.String()))

	return nil
}
