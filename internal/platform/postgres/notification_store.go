package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/platform/logger"
	"github.com/taskhive/taskhive-api/internal/store"
)

// PostgresNotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a new PostgreSQL implementation of the
// NotificationStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

// Ensure PostgresNotificationStore implements store.NotificationStore interface
var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

const notificationColumns = `id, recipient_id, message, read, task_id, created_at`

// Create implements store.NotificationStore.Create
// It durably persists a new unread notification, handling domain validation.
func (s *PostgresNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := notification.Validate(); err != nil {
		log.Warn("notification validation failed during create",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return err
	}

	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		notification.ID,
		notification.RecipientID,
		notification.Message,
		notification.Read,
		notification.TaskID,
		notification.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()),
			slog.String("recipient_id", notification.RecipientID.String()))
		return MapError(err)
	}

	log.Debug("notification created",
		slog.String("notification_id", notification.ID.String()),
		slog.String("recipient_id", notification.RecipientID.String()))
	return nil
}

// ListByRecipient implements store.NotificationStore.ListByRecipient
// It retrieves every notification for the recipient, newest first,
// regardless of read state.
func (s *PostgresNotificationStore) ListByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
) ([]*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		log.Error("failed to list notifications",
			slog.String("error", err.Error()),
			slog.String("recipient_id", recipientID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	notifications := []*domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.Message,
			&n.Read,
			&n.TaskID,
			&n.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return notifications, nil
}

// MarkAllRead implements store.NotificationStore.MarkAllRead
// It flips every currently-unread notification for the recipient to read
// and returns how many rows changed. A repeat call returns 0.
func (s *PostgresNotificationStore) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE recipient_id = $1 AND read = FALSE
	`
	result, err := s.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		log.Error("failed to mark notifications read",
			slog.String("error", err.Error()),
			slog.String("recipient_id", recipientID.String()))
		return 0, MapError(err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}

	log.Debug("marked notifications read",
		slog.String("recipient_id", recipientID.String()),
		slog.Int64("count", count))
	return count, nil
}

// MarkRead implements store.NotificationStore.MarkRead
// The WHERE clause enforces ownership and unread state in one statement, so
// a missing row, someone else's row, and an already-read row are all the
// same outcome: store.ErrNotificationNotFound.
func (s *PostgresNotificationStore) MarkRead(
	ctx context.Context,
	recipientID, notificationID uuid.UUID,
) (*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1 AND recipient_id = $2 AND read = FALSE
		RETURNING ` + notificationColumns + `
	`

	var n domain.Notification
	err := s.db.QueryRowContext(ctx, query, notificationID, recipientID).Scan(
		&n.ID,
		&n.RecipientID,
		&n.Message,
		&n.Read,
		&n.TaskID,
		&n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("notification not found or already read",
				slog.String("notification_id", notificationID.String()),
				slog.String("recipient_id", recipientID.String()))
			return nil, store.ErrNotificationNotFound
		}
		log.Error("failed to mark notification read",
			slog.String("error", err.Error()),
			slog.String("notification_id", notificationID.String()))
		return nil, MapError(err)
	}

	return &n, nil
}
