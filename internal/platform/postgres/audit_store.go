package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/platform/logger"
	"github.com/taskhive/taskhive-api/internal/store"
)

// PostgresAuditStore implements the store.TaskAuditStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAuditStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAuditStore creates a new PostgreSQL implementation of the
// TaskAuditStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresAuditStore(db store.DBTX, logger *slog.Logger) *PostgresAuditStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAuditStore{
		db:     db,
		logger: logger.With(slog.String("component", "audit_store")),
	}
}

// Ensure PostgresAuditStore implements store.TaskAuditStore interface
var _ store.TaskAuditStore = (*PostgresAuditStore)(nil)

// Create implements store.TaskAuditStore.Create
// It appends a new audit entry, handling domain validation.
// Returns store.ErrInvalidEntity if the referenced task does not exist.
func (s *PostgresAuditStore) Create(ctx context.Context, entry *domain.AuditEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("audit entry validation failed during create",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return err
	}

	query := `
		INSERT INTO task_audit_logs (id, task_id, action, actor_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.TaskID,
		entry.Action,
		entry.ActorID,
		entry.Details,
		entry.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create audit entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()),
			slog.String("task_id", entry.TaskID.String()))
		return MapError(err)
	}

	log.Debug("audit entry created",
		slog.String("entry_id", entry.ID.String()),
		slog.String("task_id", entry.TaskID.String()),
		slog.String("action", entry.Action))
	return nil
}

// ListByTask implements store.TaskAuditStore.ListByTask
// It retrieves all audit entries for a task, newest first.
func (s *PostgresAuditStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.AuditEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, action, actor_id, details, created_at
		FROM task_audit_logs
		WHERE task_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to list audit entries",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := []*domain.AuditEntry{}
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TaskID,
			&entry.Action,
			&entry.ActorID,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return entries, nil
}
