package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/presence"
	"github.com/taskhive/taskhive-api/internal/store"
)

// fakeNotificationStore is an in-memory store.NotificationStore.
type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []*domain.Notification
	createErr     error
}

func (s *fakeNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *n
	s.notifications = append(s.notifications, &copied)
	return nil
}

func (s *fakeNotificationStore) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Notification
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			copied := *n
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *fakeNotificationStore) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (s *fakeNotificationStore) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == notificationID && n.RecipientID == recipientID && !n.Read {
			n.Read = true
			copied := *n
			return &copied, nil
		}
	}
	return nil, store.ErrNotificationNotFound
}

var _ store.NotificationStore = (*fakeNotificationStore)(nil)

// recordingConn captures pushed events.
type recordingConn struct {
	mu     sync.Mutex
	events []string
	loads  []any
}

func (c *recordingConn) Send(event string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	c.loads = append(c.loads, payload)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcher_OnlineRecipient(t *testing.T) {
	t.Parallel()

	notifications := &fakeNotificationStore{}
	registry := presence.NewMemoryRegistry(testLogger())
	dispatcher, err := NewDispatcher(notifications, registry, testLogger())
	require.NoError(t, err)

	recipient := uuid.New()
	conn := &recordingConn{}
	registry.Register(recipient, conn)

	taskID := uuid.NullUUID{UUID: uuid.New(), Valid: true}
	err = dispatcher.Dispatch(context.Background(), recipient, "Task updated: Ship release", taskID)
	require.NoError(t, err)

	// Persisted first
	stored, err := notifications.ListByRecipient(context.Background(), recipient)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Task updated: Ship release", stored[0].Message)
	assert.Equal(t, taskID, stored[0].TaskID)
	assert.False(t, stored[0].Read)

	// Then pushed, carrying the full persisted record
	require.Len(t, conn.events, 1)
	assert.Equal(t, EventNotification, conn.events[0])
	pushed, ok := conn.loads[0].(*domain.Notification)
	require.True(t, ok, "payload should be the persisted notification")
	assert.Equal(t, stored[0].ID, pushed.ID)
}

func TestDispatcher_OfflineRecipientStillPersists(t *testing.T) {
	t.Parallel()

	notifications := &fakeNotificationStore{}
	registry := presence.NewMemoryRegistry(testLogger())
	dispatcher, err := NewDispatcher(notifications, registry, testLogger())
	require.NoError(t, err)

	recipient := uuid.New()
	err = dispatcher.Dispatch(context.Background(), recipient, "Task deleted: Old task", uuid.NullUUID{})
	require.NoError(t, err)

	stored, err := notifications.ListByRecipient(context.Background(), recipient)
	require.NoError(t, err)
	require.Len(t, stored, 1, "notification must be persisted even with no live connection")
	assert.False(t, stored[0].Read)
}

func TestDispatcher_NilRecipientIsNoOp(t *testing.T) {
	t.Parallel()

	notifications := &fakeNotificationStore{}
	registry := presence.NewMemoryRegistry(testLogger())
	dispatcher, err := NewDispatcher(notifications, registry, testLogger())
	require.NoError(t, err)

	err = dispatcher.Dispatch(context.Background(), uuid.Nil, "orphan message", uuid.NullUUID{})
	assert.NoError(t, err, "missing recipient is a warning, not an error")
	assert.Empty(t, notifications.notifications)
}

func TestDispatcher_PersistFailureSurfaces(t *testing.T) {
	t.Parallel()

	notifications := &fakeNotificationStore{createErr: errors.New("disk full")}
	registry := presence.NewMemoryRegistry(testLogger())
	dispatcher, err := NewDispatcher(notifications, registry, testLogger())
	require.NoError(t, err)

	recipient := uuid.New()
	conn := &recordingConn{}
	registry.Register(recipient, conn)

	err = dispatcher.Dispatch(context.Background(), recipient, "will not persist", uuid.NullUUID{})
	assert.Error(t, err)
	assert.Empty(t, conn.events, "no push may happen when persistence fails")
}

func TestNewDispatcher_RequiresDependencies(t *testing.T) {
	t.Parallel()

	registry := presence.NewMemoryRegistry(testLogger())

	_, err := NewDispatcher(nil, registry, testLogger())
	assert.Error(t, err)

	_, err = NewDispatcher(&fakeNotificationStore{}, nil, testLogger())
	assert.Error(t, err)
}
