// Package presence tracks which users currently have a live connection.
//
// The registry is process-local shared state: connection lifecycle events
// register and unregister handles while every dispatch performs lookups, so
// the registry guards its own map and callers never hold a lock. State is
// not persisted and does not survive restarts; in a multi-instance
// deployment each instance only sees its own connections.
package presence

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Conn is an opaque handle to an open real-time channel to one client.
// Send is fire-and-forget: implementations must never block the caller and
// must swallow delivery failures (the recipient's own fetch of their
// notification list is the recovery path).
type Conn interface {
	// Send pushes a named event with a JSON-serializable payload to the client.
	Send(event string, payload any)
}

// Registry maps user identities to their live connection handle.
// At most one handle is tracked per user at any instant.
type Registry interface {
	// Register associates userID with conn, overwriting any prior
	// association for that user (last-write-wins). The prior connection,
	// if any, is not closed.
	Register(userID uuid.UUID, conn Conn)

	// Lookup returns the current live handle for userID, if one exists.
	Lookup(userID uuid.UUID) (Conn, bool)

	// Unregister removes every entry whose handle equals conn.
	// It is an idempotent no-op if the handle is not registered.
	Unregister(conn Conn)
}

// MemoryRegistry is the in-memory Registry implementation used in production.
type MemoryRegistry struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]Conn
	logger *slog.Logger
}

// Ensure MemoryRegistry implements the Registry interface
var _ Registry = (*MemoryRegistry)(nil)

// NewMemoryRegistry creates an empty registry.
// If logger is nil, the default logger is used.
func NewMemoryRegistry(logger *slog.Logger) *MemoryRegistry {
	if logger == nil {
		logger = slog.Default()
	}

	return &MemoryRegistry{
		conns:  make(map[uuid.UUID]Conn),
		logger: logger.With(slog.String("component", "presence_registry")),
	}
}

// Register implements Registry.Register.
func (r *MemoryRegistry) Register(userID uuid.UUID, conn Conn) {
	r.mu.Lock()
	_, replaced := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	r.logger.Debug("user registered",
		slog.String("user_id", userID.String()),
		slog.Bool("replaced_existing", replaced))
}

// Lookup implements Registry.Lookup.
func (r *MemoryRegistry) Lookup(userID uuid.UUID) (Conn, bool) {
	r.mu.RLock()
	conn, ok := r.conns[userID]
	r.mu.RUnlock()
	return conn, ok
}

// Unregister implements Registry.Unregister.
// A handle appears at most once by construction, but the scan removes every
// matching entry so removal stays correct even if that invariant slips.
func (r *MemoryRegistry) Unregister(conn Conn) {
	r.mu.Lock()
	var removed []uuid.UUID
	for userID, c := range r.conns {
		if c == conn {
			delete(r.conns, userID)
			removed = append(removed, userID)
		}
	}
	r.mu.Unlock()

	for _, userID := range removed {
		r.logger.Debug("user unregistered",
			slog.String("user_id", userID.String()))
	}
}

// Len returns the number of users currently registered.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
