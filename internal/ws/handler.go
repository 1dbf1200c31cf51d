package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/taskhive/taskhive-api/internal/presence"
)

// registerMessage is the first (and only) message a client is expected to
// send: it binds the socket to a user identity.
type registerMessage struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// Handler upgrades HTTP requests to WebSocket connections and keeps the
// presence registry in sync with connection lifecycle.
type Handler struct {
	registry presence.Registry
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a WebSocket handler bound to the given registry.
// If logger is nil, the default logger is used.
func NewHandler(registry presence.Registry, logger *slog.Logger) *Handler {
	if registry == nil {
		panic("registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API is token-authenticated; the socket itself carries no
			// credentials, so cross-origin upgrades are allowed.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws_handler")),
	}
}

// ServeHTTP implements http.Handler.
// The connection is registered once the client sends a register message and
// unregistered when the socket closes for any reason.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Debug("websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	conn := newClientConn(socket, h.logger)
	go conn.writePump()
	h.readPump(conn)
}

// readPump consumes inbound messages until the socket closes. The only
// meaningful inbound message is registration; everything else is ignored.
// Reading also services pong frames for the keepalive.
func (h *Handler) readPump(conn *clientConn) {
	defer func() {
		h.registry.Unregister(conn)
		conn.close()
		_ = conn.socket.Close()
	}()

	_ = conn.socket.SetReadDeadline(time.Now().Add(pongWait))
	conn.socket.SetPongHandler(func(string) error {
		return conn.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg registerMessage
		if err := conn.socket.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket closed unexpectedly",
					slog.String("error", err.Error()))
			}
			return
		}

		if msg.Type != "register" {
			continue
		}

		userID, err := uuid.Parse(msg.UserID)
		if err != nil || userID == uuid.Nil {
			h.logger.Warn("ignoring register message with invalid user id",
				slog.String("user_id", msg.UserID))
			continue
		}

		h.registry.Register(userID, conn)
		h.logger.Debug("websocket registered",
			slog.String("user_id", userID.String()))
	}
}
