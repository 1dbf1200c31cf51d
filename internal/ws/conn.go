// Package ws provides the WebSocket transport behind the presence registry:
// it upgrades HTTP connections, ties each socket to a registered user, and
// delivers notification events over the wire.
package ws

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/taskhive/taskhive-api/internal/presence"
)

const (
	// writeWait is the deadline for a single socket write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// considered dead. Pings are sent at a fraction of this interval.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBufferSize bounds the per-connection outbound queue. A full
	// buffer drops the event; the client recovers by fetching its
	// notification list.
	sendBufferSize = 16
)

// event is the wire format for outbound pushes.
type event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// clientConn wraps one WebSocket connection and implements presence.Conn.
// All writes go through the buffered send channel and are serialized by
// writePump, since gorilla/websocket permits only one concurrent writer.
type clientConn struct {
	socket *websocket.Conn
	send   chan event
	done   chan struct{}
	logger *slog.Logger
}

// Ensure clientConn implements presence.Conn
var _ presence.Conn = (*clientConn)(nil)

func newClientConn(socket *websocket.Conn, logger *slog.Logger) *clientConn {
	return &clientConn{
		socket: socket,
		send:   make(chan event, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Send implements presence.Conn.Send.
// It never blocks: when the outbound buffer is full or the connection is
// closing, the event is dropped.
func (c *clientConn) Send(eventType string, payload any) {
	select {
	case <-c.done:
	case c.send <- event{Name: eventType, Data: payload}:
	default:
		c.logger.Warn("dropping event, send buffer full",
			slog.String("event", eventType))
	}
}

// writePump serializes all socket writes: queued events and keepalive pings.
// It runs until the connection closes and tears the socket down on exit.
func (c *clientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.socket.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteJSON(ev); err != nil {
				c.logger.Debug("write failed, closing connection",
					slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// close signals shutdown to Send and writePump. Safe to call once.
func (c *clientConn) close() {
	close(c.done)
}
