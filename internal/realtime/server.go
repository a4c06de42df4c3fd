// Package realtime serves the per-actor invalidation channel over WebSocket.
// Each connection gets its own session subscribed to the actor's room; the
// session only forwards "state-changed" hints and never carries state.
package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"swipehire/internal/common"
	"swipehire/internal/http/middleware"
	"swipehire/internal/http/response"
	"swipehire/internal/metrics"
	"swipehire/internal/notify"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
)

const FrameReady = "ready"

// Frame is the only message shape the server sends.
type Frame struct {
	Type    string      `json:"type"`
	ActorID common.UUID `json:"actorId"`
}

type Server struct {
	ctx      context.Context
	hub      *notify.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
	metrics  *metrics.Collector
	wg       sync.WaitGroup
}

// NewServer binds sessions to ctx: cancelling it closes every open session.
func NewServer(ctx context.Context, hub *notify.Hub, logger *slog.Logger, collector *metrics.Collector) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ctx: ctx,
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// bearer tokens, not cookies, authenticate the upgrade
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		metrics: collector,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Error(w, common.NewError(common.CodeUnauthorized, "unauthorized", nil))
		return
	}
	sub, err := s.hub.Subscribe(sess.ActorID)
	if err != nil {
		response.Error(w, common.NewError(common.CodeInternal, "real-time channel unavailable", err))
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		s.logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	c := &session{
		conn:   conn,
		sub:    sub,
		cancel: cancel,
		logger: s.logger.With(slog.String("actor_id", sess.ActorID.String())),
	}
	s.metrics.SessionOpened()
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		c.writePump(ctx)
	}()
	go func() {
		defer s.wg.Done()
		defer s.metrics.SessionClosed()
		c.readPump()
	}()
}

// Wait blocks until every session has been torn down.
func (s *Server) Wait() {
	s.wg.Wait()
}

type session struct {
	conn   *websocket.Conn
	sub    *notify.Subscription
	cancel context.CancelFunc
	logger *slog.Logger
}

// readPump discards client messages and ends the session when the peer
// goes away or stops answering pings.
func (c *session) readPump() {
	defer func() {
		c.cancel()
		c.sub.Close()
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Debug("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump is the only writer on the connection.
func (c *session) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	if err := c.write(Frame{Type: FrameReady, ActorID: c.sub.ActorID}); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
			return
		case signal, ok := <-c.sub.C:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(Frame{Type: signal.Type, ActorID: signal.ActorID}); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *session) write(frame Frame) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(frame); err != nil {
		c.logger.Debug("websocket write failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}
