package server

import (
	"strings"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/parleychat/relay/src/hub"
)

const pingWriteTimeout = 5 * time.Second

// handleUpgrade accepts a connection at /conversations/{conversationId}
// with userId as a query parameter. Both are optional; identity arrives
// pre-resolved, the relay does no authentication.
func (s *Server) handleUpgrade(ctx *fasthttp.RequestCtx) {
	upgrade := string(ctx.Request.Header.Peek("Upgrade"))
	if !strings.EqualFold(upgrade, "websocket") {
		ctx.SetStatusCode(fasthttp.StatusUpgradeRequired)
		ctx.SetBodyString(`{"error":"upgrade_required","message":"WebSocket upgrade required"}`)
		return
	}

	rest := strings.TrimPrefix(string(ctx.Path()), "/conversations/")
	conversationID, _, _ := strings.Cut(rest, "/")
	userID := string(ctx.QueryArgs().Peek("userId"))
	clientID := uuid.New().String()

	err := s.upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
		client := hub.NewClient(clientID, userID, conversationID, &wsConn{conn: conn}, s.hub)
		s.hub.Register(client)
		go client.WritePump()
		client.ReadPump()
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
	}
}

// wsConn adapts fasthttp/websocket.Conn to types.Conn. The mutex keeps the
// reaper's pings from interleaving with envelope writes.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConn) ReadText() ([]byte, error) {
	for {
		t, data, err := w.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if t == websocket.TextMessage {
			return data, nil
		}
	}
}

func (w *wsConn) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

func (w *wsConn) Ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pingWriteTimeout))
}

func (w *wsConn) Close() error { return w.conn.Close() }
