package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nextlevelbuilder/goclaw/pkg/protocol"
)

// Client wraps one WebSocket connection and serializes writes to it
// (gorilla/websocket connections are not safe for concurrent writers).
type Client struct {
	id     string
	conn   *websocket.Conn
	server *Server

	writeMu sync.Mutex
	closed  bool
}

// NewClient wraps conn for use by server.
func NewClient(conn *websocket.Conn, server *Server) *Client {
	return &Client{id: uuid.NewString(), conn: conn, server: server}
}

// Run reads request frames off the connection until it closes or ctx is
// done, dispatching each to the server's MethodRouter.
func (c *Client) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		ft, err := protocol.ParseFrameType(raw)
		if err != nil || ft != protocol.FrameTypeRequest {
			continue
		}
		var req protocol.RequestFrame
		if err := json.Unmarshal(raw, &req); err != nil {
			continue
		}
		if c.server.rateLimiter.Enabled() && !c.server.rateLimiter.Allow(c.id) {
			c.SendResponse(protocol.NewErrorResponse(req.ID, protocol.ErrRateLimited, "rate limit exceeded"))
			continue
		}
		c.server.router.Dispatch(ctx, c, &req)
	}
}

// SendResponse writes resp to the connection.
func (c *Client) SendResponse(resp *protocol.ResponseFrame) {
	c.write(resp)
}

// SendEvent writes evt to the connection.
func (c *Client) SendEvent(evt protocol.EventFrame) {
	c.write(&evt)
}

func (c *Client) write(v interface{}) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return
	}
	if err := c.conn.WriteJSON(v); err != nil {
		slog.Debug("gateway client write failed", "client", c.id, "error", err)
	}
}

// Close marks the client closed and closes its underlying connection.
func (c *Client) Close() {
	c.writeMu.Lock()
	c.closed = true
	c.writeMu.Unlock()
	c.conn.Close()
}
