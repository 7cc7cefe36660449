package command

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/yndnr/respkv/internal/protocol/connection"
	"github.com/yndnr/respkv/internal/protocol/frame"
)

// Client sends commands over a single connection.
type Client struct {
	conn   net.Conn
	frames *connection.Connection
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &Client{conn: conn, frames: connection.New(conn)}, nil
}

// Do sends req and waits for one reply. The context deadline, if any,
// bounds both directions.
func (c *Client) Do(ctx context.Context, req frame.Array) (frame.Frame, error) {
	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := c.frames.WriteFrame(req); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	reply, err := c.frames.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
