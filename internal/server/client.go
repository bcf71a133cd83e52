package server

import (
	"context"
	"fmt"
	"net"

	"crawld/internal/model"
)

// Client sends commands to a running crawl daemon. The protocol is
// fire-and-forget: one connection per command, nothing is read back,
// and a successful Send means only that the daemon accepted the bytes.
type Client struct {
	addr   string
	dialer net.Dialer
}

// NewClient creates a Client that sends to the daemon at addr.
func NewClient(addr string) *Client {
	return &Client{addr: addr}
}

// Send encodes cmd and writes it over a fresh connection.
func (c *Client) Send(ctx context.Context, cmd model.Command) error {
	data, err := cmd.Encode()
	if err != nil {
		return err
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon at %s: %w", c.addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}
