// Package client is a Go client for the jsonvault wire protocol.
package client

import (
	"fmt"
	"net"
	"sync"
	"time"

	"jsonvault/internal/protocol"
)

// ServerError is a failure reported by the server, as opposed to a
// transport or protocol failure.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server: " + e.Message
}

// Client is a connection to a jsonvault node. Methods are safe for
// concurrent use; requests are serialized over the single connection.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

// Dial connects to the node at addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Set stores value under key, overwriting any existing document.
func (c *Client) Set(key string, value any) error {
	_, err := c.roundTrip(&protocol.SetCommand{Key: key, Value: value})
	return err
}

// Get returns the document stored under key, or nil if the key is absent.
func (c *Client) Get(key string) (any, error) {
	return c.roundTrip(&protocol.GetCommand{Key: key})
}

// Delete removes key. Deleting an absent key is not an error.
func (c *Client) Delete(key string) error {
	_, err := c.roundTrip(&protocol.DeleteCommand{Key: key})
	return err
}

// Merge deep-merges value into the document under key, creating it if
// absent.
func (c *Client) Merge(key string, value any) error {
	_, err := c.roundTrip(&protocol.MergeCommand{Key: key, Value: value})
	return err
}

// QueryGet evaluates a path query against the document under key. A
// single match comes back unwrapped, multiple matches as an array, and
// nil means the key is absent or nothing matched.
func (c *Client) QueryGet(key, query string) (any, error) {
	return c.roundTrip(&protocol.QGetCommand{Key: key, Query: query})
}

// QuerySet sets a nested property addressed by a dotted path, creating
// intermediate objects as needed.
func (c *Client) QuerySet(key, path string, value any) error {
	_, err := c.roundTrip(&protocol.QSetCommand{Key: key, Path: path, Value: value})
	return err
}

// Ping checks liveness. It succeeds on any node regardless of role.
func (c *Client) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := protocol.WriteCommand(c.conn, &protocol.PingCommand{}); err != nil {
		return err
	}
	resp, err := protocol.ReadResponse(c.conn)
	if err != nil {
		return err
	}
	if _, ok := resp.(*protocol.PongResponse); !ok {
		return fmt.Errorf("unexpected ping reply %T", resp)
	}
	return nil
}

func (c *Client) roundTrip(cmd protocol.Command) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := protocol.WriteCommand(c.conn, cmd); err != nil {
		return nil, err
	}

	resp, err := protocol.ReadResponse(c.conn)
	if err != nil {
		return nil, err
	}

	switch r := resp.(type) {
	case *protocol.OkResponse:
		return r.Value, nil
	case *protocol.ErrorResponse:
		return nil, &ServerError{Message: r.Message}
	default:
		return nil, fmt.Errorf("unexpected reply %T", resp)
	}
}
