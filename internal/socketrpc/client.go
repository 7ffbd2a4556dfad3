package socketrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tinytelemetry/pitlane/internal/model"
)

const (
	defaultCallTimeout = 30 * time.Second
	dialTimeout        = 5 * time.Second
)

var _ Querier = (*Client)(nil)

// errClientClosed is returned by calls made after Close.
var errClientClosed = errors.New("socketrpc: client closed")

// Client implements model.TelemetryQuerier over a Unix domain socket using
// JSON-RPC 2.0. Calls are serialized on a single connection. A call that
// fails on the wire drops the connection; the next call dials again.
type Client struct {
	socketPath string

	mu      sync.Mutex
	conn    net.Conn
	nextID  int
	scanner *bufio.Scanner
	encoder *json.Encoder
	closed  bool
}

// NewClient returns a client for socketPath without connecting. The first
// call dials.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Dial connects to the socket RPC server at the given path.
func Dial(socketPath string) (*Client, error) {
	c := NewClient(socketPath)
	if err := c.connectLocked(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close closes the underlying connection. Later calls fail.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.dropLocked()
	return err
}

func (c *Client) connectLocked() error {
	conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("socketrpc: dial: %w", err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	c.conn = conn
	c.scanner = scanner
	c.encoder = json.NewEncoder(conn)
	return nil
}

// resetLocked closes a connection whose stream position is unknown, so a
// late reply can never be read as the answer to a newer request.
func (c *Client) resetLocked() {
	if c.conn != nil {
		c.conn.Close()
	}
	c.dropLocked()
}

func (c *Client) dropLocked() {
	c.conn = nil
	c.scanner = nil
	c.encoder = nil
}

// call performs a JSON-RPC call and unmarshals the result into dest. The
// connection deadline follows ctx, or defaultCallTimeout when ctx has none.
func (c *Client) call(ctx context.Context, method string, params interface{}, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClientClosed
	}
	if c.conn == nil {
		if err := c.connectLocked(); err != nil {
			return err
		}
	}

	c.nextID++
	id := c.nextID

	paramsData, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("socketrpc: marshal params: %w", err)
	}

	req := Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultCallTimeout)
	}
	c.conn.SetDeadline(deadline)

	resp, err := c.roundTripLocked(req)
	if err != nil {
		c.resetLocked()
		return err
	}
	c.conn.SetDeadline(time.Time{})

	if resp.Error != nil {
		return resp.Error
	}

	if dest != nil {
		if err := json.Unmarshal(resp.Result, dest); err != nil {
			return fmt.Errorf("socketrpc: unmarshal result: %w", err)
		}
	}
	return nil
}

// roundTripLocked sends req and reads its response. Any error leaves the
// stream in an unknown state.
func (c *Client) roundTripLocked(req Request) (Response, error) {
	var resp Response
	if err := c.encoder.Encode(req); err != nil {
		return resp, fmt.Errorf("socketrpc: send: %w", err)
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return resp, fmt.Errorf("socketrpc: read: %w", err)
		}
		return resp, fmt.Errorf("socketrpc: connection closed")
	}

	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return resp, fmt.Errorf("socketrpc: unmarshal response: %w", err)
	}
	if resp.ID != req.ID {
		return resp, fmt.Errorf("socketrpc: response id %d does not match request id %d", resp.ID, req.ID)
	}
	return resp, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]model.Session, error) {
	result := []model.Session{}
	if err := c.call(ctx, "ListSessions", map[string]interface{}{}, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = []model.Session{}
	}
	return result, nil
}

func (c *Client) LapsForSession(ctx context.Context, sessionID int64) ([]model.Lap, error) {
	result := []model.Lap{}
	if err := c.call(ctx, "LapsForSession", map[string]interface{}{"SessionID": sessionID}, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = []model.Lap{}
	}
	return result, nil
}

func (c *Client) TableRowCounts(ctx context.Context) (map[string]int64, error) {
	var result map[string]int64
	err := c.call(ctx, "TableRowCounts", map[string]interface{}{}, &result)
	return result, err
}
