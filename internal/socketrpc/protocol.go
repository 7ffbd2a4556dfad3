package socketrpc

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tinytelemetry/pitlane/internal/model"
)

// JSON-RPC 2.0 Method Reference
//
// The socket RPC server exposes the telemetry read API over a Unix domain
// socket, one newline-delimited JSON object per request and response.
//
//   Method            Params                 Result
//   ──────────────    ────────────────────   ─────────────────
//   ListSessions      (none)                 []Session
//   LapsForSession    {SessionID: int64}     []Lap
//   TableRowCounts    (none)                 map[string]int64
//
// Error codes follow JSON-RPC 2.0:
//   -32700  Parse error (malformed JSON)
//   -32601  Method not found
//   -32602  Invalid params
//   -32603  Internal error (marshal failure)
//   -32000  Application error (query failure)

const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
	codeAppError       = -32000
)

// Querier is the store contract served over the socket.
type Querier interface {
	model.TelemetryQuerier
	TableRowCounts(ctx context.Context) (map[string]int64, error)
}

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string { return e.Message }

// DefaultSocketPath returns the default Unix socket path.
// It prefers $XDG_RUNTIME_DIR/pitlane/pitlane.sock, falling back to
// ~/.local/state/pitlane/pitlane.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "pitlane", "pitlane.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/pitlane.sock"
	}
	return filepath.Join(home, ".local", "state", "pitlane", "pitlane.sock")
}
