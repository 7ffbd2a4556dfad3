package socketrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// scannerInitBufSize is the initial buffer size for the per-connection scanner (64 KB).
	scannerInitBufSize = 64 * 1024
	// scannerMaxTokenSize is the maximum token size the scanner will accept (10 MB).
	scannerMaxTokenSize = 10 * 1024 * 1024
)

// Server exposes a Querier over a Unix domain socket using JSON-RPC 2.0.
type Server struct {
	socketPath string
	store      Querier
	listener   net.Listener
	wg         sync.WaitGroup
	quit       chan struct{}
	stopOnce   sync.Once
	acceptErr  chan error

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

// NewServer creates a new socket RPC server.
func NewServer(socketPath string, store Querier) *Server {
	return &Server{
		socketPath: socketPath,
		store:      store,
		quit:       make(chan struct{}),
		acceptErr:  make(chan error, 1),
		conns:      make(map[net.Conn]struct{}),
	}
}

// Path returns the socket path the server listens on.
func (s *Server) Path() string {
	return s.socketPath
}

// Start begins listening on the Unix socket and accepting connections.
func (s *Server) Start() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("socketrpc: mkdir: %w", err)
	}

	// Remove stale socket if it exists.
	if _, err := os.Stat(s.socketPath); err == nil {
		conn, dialErr := net.DialTimeout("unix", s.socketPath, 500*time.Millisecond)
		if dialErr != nil {
			os.Remove(s.socketPath)
		} else {
			conn.Close()
			return fmt.Errorf("socketrpc: another server is already listening on %s", s.socketPath)
		}
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("socketrpc: listen: %w", err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()

	log.Printf("socketrpc: listening on %s", s.socketPath)
	return nil
}

// Stop closes the listener and open connections, waits for handlers to
// return, and removes the socket file. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		if s.listener != nil {
			s.listener.Close()
		}

		s.connMu.Lock()
		for conn := range s.conns {
			conn.Close()
		}
		s.connMu.Unlock()

		s.wg.Wait()
		os.Remove(s.socketPath)
	})
}

// Serve blocks until ctx is done or the listener fails, then stops the
// server. Start must have succeeded first.
func (s *Server) Serve(ctx context.Context) error {
	defer s.Stop()
	select {
	case <-ctx.Done():
		return nil
	case err := <-s.acceptErr:
		return fmt.Errorf("socketrpc: accept: %w", err)
	}
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				log.Printf("socketrpc: accept error: %v", err)
				continue
			}
			s.acceptErr <- err
			return
		}

		s.connMu.Lock()
		select {
		case <-s.quit:
			s.connMu.Unlock()
			conn.Close()
			return
		default:
		}
		s.conns[conn] = struct{}{}
		s.connMu.Unlock()

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.connMu.Lock()
		delete(s.conns, conn)
		s.connMu.Unlock()
		conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	encoder := json.NewEncoder(conn)

	for scanner.Scan() {
		select {
		case <-s.quit:
			return
		default:
		}

		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			resp := Response{JSONRPC: "2.0", ID: 0, Error: &RPCError{Code: codeParseError, Message: "parse error"}}
			encoder.Encode(resp)
			continue
		}

		resp := s.dispatch(context.Background(), req)
		if err := encoder.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	resp := Response{JSONRPC: "2.0", ID: req.ID}

	marshalResult := func(v interface{}, err error) Response {
		if err != nil {
			resp.Error = &RPCError{Code: codeAppError, Message: err.Error()}
			return resp
		}
		data, merr := json.Marshal(v)
		if merr != nil {
			resp.Error = &RPCError{Code: codeInternalError, Message: merr.Error()}
			return resp
		}
		resp.Result = data
		return resp
	}

	invalidParams := func(err error) Response {
		resp.Error = &RPCError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
		return resp
	}

	switch req.Method {
	case "ListSessions":
		return marshalResult(s.store.ListSessions(ctx))

	case "LapsForSession":
		var p struct{ SessionID int64 }
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return invalidParams(err)
		}
		if p.SessionID <= 0 {
			return invalidParams(fmt.Errorf("SessionID must be positive, got %d", p.SessionID))
		}
		return marshalResult(s.store.LapsForSession(ctx, p.SessionID))

	case "TableRowCounts":
		return marshalResult(s.store.TableRowCounts(ctx))

	default:
		resp.Error = &RPCError{Code: codeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
		return resp
	}
}
