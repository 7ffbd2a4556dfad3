package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/pitlane/internal/model"
)

// QueryStore is the narrow store contract required by the HTTP API.
type QueryStore interface {
	model.TelemetryQuerier
	TableRowCounts(ctx context.Context) (map[string]int64, error)
}

// Server serves the session and lap endpoints consumed by the dashboard.
type Server struct {
	addr      string
	store     QueryStore
	server    *http.Server
	listener  net.Listener
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, store QueryStore) *Server {
	if addr == "" {
		addr = "0.0.0.0:3000"
	}
	return &Server{
		addr:  addr,
		store: store,
	}
}

// Handler builds the gin engine with all API routes registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/sessions", s.handleSessions)
	api.GET("/laps/:id", s.handleLaps)

	return r
}

// Listen binds the TCP listener. Addr reports the bound address after it
// succeeds.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()
	return nil
}

// Serve handles requests on the bound listener until ctx is done, then
// shuts down gracefully. It returns early with an error if the listener
// fails.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("httpserver: Serve called before Listen")
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- s.server.Serve(s.listener) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("httpserver: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("httpserver: shutdown: %w", err)
	}
	return nil
}

// Addr returns the bound address once Listen has succeeded.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) handleHealth(c *gin.Context) {
	counts, err := s.store.TableRowCounts(c.Request.Context())
	if err != nil {
		log.Printf("httpserver: health: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read health metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"uptime":   time.Since(s.startTime).String(),
		"sessions": counts["sessions"],
		"laps":     counts["laps"],
	})
}

func (s *Server) handleSessions(c *gin.Context) {
	sessions, err := s.store.ListSessions(c.Request.Context())
	if err != nil {
		log.Printf("httpserver: list sessions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) handleLaps(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id must be a positive integer"})
		return
	}

	laps, err := s.store.LapsForSession(c.Request.Context(), sessionID)
	if err != nil {
		log.Printf("httpserver: laps for session %d: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list laps"})
		return
	}
	if laps == nil {
		laps = []model.Lap{}
	}
	c.JSON(http.StatusOK, laps)
}
