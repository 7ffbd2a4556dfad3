package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/pitlane/internal/apiclient"
	"github.com/tinytelemetry/pitlane/internal/duckdb"
	"github.com/tinytelemetry/pitlane/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *duckdb.Store, http.Handler) {
	t.Helper()
	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := NewServer("", store)
	srv.startTime = time.Now()
	return srv, store, srv.Handler()
}

func seedBahrain(t *testing.T, store *duckdb.Store) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := store.UpsertSession(ctx, model.Session{
		Year: 2023, GPName: "Bahrain", SessionType: "Race", Date: "2023-03-05", RoundNumber: 1,
	})
	if err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}
	_, err = store.UpsertLaps(ctx, id, []model.Lap{
		{Driver: "VER", LapNumber: 1, LapTimeMs: model.Int64(93456), TyreCompound: model.String("SOFT")},
		{Driver: "HAM", LapNumber: 1, LapTimeMs: model.Int64(94012), SpeedTrapKmh: model.Int64(312)},
	})
	if err != nil {
		t.Fatalf("UpsertLaps: %v", err)
	}
	return id
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	_, store, h := newTestServer(t)
	seedBahrain(t, store)

	w := get(t, h, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("health status = %v, want ok", body["status"])
	}
	if body["sessions"] != float64(1) || body["laps"] != float64(2) {
		t.Errorf("health counts = %v/%v, want 1/2", body["sessions"], body["laps"])
	}
}

func TestHealthEndpoint_WrongMethod(t *testing.T) {
	_, _, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("health POST status = %d, want 405 or 404", w.Code)
	}
}

func TestSessionsEndpoint(t *testing.T) {
	_, store, h := newTestServer(t)
	id := seedBahrain(t, store)

	w := get(t, h, "/api/sessions")
	if w.Code != http.StatusOK {
		t.Fatalf("sessions status = %d", w.Code)
	}

	var sessions []model.Session
	if err := json.Unmarshal(w.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("unmarshal sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("len(sessions) = %d, want 1", len(sessions))
	}
	if sessions[0].SessionID != id || sessions[0].Date != "2023-03-05" {
		t.Errorf("session = %+v", sessions[0])
	}
}

func TestSessionsEndpoint_EmptyArray(t *testing.T) {
	_, _, h := newTestServer(t)

	w := get(t, h, "/api/sessions")
	if w.Code != http.StatusOK {
		t.Fatalf("sessions status = %d", w.Code)
	}
	if got := w.Body.String(); got != "[]" {
		t.Errorf("empty sessions body = %q, want []", got)
	}
}

func TestLapsEndpoint(t *testing.T) {
	_, store, h := newTestServer(t)
	id := seedBahrain(t, store)

	w := get(t, h, "/api/laps/"+itoa(id))
	if w.Code != http.StatusOK {
		t.Fatalf("laps status = %d", w.Code)
	}

	var raw []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("unmarshal laps: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("len(laps) = %d, want 2", len(raw))
	}
	// Ordered by lap number, then driver.
	if raw[0]["driver"] != "HAM" || raw[1]["driver"] != "VER" {
		t.Errorf("lap order = %v, %v", raw[0]["driver"], raw[1]["driver"])
	}
	if v, ok := raw[1]["sector1_time_ms"]; !ok || v != nil {
		t.Errorf("VER sector1_time_ms = %v (present=%v), want explicit null", v, ok)
	}
}

func TestLapsEndpoint_UnknownSessionIsEmpty(t *testing.T) {
	_, _, h := newTestServer(t)

	w := get(t, h, "/api/laps/42")
	if w.Code != http.StatusOK {
		t.Fatalf("laps status = %d", w.Code)
	}
	if got := w.Body.String(); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestLapsEndpoint_BadID(t *testing.T) {
	_, _, h := newTestServer(t)

	for _, path := range []string{"/api/laps/abc", "/api/laps/0", "/api/laps/-3"} {
		w := get(t, h, path)
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Errorf("GET %s body = %q, want JSON error", path, w.Body.String())
		}
	}
}

type failingStore struct{}

func (failingStore) ListSessions(context.Context) ([]model.Session, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) LapsForSession(context.Context, int64) ([]model.Lap, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) TableRowCounts(context.Context) (map[string]int64, error) {
	return nil, errors.New("disk on fire")
}

func TestStoreErrors(t *testing.T) {
	h := NewServer("", failingStore{}).Handler()

	for _, path := range []string{"/api/health", "/api/sessions", "/api/laps/1"} {
		w := get(t, h, path)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("GET %s status = %d, want 500", path, w.Code)
		}
	}
}

// serveInBackground runs srv.Serve until the test ends.
func serveInBackground(t *testing.T, srv *Server) {
	t.Helper()
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestServe_ServesClient(t *testing.T) {
	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	seedBahrain(t, store)

	srv := NewServer("127.0.0.1:0", store)
	serveInBackground(t, srv)

	client := apiclient.New("http://" + srv.Addr() + "/api")
	sessions, err := client.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions over HTTP: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("len(sessions) = %d, want 1", len(sessions))
	}
	laps, err := client.LapsForSession(context.Background(), sessions[0].SessionID)
	if err != nil {
		t.Fatalf("LapsForSession over HTTP: %v", err)
	}
	if len(laps) != 2 {
		t.Errorf("len(laps) = %d, want 2", len(laps))
	}
}

func TestServe_ReturnsNilOnCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", failingStore{})
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve after cancel = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_ListenerFailureEndsServe(t *testing.T) {
	srv := NewServer("127.0.0.1:0", failingStore{})
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	srv.listener.Close()

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Serve on a closed listener returned nil")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after listener failure")
	}
}

func TestServe_RequiresListen(t *testing.T) {
	srv := NewServer("127.0.0.1:0", failingStore{})
	if err := srv.Serve(context.Background()); err == nil {
		t.Fatal("Serve without Listen returned nil")
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
