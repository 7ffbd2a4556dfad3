// Package apiclient is the HTTP client for the telemetry REST API
// (GET {base}/sessions and GET {base}/laps/{id}).
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tinytelemetry/pitlane/internal/model"
)

const maxErrorBody = 512

var _ model.TelemetryQuerier = (*Client)(nil)

// Client fetches sessions and laps from the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New creates a client rooted at baseURL, which must be absolute
// (see ResolveBaseURL).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: model.DefaultRequestTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveBaseURL turns the configured base into an absolute URL. An
// absolute base is used as is; a relative one such as "/api" is resolved
// against origin. An empty base falls back to model.DefaultAPIBaseURL.
func ResolveBaseURL(origin, base string) (string, error) {
	if strings.TrimSpace(base) == "" {
		base = model.DefaultAPIBaseURL
	}

	ref, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse api base url %q: %w", base, err)
	}
	if ref.IsAbs() {
		return strings.TrimRight(ref.String(), "/"), nil
	}

	if strings.TrimSpace(origin) == "" {
		return "", fmt.Errorf("api base url %q is relative and no api origin is configured", base)
	}
	root, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("parse api origin %q: %w", origin, err)
	}
	if !root.IsAbs() || root.Host == "" {
		return "", fmt.Errorf("api origin %q must be an absolute URL", origin)
	}
	if !strings.HasPrefix(ref.Path, "/") {
		ref.Path = "/" + ref.Path
	}
	return strings.TrimRight(root.ResolveReference(ref).String(), "/"), nil
}

// ListSessions fetches GET {base}/sessions.
func (c *Client) ListSessions(ctx context.Context) ([]model.Session, error) {
	sessions := []model.Session{}
	if err := c.get(ctx, "/sessions", &sessions); err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return sessions, nil
}

// LapsForSession fetches GET {base}/laps/{sessionID}.
func (c *Client) LapsForSession(ctx context.Context, sessionID int64) ([]model.Lap, error) {
	laps := []model.Lap{}
	if err := c.get(ctx, "/laps/"+strconv.FormatInt(sessionID, 10), &laps); err != nil {
		return nil, err
	}
	if laps == nil {
		laps = []model.Lap{}
	}
	return laps, nil
}

// get performs one GET and decodes the JSON body into dest.
func (c *Client) get(ctx context.Context, path string, dest any) error {
	endpoint := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("apiclient: GET %s: %v", endpoint, err)
		return &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Printf("apiclient: GET %s: status %d", endpoint, resp.StatusCode)
		return &StatusError{URL: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}
