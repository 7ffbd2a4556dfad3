package model

import "time"

// Shared defaults used by both the service and the dashboard binaries.
const (
	DefaultAPIBaseURL     = "/api"
	DefaultAPIOrigin      = "http://127.0.0.1:3000"
	DefaultRequestTimeout = 15 * time.Second
	DefaultQueryTimeout   = 30 * time.Second
	DefaultTransport      = "http"
)
