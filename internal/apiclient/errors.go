package apiclient

import (
	"errors"
	"fmt"
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string // first bytes of the response body, for logs
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// TransportError is returned when the request never produced a response
// (connection refused, DNS failure, timeout).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
