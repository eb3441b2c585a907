package core

import "github.com/google/uuid"

// RequestIDHeader carries the per-invocation request id to the API.
const RequestIDHeader = "X-Client-Request-Id"

// NewRequestID returns a random UUIDv4 string identifying one invocation.
// The same id is sent to the API, attached to log lines and stored in the
// generation history.
func NewRequestID() string {
	return uuid.NewString()
}

// ShortID returns the first 8 characters of an id for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
