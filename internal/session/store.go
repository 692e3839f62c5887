// Package session tracks in-flight device authorization flows so polling can
// resume across independent requests.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the session was never created, already completed, or
// lost. Callers should treat the flow as unrecoverable and restart.
var ErrNotFound = errors.New("session not found")

// Session is the mutable record for one in-progress flow. ExpiresAt is fixed
// at creation; no operation extends it.
type Session struct {
	ID         string    `json:"session_id"`
	ClientID   string    `json:"client_id"`
	DeviceCode string    `json:"device_code"`
	Interval   int       `json:"interval"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Store maps opaque session identifiers to flow state. Implementations must
// tolerate concurrent access on independent keys and make per-key mutations
// atomic; durability across restarts is not part of the contract.
type Store interface {
	// Create persists a new session and returns its generated identifier.
	// The identifier is also written back to the session's ID field.
	Create(ctx context.Context, sess *Session) (string, error)

	// Get retrieves a session by id, returning ErrNotFound when absent.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session if present. Deleting an absent id is not an
	// error.
	Delete(ctx context.Context, id string) error

	// CheckHealth verifies the backing store is reachable.
	CheckHealth(ctx context.Context) error
}
