package deviceflow

import (
	"time"

	"github.com/halcyonlab/entra-token-util/internal/provider"
)

// State is the flow state after a polling step. Pending is the only
// non-terminal state; every other state implies the session was deleted.
type State string

const (
	StatePending    State = "pending"
	StateAuthorized State = "authorized"
	StateDenied     State = "denied"
	StateExpired    State = "expired"
	StateError      State = "error"
)

// Terminal reports whether no further transitions can occur from s.
func (s State) Terminal() bool {
	return s != StatePending
}

// StartResult is the caller-facing payload for a freshly started flow. The
// provider's device code is deliberately absent: it stays inside the session
// store and is never shown to the user.
type StartResult struct {
	SessionID       string `json:"session_id"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	Message         string `json:"message,omitempty"`
	Interval        int    `json:"interval"`
}

// Outcome is the result of a single polling step.
type Outcome struct {
	State State

	// Token is set when State is StateAuthorized.
	Token *provider.TokenResult

	// OAuthErr is set when State is StateDenied.
	OAuthErr *provider.OAuthError

	// StatusCode and RawBody carry the provider response verbatim when
	// State is StateError.
	StatusCode int
	RawBody    string

	// RetryAfter is the minimum wait before the next step when State is
	// StatePending.
	RetryAfter time.Duration
}
