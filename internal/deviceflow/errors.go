package deviceflow

import "errors"

// Common errors that may occur while driving a device authorization flow
var (
	// ErrSessionNotFound indicates the caller referenced a session that was
	// never created, already completed, or lost on restart. The flow must
	// be restarted from scratch.
	ErrSessionNotFound = errors.New("session not found")
)
