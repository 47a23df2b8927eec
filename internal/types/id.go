package types

import "github.com/google/uuid"

// NewID returns a fresh identifier for tabs, sessions, and log entries.
// Identifiers are never reused; a reopened tab gets a new one.
func NewID() string {
	return uuid.NewString()
}
