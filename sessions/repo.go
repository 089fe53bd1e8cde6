package sessions

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("session not found")

// Store holds one Session record per session id with full-record replace semantics.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the session for id, or ErrNotFound when missing or expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Put creates or replaces the record for id.
	Put(ctx context.Context, id string, session Session) error

	// Invalidate removes the record for id. Removing a missing record is not an error.
	Invalidate(ctx context.Context, id string) error
}
