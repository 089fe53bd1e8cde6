package authflowrepo

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("state not found")

// AuthFlowState links a login-URL request to the callback that completes it.
type AuthFlowState struct {
	State       string    `json:"state"`
	Nonce       string    `json:"nonce"`
	SessionID   string    `json:"session_id"`
	RedirectURI string    `json:"redirect_uri"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the flow is past its expiry at now.
func (s *AuthFlowState) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Repo interface {
	Upsert(ctx context.Context, authState *AuthFlowState) error
	Get(ctx context.Context, state string) (*AuthFlowState, error)
	Delete(ctx context.Context, state string) error
	// Consume returns the flow for state and removes it in one step, so at most one
	// caller gets a given flow.
	Consume(ctx context.Context, state string) (*AuthFlowState, error)
}
