package sessions

import (
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-relay/users"
)

// Session is the server-side authentication state bound to one browser.
// A record is always replaced as a whole, readers never observe a partially populated session.
type Session struct {
	ID            string         `json:"id"`                 // Opaque id carried in the session cookie, never derived from an IdP value
	Authenticated bool           `json:"authenticated"`      // Set together with Profile and IDToken on a successful callback
	Profile       *users.Profile `json:"profile,omitempty"`  // Present iff Authenticated
	IDToken       string         `json:"id_token,omitempty"` // Most recent ID token, kept only for id_token_hint on logout
	CreatedAt     time.Time      `json:"created_at"`         // When the session was created
	ExpiresAt     time.Time      `json:"expires_at"`         // Server enforced expiry
}

// NewID generates a new opaque session id.
func NewID() string {
	return uuid.NewString()
}

// New creates an empty, anonymous session expiring after maxAge.
func New(id string, maxAge time.Duration) Session {
	now := time.Now()
	return Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(maxAge),
	}
}

// Authenticate returns a copy of the session with the identity populated.
// The caller stores the returned record in one Put so the population is atomic.
func (s Session) Authenticate(profile users.Profile, idToken string) Session {
	s.Authenticated = true
	s.Profile = &profile
	s.IDToken = idToken
	return s
}

// AuthenticatedProfile returns the profile when the session holds an authenticated identity.
func (s *Session) AuthenticatedProfile() (users.Profile, bool) {
	if s == nil || !s.Authenticated || s.Profile == nil {
		return users.Profile{}, false
	}
	return *s.Profile, true
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// clone returns a deep copy so stored records cannot be mutated through shared pointers.
func (s Session) clone() Session {
	if s.Profile != nil {
		p := *s.Profile
		s.Profile = &p
	}
	return s
}
