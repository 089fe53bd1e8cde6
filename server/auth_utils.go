package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrsteele09/go-auth-relay/sessions"
)

// SetSessionCookie binds the browser to sessionID for the configured session lifetime.
func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.maxAge.Seconds()),
	})
}

// ClearSessionCookie tells the browser to drop its session cookie.
func (s *Server) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Server) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// currentSession loads the browser's session. A missing cookie, unknown id or expired
// session all yield (nil, nil); only store failures are errors.
func (s *Server) currentSession(ctx context.Context, r *http.Request) (*sessions.Session, error) {
	id := s.sessionID(r)
	if id == "" {
		return nil, nil
	}
	session, err := s.sessions.Get(ctx, id)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ensureSession returns the browser's live session, creating and storing an empty one
// (and setting the cookie) when there is none.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) (sessions.Session, error) {
	current, err := s.currentSession(r.Context(), r)
	if err != nil {
		return sessions.Session{}, err
	}
	if current != nil {
		return *current, nil
	}

	session := sessions.New(sessions.NewID(), s.maxAge)
	if err := s.sessions.Put(r.Context(), session.ID, session); err != nil {
		return sessions.Session{}, err
	}
	s.SetSessionCookie(w, r, session.ID)
	return session, nil
}
