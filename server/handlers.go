package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-auth-relay/auth"
	"github.com/jrsteele09/go-auth-relay/oauthmodel"
)

const (
	healthMessage = "OpenID Connect Auth API is running"
	publicMessage = "This is a public endpoint, no authentication required"
)

// LoginURLHandler returns the provider login URL the browser should be sent to.
// It always answers 200 unless the session store fails.
func (s *Server) LoginURLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		usePAR, _ := strconv.ParseBool(q.Get("usePAR"))

		req := auth.LoginRequest{
			RedirectURI: q.Get("redirectUri"),
			State:       q.Get("state"),
			UsePAR:      usePAR,
			Prompt:      oauthmodel.Prompt(q.Get("prompt")),
		}

		if s.auth.EnforcesState() {
			session, err := s.ensureSession(w, r)
			if err != nil {
				requestLogger(r).Err(err).Msg("failed to create browser session")
				writeInternalError(w)
				return
			}
			req.SessionID = session.ID
		}

		loginURL, err := s.auth.LoginURL(r.Context(), req)
		if err != nil {
			requestLogger(r).Err(err).Msg("failed to build login url")
			writeInternalError(w)
			return
		}

		writeAuthResponse(w, http.StatusOK, succeeded(loginURL.URL, nil))
	}
}

// CurrentUserHandler returns the authenticated profile of the browser session.
func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return s.profileHandler("User retrieved successfully", "User not authenticated")
}

// CheckHandler reports whether the browser session is authenticated.
func (s *Server) CheckHandler() http.HandlerFunc {
	return s.profileHandler("User is authenticated", "User is not authenticated")
}

// profileHandler is read-only: it never creates, extends or clears a session.
func (s *Server) profileHandler(okMessage, unauthenticatedMessage string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.currentSession(r.Context(), r)
		if err != nil {
			requestLogger(r).Err(err).Msg("failed to load session")
			writeInternalError(w)
			return
		}

		profile, ok := session.AuthenticatedProfile()
		if !ok {
			writeAuthResponse(w, http.StatusUnauthorized, failed(unauthenticatedMessage))
			return
		}
		writeAuthResponse(w, http.StatusOK, succeeded(okMessage, &profile))
	}
}

// GetLogoutHandler returns the provider end-session URL. The local session is left intact;
// the frontend calls POST /logout once the provider has ended its session.
func (s *Server) GetLogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var idToken string
		session, err := s.currentSession(r.Context(), r)
		if err != nil {
			requestLogger(r).Warn().Err(err).Msg("failed to load session, building logout url without id_token_hint")
		} else if session != nil {
			idToken = session.IDToken
		}

		writeAuthResponse(w, http.StatusOK, succeeded(s.auth.LogoutURL(idToken), nil))
	}
}

// LogoutHandler invalidates the local session. Logging out without a session succeeds.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id := s.sessionID(r); id != "" {
			if err := s.sessions.Invalidate(r.Context(), id); err != nil {
				requestLogger(r).Err(err).Msg("failed to invalidate session")
				writeInternalError(w)
				return
			}
			requestLogger(r).Info().Msg("local session invalidated")
		}

		s.ClearSessionCookie(w, r)
		s.metrics.ObserveLogout()
		writeAuthResponse(w, http.StatusOK, succeeded("Logout successful", nil))
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, healthMessage)
	}
}

func (s *Server) PublicHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, publicMessage)
	}
}
