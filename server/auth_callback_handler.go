package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jrsteele09/go-auth-relay/auth"
	"github.com/jrsteele09/go-auth-relay/internal/metrics"
	"github.com/jrsteele09/go-auth-relay/oauthmodel"
	"github.com/jrsteele09/go-auth-relay/sessions"
)

const maxRequestBodyBytes = 64 << 10

type callbackRequest struct {
	Code        string `json:"code"`
	State       string `json:"state"`
	RedirectURI string `json:"redirectUri"`
}

// CallbackHandler exchanges the authorization code forwarded by the frontend and, on
// success, stores the identity in the browser session with a single Put. Failures leave
// the session exactly as it was.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The exchange and the session write complete even if the browser goes away.
		ctx := context.WithoutCancel(r.Context())

		var body callbackRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			s.metrics.ObserveCallback(metrics.CallbackBadRequest)
			writeAuthResponse(w, http.StatusBadRequest, failed("Invalid request body"))
			return
		}
		if body.Code == "" {
			s.writeCallbackError(w, r, oauthmodel.ErrMissingCode)
			return
		}

		current, err := s.currentSession(ctx, r)
		if err != nil {
			s.writeCallbackError(w, r, err)
			return
		}

		var sessionID string
		if current != nil {
			sessionID = current.ID
		}

		result, err := s.auth.Authenticate(ctx, auth.CallbackRequest{
			Code:        body.Code,
			State:       body.State,
			RedirectURI: body.RedirectURI,
			SessionID:   sessionID,
		})
		if err != nil {
			s.writeCallbackError(w, r, err)
			return
		}

		if sessionID == "" {
			sessionID = sessions.NewID()
		}
		session := sessions.New(sessionID, s.maxAge).Authenticate(result.Profile, result.IDToken)
		if current != nil {
			session.CreatedAt = current.CreatedAt
		}
		if err := s.sessions.Put(ctx, sessionID, session); err != nil {
			s.writeCallbackError(w, r, err)
			return
		}

		s.SetSessionCookie(w, r, sessionID)
		s.metrics.ObserveCallback(metrics.CallbackSuccess)
		requestLogger(r).Info().Str("sub", result.Profile.Subject).Msg("user authenticated")

		profile := result.Profile
		writeAuthResponse(w, http.StatusOK, succeeded("Authentication successful", &profile))
	}
}

func (s *Server) writeCallbackError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, oauthmodel.ErrMissingCode):
		s.metrics.ObserveCallback(metrics.CallbackBadRequest)
		writeAuthResponse(w, http.StatusBadRequest, failed("Authorization code is required"))
	case errors.Is(err, oauthmodel.ErrMissingState):
		s.metrics.ObserveCallback(metrics.CallbackBadRequest)
		writeAuthResponse(w, http.StatusBadRequest, failed("State is required"))
	default:
		if failure, ok := auth.AsAuthFailure(err); ok {
			requestLogger(r).Error().Err(failure.Cause()).Str("reason", failure.Reason).Msg("authentication failed")
			s.metrics.ObserveCallback(metrics.CallbackAuthFailed)
			writeAuthResponse(w, http.StatusUnauthorized, failed(failure.Reason))
			return
		}
		requestLogger(r).Err(err).Msg("callback failed")
		s.metrics.ObserveCallback(metrics.CallbackError)
		writeInternalError(w)
	}
}
