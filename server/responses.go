package server

import (
	"encoding/json"
	"io"
	"net/http"

	relayerrors "github.com/jrsteele09/go-auth-relay/internal/errors"
	"github.com/jrsteele09/go-auth-relay/users"
	"github.com/rs/zerolog/log"
)

// AuthResponse is the envelope of every auth API response.
type AuthResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    *users.Profile `json:"user"`
}

func succeeded(message string, user *users.Profile) AuthResponse {
	return AuthResponse{Success: true, Message: message, User: user}
}

func failed(message string) AuthResponse {
	return AuthResponse{Success: false, Message: message}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to write response body")
	}
}

func writeAuthResponse(w http.ResponseWriter, status int, resp AuthResponse) {
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter) {
	writeAuthResponse(w, http.StatusInternalServerError, failed(relayerrors.ErrInternal.Error()))
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}
