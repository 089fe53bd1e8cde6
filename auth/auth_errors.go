package auth

import (
	"errors"
	"fmt"

	"github.com/jrsteele09/go-auth-relay/oauthmodel"
)

// Failure kinds. An *AuthFailure always unwraps to exactly one of these.
var (
	ErrTokenExchange  = errors.New("token exchange failed")
	ErrUserInfo       = errors.New("userinfo fetch failed")
	ErrAuthentication = errors.New("authentication failed")
)

// AuthFailure is an identity-provider side failure of the callback flow. Reason is safe
// to return to the browser; the underlying cause is kept for logs only.
type AuthFailure struct {
	Reason string
	kind   error
	cause  error
}

func (f *AuthFailure) Error() string {
	return f.Reason
}

// Unwrap exposes both the failure kind and the underlying cause to errors.Is/As.
func (f *AuthFailure) Unwrap() []error {
	if f.cause == nil {
		return []error{f.kind}
	}
	return []error{f.kind, f.cause}
}

// Cause returns the underlying error, if any.
func (f *AuthFailure) Cause() error {
	return f.cause
}

func tokenExchangeFailed(cause error) *AuthFailure {
	return &AuthFailure{Reason: ErrTokenExchange.Error(), kind: ErrTokenExchange, cause: cause}
}

func userInfoFailed(cause error) *AuthFailure {
	return &AuthFailure{Reason: ErrUserInfo.Error(), kind: ErrUserInfo, cause: cause}
}

func authenticationFailed(cause error) *AuthFailure {
	return &AuthFailure{
		Reason: fmt.Sprintf("%s: %v", ErrAuthentication, cause),
		kind:   ErrAuthentication,
		cause:  cause,
	}
}

func invalidState(cause error) *AuthFailure {
	return &AuthFailure{Reason: oauthmodel.ErrInvalidState.Error(), kind: oauthmodel.ErrInvalidState, cause: cause}
}

func invalidNonce(cause error) *AuthFailure {
	return &AuthFailure{Reason: oauthmodel.ErrInvalidNonce.Error(), kind: oauthmodel.ErrInvalidNonce, cause: cause}
}

// AsAuthFailure reports whether err is, or wraps, an *AuthFailure.
func AsAuthFailure(err error) (*AuthFailure, bool) {
	var failure *AuthFailure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}
