package oauthmodel

import "errors"

var (
	ErrMissingCode       = errors.New("authorization code is required")
	ErrMissingState      = errors.New("state is required")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidNonce      = errors.New("invalid nonce")
	ErrMissingRequestURI = errors.New("pushed authorization response has no request_uri")
)
