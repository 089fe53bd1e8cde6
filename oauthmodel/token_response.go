package oauthmodel

// TokenResponse is the token endpoint response of an authorization_code grant (RFC 6749 5.1).
// The relay only reads AccessToken, to call userinfo, and IDToken, kept for logout.
type TokenResponse struct {
	// AccessToken is presented to the userinfo endpoint as "Authorization: Bearer <access_token>".
	// A response without it is a failed exchange.
	AccessToken string `json:"access_token"`

	// IDToken is the OpenID Connect ID token. Optional; when present it is stored in the
	// session and later sent back as id_token_hint.
	IDToken string `json:"id_token,omitempty"`

	// TokenType is "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	ExpiresIn int `json:"expires_in,omitempty"`

	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}
