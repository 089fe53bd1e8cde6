package oauthmodel

// PushedAuthorizationResponse is the body returned by the pushed authorization request
// endpoint (RFC 9126).
type PushedAuthorizationResponse struct {
	// RequestURI is the opaque reference the browser presents to the authorization
	// endpoint in place of the full parameter set.
	// Example: "urn:ietf:params:oauth:request_uri:6esc_11ACC5bwc014ltc14eY22c"
	RequestURI string `json:"request_uri"`

	// ExpiresIn is the lifetime of RequestURI in seconds.
	// Example: 60
	ExpiresIn int `json:"expires_in,omitempty"`
}
