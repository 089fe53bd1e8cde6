package oauthmodel

import "strings"

// AuthorizationParameters holds the per-login values sent to the identity provider's
// authorization endpoint, either inline in the query string or pushed via PAR.
// They are transient and never persisted beyond a pending login flow.
type AuthorizationParameters struct {
	// RedirectURI is where the identity provider sends the browser back with the code.
	// Required: Yes
	// Example: "https://onboarding.example.com/auth/callback"
	// Security: Must match a URI pre-registered with the identity provider. The relay
	// passes caller input through and relies on the provider to enforce the match.
	RedirectURI string

	// State is an opaque value used to correlate the callback with the login request.
	// Required: Yes (generated server-side when the caller omits one)
	// Example: "6f1c0d3e-3b44-4a3d-9d0e-8f6f7c0c2e11"
	// Security: Compared byte-for-byte on return when state binding is enforced
	State string

	// Nonce binds the ID token to this login request.
	// Required: Yes (always generated fresh per login-URL request)
	// Security: Prevents ID token replay, echoed back in the id_token "nonce" claim
	Nonce string

	// Prompt asks the provider for a specific interaction.
	// Required: No
	// Example: "login" or "consent"
	// Note: "" and "none" are treated identically and omitted from the request,
	// some providers reject unsupported prompt values.
	Prompt Prompt
}

// PromptParam returns the prompt value to send and whether it should be sent at all.
func (p AuthorizationParameters) PromptParam() (string, bool) {
	return p.Prompt.Param()
}

// Param returns the prompt as it should appear on the wire and whether it should be included.
func (p Prompt) Param() (string, bool) {
	value := strings.TrimSpace(string(p))
	if value == "" || Prompt(value) == PromptNone {
		return "", false
	}
	return value, true
}
