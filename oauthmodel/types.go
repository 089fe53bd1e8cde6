package oauthmodel

// ResponseType represents the OAuth 2.0 response type requested from the authorization endpoint.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow, the only flow the relay drives.
	// Example: /auth?response_type=code&client_id=...
	CodeResponseType ResponseType = "code"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: grant_type, code, redirect_uri (client credentials via Basic auth)
	// Returns: access_token, id_token
	AuthorizationCodeGrant GrantType = "authorization_code"
)

// Prompt is the OIDC prompt parameter.
type Prompt string

const (
	// PromptNone requests no interaction. Treated as "no prompt" and never sent.
	PromptNone Prompt = "none"
	// PromptLogin forces re-authentication at the provider.
	PromptLogin Prompt = "login"
	// PromptConsent forces the consent screen.
	PromptConsent Prompt = "consent"
)

// Scopes requested on every authorization request. The relay only needs the
// claims required to populate a user profile.
var Scopes = []string{"openid", "profile", "email"}

// Scope is Scopes in its space separated wire form.
const Scope = "openid profile email"

// Form and query parameter names.
const (
	ParamClientID     = "client_id"
	ParamRedirectURI  = "redirect_uri"
	ParamResponseType = "response_type"
	ParamScope        = "scope"
	ParamState        = "state"
	ParamNonce        = "nonce"
	ParamPrompt       = "prompt"
	ParamRequestURI   = "request_uri"
	ParamIDTokenHint  = "id_token_hint"
	ParamGrantType    = "grant_type"
	ParamCode         = "code"
)
