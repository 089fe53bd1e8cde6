package auth

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-relay/oauthmodel"
)

// URLBuilder builds the browser-facing URLs of the flow. It performs no I/O.
type URLBuilder struct {
	clientID  string
	endpoints oauthmodel.Endpoints
}

// NewURLBuilder creates a URL builder for the given client and endpoint registry.
func NewURLBuilder(clientID string, endpoints oauthmodel.Endpoints) *URLBuilder {
	return &URLBuilder{clientID: clientID, endpoints: endpoints}
}

// AuthorizationValues returns the semantic parameters of an authorization request.
// The inline authorization URL and the pushed request body are both built from it,
// so the two transports always carry the same parameters.
func (b *URLBuilder) AuthorizationValues(p oauthmodel.AuthorizationParameters) url.Values {
	v := url.Values{}
	v.Set(oauthmodel.ParamClientID, b.clientID)
	v.Set(oauthmodel.ParamRedirectURI, p.RedirectURI)
	v.Set(oauthmodel.ParamResponseType, string(oauthmodel.CodeResponseType))
	v.Set(oauthmodel.ParamScope, oauthmodel.Scope)
	v.Set(oauthmodel.ParamState, p.State)
	v.Set(oauthmodel.ParamNonce, p.Nonce)
	if prompt, ok := p.PromptParam(); ok {
		v.Set(oauthmodel.ParamPrompt, prompt)
	}
	return v
}

// AuthorizationURL builds a standard authorization request URL with every parameter inline.
func (b *URLBuilder) AuthorizationURL(p oauthmodel.AuthorizationParameters) string {
	return withQuery(b.endpoints.Authorization, b.AuthorizationValues(p))
}

// PushedAuthorizationURL builds the authorization URL for a request pushed via PAR.
// Only client_id and request_uri are sent, the rest is held by the provider.
func (b *URLBuilder) PushedAuthorizationURL(requestURI string) string {
	v := url.Values{}
	v.Set(oauthmodel.ParamClientID, b.clientID)
	v.Set(oauthmodel.ParamRequestURI, requestURI)
	return withQuery(b.endpoints.Authorization, v)
}

// LogoutURL builds the provider end-session URL. id_token_hint is added only for a
// non-empty idToken. post_logout_redirect_uri is left to the frontend, which knows
// where it wants to land.
func (b *URLBuilder) LogoutURL(idToken string) string {
	v := url.Values{}
	v.Set(oauthmodel.ParamClientID, b.clientID)
	if idToken != "" {
		v.Set(oauthmodel.ParamIDTokenHint, idToken)
	}
	return withQuery(b.endpoints.EndSession, v)
}

func withQuery(endpoint string, v url.Values) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + v.Encode()
}
