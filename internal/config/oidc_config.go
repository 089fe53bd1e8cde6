package config

import (
	"time"

	"github.com/jrsteele09/go-auth-relay/oauthmodel"
)

const (
	clientIDVar           = "OPENID_CLIENT_ID"
	clientSecretVar       = "OPENID_CLIENT_SECRET"
	issuerVar             = "OIDC_ISSUER"
	authorizationVar      = "OIDC_AUTHORIZATION_ENDPOINT"
	tokenVar              = "OIDC_TOKEN_ENDPOINT"
	userInfoVar           = "OIDC_USERINFO_ENDPOINT"
	jwksVar               = "OIDC_JWKS_ENDPOINT"
	endSessionVar         = "OIDC_END_SESSION_ENDPOINT"
	parVar                = "OIDC_PAR_ENDPOINT"
	defaultRedirectURIVar = "OIDC_DEFAULT_REDIRECT_URI"
	httpTimeoutVar        = "OIDC_HTTP_TIMEOUT"
	enforceStateVar       = "OIDC_ENFORCE_STATE"
	flowTTLVar            = "OIDC_FLOW_TTL"

	DefaultIssuer      = "https://id-dev.mindx.edu.vn"
	DefaultRedirectURI = "https://onboarding.mindx.edu.vn/auth/callback"
)

type OIDCConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetEndpoints() oauthmodel.Endpoints
	GetDefaultRedirectURI() string
	GetHTTPTimeout() time.Duration
	GetEnforceState() bool
	GetFlowTTL() time.Duration
}

type OIDC struct{}

var _ OIDCConfig = OIDC{}

func (OIDC) GetClientID() string {
	return GetEnv(clientIDVar, "")
}

func (OIDC) GetClientSecret() string {
	return GetEnv(clientSecretVar, "")
}

// GetEndpoints derives the endpoint registry from OIDC_ISSUER; each endpoint can be
// overridden individually.
func (OIDC) GetEndpoints() oauthmodel.Endpoints {
	e := oauthmodel.EndpointsForIssuer(GetEnv(issuerVar, DefaultIssuer))
	e.Authorization = GetEnv(authorizationVar, e.Authorization)
	e.Token = GetEnv(tokenVar, e.Token)
	e.UserInfo = GetEnv(userInfoVar, e.UserInfo)
	e.JWKS = GetEnv(jwksVar, e.JWKS)
	e.EndSession = GetEnv(endSessionVar, e.EndSession)
	e.PushedAuthorizationRequest = GetEnv(parVar, e.PushedAuthorizationRequest)
	return e
}

func (OIDC) GetDefaultRedirectURI() string {
	return GetEnv(defaultRedirectURIVar, DefaultRedirectURI)
}

func (OIDC) GetHTTPTimeout() time.Duration {
	return GetEnvDuration(httpTimeoutVar, 30*time.Second)
}

func (OIDC) GetEnforceState() bool {
	return GetEnvBool(enforceStateVar, false)
}

func (OIDC) GetFlowTTL() time.Duration {
	return GetEnvDuration(flowTTLVar, 10*time.Minute)
}
