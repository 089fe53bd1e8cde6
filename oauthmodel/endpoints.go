package oauthmodel

import "strings"

// Endpoint paths of the identity provider's discovery document, relative to the issuer.
const (
	AuthorizationPath              = "/auth"
	TokenPath                      = "/token"
	UserInfoPath                   = "/me"
	JWKSPath                       = "/jwks"
	EndSessionPath                 = "/session/end"
	PushedAuthorizationRequestPath = "/request"
)

// Endpoints is the fixed set of identity provider endpoints the relay talks to.
// It carries no logic and is immutable once built.
type Endpoints struct {
	Issuer                     string
	Authorization              string
	Token                      string
	UserInfo                   string
	JWKS                       string
	EndSession                 string
	PushedAuthorizationRequest string
}

// EndpointsForIssuer derives the endpoint set from the issuer base URL using the
// provider's discovery layout.
func EndpointsForIssuer(issuer string) Endpoints {
	base := strings.TrimRight(issuer, "/")
	return Endpoints{
		Issuer:                     base,
		Authorization:              base + AuthorizationPath,
		Token:                      base + TokenPath,
		UserInfo:                   base + UserInfoPath,
		JWKS:                       base + JWKSPath,
		EndSession:                 base + EndSessionPath,
		PushedAuthorizationRequest: base + PushedAuthorizationRequestPath,
	}
}
