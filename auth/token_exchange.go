package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-auth-relay/internal/metrics"
	"github.com/jrsteele09/go-auth-relay/oauthmodel"
	"github.com/jrsteele09/go-auth-relay/users"
	"golang.org/x/oauth2"
)

var errNullUserInfo = errors.New("userinfo response is not a JSON object")

// ExchangeResult is the outcome of a successful callback exchange.
type ExchangeResult struct {
	Profile users.Profile
	IDToken string // Empty when the token response carried no id_token
}

// TokenExchangeClient turns an authorization code into a user profile: code for tokens
// at the token endpoint, then access token for claims at the userinfo endpoint.
type TokenExchangeClient struct {
	oauth      *oauth2.Config
	provider   *oidc.Provider
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// NewTokenExchangeClient creates a client for the given credentials and endpoint registry.
// No network call is made; the provider is configured from the registry rather than discovered.
func NewTokenExchangeClient(clientID, clientSecret string, endpoints oauthmodel.Endpoints, httpClient *http.Client, m *metrics.Metrics) *TokenExchangeClient {
	httpClient = requireTokenStatusOK(httpClient, endpoints.Token)
	ctx := oidc.ClientContext(context.Background(), httpClient)
	providerConfig := &oidc.ProviderConfig{
		IssuerURL:   endpoints.Issuer,
		AuthURL:     endpoints.Authorization,
		TokenURL:    endpoints.Token,
		UserInfoURL: endpoints.UserInfo,
		JWKSURL:     endpoints.JWKS,
	}

	return &TokenExchangeClient{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   endpoints.Authorization,
				TokenURL:  endpoints.Token,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
			Scopes: oauthmodel.Scopes,
		},
		provider:   providerConfig.NewProvider(ctx),
		httpClient: httpClient,
		metrics:    m,
	}
}

// Exchange runs the two outbound calls strictly in sequence. A token endpoint failure
// short-circuits before userinfo is called. Every failure, including a panic while
// handling provider data, is returned as an *AuthFailure. Nothing is retried or cached.
func (c *TokenExchangeClient) Exchange(ctx context.Context, code, redirectURI string) (result ExchangeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = ExchangeResult{}, authenticationFailed(fmt.Errorf("%v", r))
		}
	}()

	ctx = oidc.ClientContext(ctx, c.httpClient)

	token, err := c.exchangeCode(ctx, code, redirectURI)
	if err != nil {
		return ExchangeResult{}, tokenExchangeFailed(err)
	}

	info, err := c.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return ExchangeResult{}, userInfoFailed(err)
	}

	var raw map[string]any
	if err := info.Claims(&raw); err != nil {
		return ExchangeResult{}, authenticationFailed(err)
	}
	if raw == nil {
		return ExchangeResult{}, userInfoFailed(errNullUserInfo)
	}

	idToken, _ := token.Extra("id_token").(string)
	return ExchangeResult{
		Profile: users.ProfileFromClaims(users.ClaimsFromRaw(raw)),
		IDToken: idToken,
	}, nil
}

// exchangeCode posts grant_type=authorization_code with the client credentials in a
// Basic Authorization header. A response without an access_token is an error.
func (c *TokenExchangeClient) exchangeCode(ctx context.Context, code, redirectURI string) (token *oauth2.Token, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveIdPRequest(metrics.EndpointToken, start, err)
	}()

	cfg := *c.oauth
	cfg.RedirectURL = redirectURI
	return cfg.Exchange(ctx, code)
}

func (c *TokenExchangeClient) fetchUserInfo(ctx context.Context, accessToken string) (info *oidc.UserInfo, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveIdPRequest(metrics.EndpointUserInfo, start, err)
	}()

	return c.provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
}

// tokenStatusTransport fails any token endpoint response other than 200 OK.
// oauth2.Config.Exchange alone accepts every 2xx.
type tokenStatusTransport struct {
	base     http.RoundTripper
	tokenURL *url.URL
}

func (t *tokenStatusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || !t.isTokenRequest(req) || resp.StatusCode == http.StatusOK {
		return resp, err
	}
	_ = resp.Body.Close()
	return nil, fmt.Errorf("token endpoint responded with status %d", resp.StatusCode)
}

func (t *tokenStatusTransport) isTokenRequest(req *http.Request) bool {
	return req.URL.Host == t.tokenURL.Host && req.URL.Path == t.tokenURL.Path
}

// requireTokenStatusOK returns a copy of client whose transport enforces a 200 from tokenURL.
func requireTokenStatusOK(client *http.Client, tokenURL string) *http.Client {
	parsed, err := url.Parse(tokenURL)
	if err != nil {
		return client
	}
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *client
	wrapped.Transport = &tokenStatusTransport{base: base, tokenURL: parsed}
	return &wrapped
}
