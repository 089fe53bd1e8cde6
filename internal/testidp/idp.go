// Package testidp provides a disposable identity provider serving the token, userinfo
// and pushed authorization request endpoints, for tests of the relay.
package testidp

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-relay/oauthmodel"
	"github.com/stretchr/testify/require"
)

const (
	ClientID     = "relay-client"
	ClientSecret = "relay-secret"
	AccessToken  = "access-token-1"
	RequestURI   = "urn:ietf:params:oauth:request_uri:abc123"
)

type reply struct {
	status int
	body   string
}

// IdP is a local identity provider with configurable replies and call recording.
type IdP struct {
	server *httptest.Server
	t      *testing.T

	mu            sync.Mutex
	token         reply
	userInfo      reply
	par           reply
	tokenCalls    int
	userInfoCalls int
	parCalls      int
	lastTokenForm url.Values
	lastPARForm   url.Values
	lastBearer    string
}

// Start creates an IdP that answers every endpoint successfully: the token endpoint
// returns an access token and an id_token, userinfo returns {sub:"u1", email:"a@b.com"},
// and PAR returns RequestURI. The server is closed when the test ends.
func Start(t *testing.T) *IdP {
	t.Helper()

	p := &IdP{t: t}
	p.SetTokenResponse(http.StatusOK, p.TokenBody(p.IDToken(jwt.MapClaims{"sub": "u1"})))
	p.SetUserInfoResponse(http.StatusOK, `{"sub":"u1","email":"a@b.com"}`)
	p.SetPARResponse(http.StatusCreated, `{"request_uri":"`+RequestURI+`","expires_in":60}`)

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+oauthmodel.TokenPath, p.handleToken)
	mux.HandleFunc("GET "+oauthmodel.UserInfoPath, p.handleUserInfo)
	mux.HandleFunc("POST "+oauthmodel.PushedAuthorizationRequestPath, p.handlePAR)
	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)

	return p
}

// Endpoints returns the endpoint registry pointing at this provider.
func (p *IdP) Endpoints() oauthmodel.Endpoints {
	return oauthmodel.EndpointsForIssuer(p.server.URL)
}

// URL is the issuer base URL.
func (p *IdP) URL() string {
	return p.server.URL
}

// Close stops the provider so every call fails at the transport level.
func (p *IdP) Close() {
	p.server.Close()
}

// IDToken builds a signed JWT with the given claims. The relay never verifies the
// signature, so a shared test key is enough.
func (p *IdP) IDToken(claims jwt.MapClaims) string {
	p.t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(p.t, err)
	return signed
}

// TokenBody renders a token endpoint JSON body. An empty idToken is omitted.
func (p *IdP) TokenBody(idToken string) string {
	p.t.Helper()
	raw, err := json.Marshal(oauthmodel.TokenResponse{
		AccessToken: AccessToken,
		IDToken:     idToken,
		TokenType:   "Bearer",
		ExpiresIn:   3600,
		Scope:       oauthmodel.Scope,
	})
	require.NoError(p.t, err)
	return string(raw)
}

func (p *IdP) SetTokenResponse(status int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = reply{status: status, body: body}
}

func (p *IdP) SetUserInfoResponse(status int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.userInfo = reply{status: status, body: body}
}

func (p *IdP) SetPARResponse(status int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.par = reply{status: status, body: body}
}

func (p *IdP) TokenCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenCalls
}

func (p *IdP) UserInfoCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userInfoCalls
}

func (p *IdP) PARCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parCalls
}

// LastTokenRequest returns the form of the most recent token request.
func (p *IdP) LastTokenRequest() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastTokenForm
}

// LastPARRequest returns the form of the most recent pushed authorization request.
func (p *IdP) LastPARRequest() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPARForm
}

// LastBearerToken returns the bearer token presented to the userinfo endpoint.
func (p *IdP) LastBearerToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastBearer
}

func (p *IdP) handleToken(w http.ResponseWriter, r *http.Request) {
	form, ok := p.readClientForm(w, r)
	if !ok {
		return
	}

	p.mu.Lock()
	p.tokenCalls++
	p.lastTokenForm = form
	rep := p.token
	p.mu.Unlock()

	if form.Get(oauthmodel.ParamGrantType) != string(oauthmodel.AuthorizationCodeGrant) {
		writeJSON(w, http.StatusBadRequest, `{"error":"unsupported_grant_type"}`)
		return
	}
	if form.Get(oauthmodel.ParamCode) == "" {
		writeJSON(w, http.StatusBadRequest, `{"error":"invalid_request"}`)
		return
	}
	writeJSON(w, rep.status, rep.body)
}

func (p *IdP) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	bearer := r.Header.Get("Authorization")

	p.mu.Lock()
	p.userInfoCalls++
	p.lastBearer = bearer
	rep := p.userInfo
	p.mu.Unlock()

	if bearer != "Bearer "+AccessToken {
		writeJSON(w, http.StatusUnauthorized, `{"error":"invalid_token"}`)
		return
	}
	writeJSON(w, rep.status, rep.body)
}

func (p *IdP) handlePAR(w http.ResponseWriter, r *http.Request) {
	form, ok := p.readClientForm(w, r)
	if !ok {
		return
	}

	p.mu.Lock()
	p.parCalls++
	p.lastPARForm = form
	rep := p.par
	p.mu.Unlock()

	writeJSON(w, rep.status, rep.body)
}

// readClientForm authenticates the client with HTTP Basic credentials and parses the form.
func (p *IdP) readClientForm(w http.ResponseWriter, r *http.Request) (url.Values, bool) {
	user, pass, ok := r.BasicAuth()
	if ok {
		user, _ = url.QueryUnescape(user)
		pass, _ = url.QueryUnescape(pass)
	}
	if !ok || user != ClientID || pass != ClientSecret {
		writeJSON(w, http.StatusUnauthorized, `{"error":"invalid_client"}`)
		return nil, false
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, `{"error":"invalid_request"}`)
		return nil, false
	}
	form, err := url.ParseQuery(string(raw))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, `{"error":"invalid_request"}`)
		return nil, false
	}
	return form, true
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
