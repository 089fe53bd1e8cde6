package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/jrsteele09/go-auth-relay/auth"
	"github.com/jrsteele09/go-auth-relay/internal/config"
	"github.com/jrsteele09/go-auth-relay/internal/metrics"
	"github.com/jrsteele09/go-auth-relay/internal/testidp"
	"github.com/jrsteele09/go-auth-relay/server"
	"github.com/jrsteele09/go-auth-relay/sessions"
	"github.com/jrsteele09/go-auth-relay/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	testCookieName  = "relay_session"
	testRedirectURI = "https://app.example.com/auth/callback"
	testOrigin      = "http://localhost:5173"
	basePath        = "/api/auth"
)

// testFixture holds a server wired to a local identity provider and an in-memory session store.
type testFixture struct {
	idp      *testidp.IdP
	sessions *sessions.InMemoryStore
	registry *prometheus.Registry
	server   *server.Server
}

type fixtureOptions struct {
	enforceState bool
	store        sessions.Store
}

func setupTestFixture(t *testing.T) *testFixture {
	return setupTestFixtureWith(t, fixtureOptions{})
}

func setupTestFixtureWith(t *testing.T, opts fixtureOptions) *testFixture {
	t.Helper()

	t.Setenv("ENV", "TEST")
	t.Setenv("SESSION_COOKIE_NAME", testCookieName)
	t.Setenv("SESSION_MAX_AGE", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", testOrigin)
	t.Setenv("API_BASE_PATH", basePath)

	idp := testidp.Start(t)
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	authService, err := auth.NewService(auth.Settings{
		ClientID:           testidp.ClientID,
		ClientSecret:       testidp.ClientSecret,
		Endpoints:          idp.Endpoints(),
		DefaultRedirectURI: testRedirectURI,
		HTTPClient:         cleanhttp.DefaultClient(),
		EnforceState:       opts.enforceState,
		FlowTTL:            time.Minute,
	}, auth.WithMetrics(m))
	require.NoError(t, err)

	memory := sessions.NewInMemoryStore()
	var store sessions.Store = memory
	if opts.store != nil {
		store = opts.store
	}

	srv, err := server.New(config.New(), authService, store, server.WithMetrics(m, registry))
	require.NoError(t, err)

	return &testFixture{idp: idp, sessions: memory, registry: registry, server: srv}
}

// do sends a request through the server, attaching the session cookie when sessionID is non-empty.
func (f *testFixture) do(t *testing.T, method, path string, body any, sessionID string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: sessionID})
	}

	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, req)
	return w
}

// authenticatedSession stores an authenticated session and returns its id.
func (f *testFixture) authenticatedSession(t *testing.T, idToken string) string {
	t.Helper()
	s := sessions.New(sessions.NewID(), time.Hour).Authenticate(users.Profile{Subject: "existing", Email: "e@x.com"}, idToken)
	require.NoError(t, f.sessions.Put(context.Background(), s.ID, s))
	return s.ID
}

type authResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    *users.Profile `json:"user"`
}

func decodeAuthResponse(t *testing.T, w *httptest.ResponseRecorder) authResponse {
	t.Helper()
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	return nil
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := server.New(config.New(), nil, sessions.NewInMemoryStore())
	require.Error(t, err)

	authService, err := auth.NewService(auth.Settings{ClientID: "c", Endpoints: testidp.Start(t).Endpoints()})
	require.NoError(t, err)
	_, err = server.New(config.New(), authService, nil)
	require.Error(t, err)
}

func TestHealthAndPublic(t *testing.T) {
	f := setupTestFixture(t)

	w := f.do(t, http.MethodGet, basePath+"/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OpenID Connect Auth API is running", w.Body.String())

	w = f.do(t, http.MethodGet, basePath+"/public", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "This is a public endpoint, no authentication required", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	f := setupTestFixture(t)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, basePath+"/login-url", nil, "").Code)

	w := f.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `auth_relay_login_urls_total{mode="standard"} 1`)
}

func TestNotFound(t *testing.T) {
	f := setupTestFixture(t)

	w := f.do(t, http.MethodGet, "/nope", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

// mustField returns the raw JSON of one top-level field of body.
func mustField(t *testing.T, body []byte, field string) string {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields))
	raw, ok := fields[field]
	require.True(t, ok, "missing field %q", field)
	return string(raw)
}
