package auth_test

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/jrsteele09/go-auth-relay/auth"
	"github.com/jrsteele09/go-auth-relay/auth/authflowrepo"
	"github.com/jrsteele09/go-auth-relay/internal/metrics"
	"github.com/jrsteele09/go-auth-relay/internal/testidp"
	"github.com/jrsteele09/go-auth-relay/oauthmodel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const testSessionID = "session-1"

// testFixture holds a service wired to a local identity provider.
type testFixture struct {
	idp     *testidp.IdP
	flows   *authflowrepo.InMemoryRepo
	metrics *metrics.Metrics
	service *auth.Service
}

func setupTestFixture(t *testing.T, enforceState bool) *testFixture {
	t.Helper()

	idp := testidp.Start(t)
	flows := authflowrepo.NewInMemoryRepo()
	m := metrics.New(prometheus.NewRegistry())

	service, err := auth.NewService(auth.Settings{
		ClientID:           testidp.ClientID,
		ClientSecret:       testidp.ClientSecret,
		Endpoints:          idp.Endpoints(),
		DefaultRedirectURI: testRedirectURI,
		HTTPClient:         cleanhttp.DefaultClient(),
		EnforceState:       enforceState,
		FlowTTL:            time.Minute,
	}, auth.WithMetrics(m), auth.WithFlowRepo(flows))
	require.NoError(t, err)

	return &testFixture{idp: idp, flows: flows, metrics: m, service: service}
}

func query(t *testing.T, raw string) url.Values {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query()
}

func TestNewService_Validation(t *testing.T) {
	endpoints := oauthmodel.EndpointsForIssuer(testIssuer)

	_, err := auth.NewService(auth.Settings{Endpoints: endpoints})
	require.Error(t, err)

	_, err = auth.NewService(auth.Settings{ClientID: testClientID})
	require.Error(t, err)

	noToken := endpoints
	noToken.Token = ""
	_, err = auth.NewService(auth.Settings{ClientID: testClientID, Endpoints: noToken})
	require.Error(t, err)

	service, err := auth.NewService(auth.Settings{ClientID: testClientID, Endpoints: endpoints})
	require.NoError(t, err)
	require.False(t, service.EnforcesState())
}

func TestLoginURL_Standard(t *testing.T) {
	f := setupTestFixture(t, false)

	result, err := f.service.LoginURL(context.Background(), auth.LoginRequest{})
	require.NoError(t, err)
	require.Equal(t, metrics.LoginModeStandard, result.Mode)
	require.NotEmpty(t, result.State)
	require.NotEmpty(t, result.Nonce)

	q := query(t, result.URL)
	require.Equal(t, testRedirectURI, q.Get("redirect_uri"))
	require.Equal(t, result.State, q.Get("state"))
	require.Equal(t, result.Nonce, q.Get("nonce"))
	require.Equal(t, 0, f.idp.PARCalls())
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LoginURLs.WithLabelValues(metrics.LoginModeStandard)))
}

func TestLoginURL_KeepsCallerState(t *testing.T) {
	f := setupTestFixture(t, false)

	result, err := f.service.LoginURL(context.Background(), auth.LoginRequest{
		RedirectURI: "https://other.example.com/cb",
		State:       "caller-state",
		Prompt:      oauthmodel.PromptLogin,
	})
	require.NoError(t, err)
	require.Equal(t, "caller-state", result.State)

	q := query(t, result.URL)
	require.Equal(t, "caller-state", q.Get("state"))
	require.Equal(t, "https://other.example.com/cb", q.Get("redirect_uri"))
	require.Equal(t, "login", q.Get("prompt"))
}

func TestLoginURL_FreshNonceEachCall(t *testing.T) {
	f := setupTestFixture(t, false)

	first, err := f.service.LoginURL(context.Background(), auth.LoginRequest{State: "s"})
	require.NoError(t, err)
	second, err := f.service.LoginURL(context.Background(), auth.LoginRequest{State: "s"})
	require.NoError(t, err)
	require.NotEqual(t, first.Nonce, second.Nonce)
}

func TestLoginURL_PAR(t *testing.T) {
	f := setupTestFixture(t, false)

	result, err := f.service.LoginURL(context.Background(), auth.LoginRequest{UsePAR: true})
	require.NoError(t, err)
	require.Equal(t, metrics.LoginModePAR, result.Mode)

	q := query(t, result.URL)
	require.Len(t, q, 2)
	require.Equal(t, testidp.ClientID, q.Get("client_id"))
	require.Equal(t, testidp.RequestURI, q.Get("request_uri"))

	pushed := f.idp.LastPARRequest()
	require.Equal(t, result.State, pushed.Get("state"))
	require.Equal(t, result.Nonce, pushed.Get("nonce"))
}

func TestLoginURL_PARFallback(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "provider error", status: http.StatusBadRequest, body: `{"error":"invalid_request"}`},
		{name: "missing request_uri", status: http.StatusCreated, body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, false)
			f.idp.SetPARResponse(tt.status, tt.body)

			result, err := f.service.LoginURL(context.Background(), auth.LoginRequest{UsePAR: true, State: "s1"})
			require.NoError(t, err)
			require.Equal(t, metrics.LoginModePARFallback, result.Mode)

			q := query(t, result.URL)
			require.False(t, q.Has("request_uri"))
			require.Equal(t, "s1", q.Get("state"))
			require.Equal(t, "code", q.Get("response_type"))
			require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LoginURLs.WithLabelValues(metrics.LoginModePARFallback)))
		})
	}
}

func TestLoginURL_PARProviderDown(t *testing.T) {
	f := setupTestFixture(t, false)
	f.idp.Close()

	result, err := f.service.LoginURL(context.Background(), auth.LoginRequest{UsePAR: true})
	require.NoError(t, err)
	require.Equal(t, metrics.LoginModePARFallback, result.Mode)
	require.Equal(t, result.State, query(t, result.URL).Get("state"))
}

func TestAuthenticate_MissingCode(t *testing.T) {
	f := setupTestFixture(t, false)

	_, err := f.service.Authenticate(context.Background(), auth.CallbackRequest{})
	require.ErrorIs(t, err, oauthmodel.ErrMissingCode)
	require.Equal(t, 0, f.idp.TokenCalls())
}

func TestAuthenticate_Success(t *testing.T) {
	f := setupTestFixture(t, false)

	result, err := f.service.Authenticate(context.Background(), auth.CallbackRequest{Code: "code-1"})
	require.NoError(t, err)
	require.Equal(t, "u1", result.Profile.Subject)
	require.Equal(t, "a@b.com", result.Profile.Email)
	require.NotEmpty(t, result.IDToken)
	require.Equal(t, testRedirectURI, f.idp.LastTokenRequest().Get("redirect_uri"))
}

func TestAuthenticate_TokenFailureSkipsUserInfo(t *testing.T) {
	f := setupTestFixture(t, false)
	f.idp.SetTokenResponse(http.StatusBadRequest, `{"error":"invalid_grant"}`)

	_, err := f.service.Authenticate(context.Background(), auth.CallbackRequest{Code: "bad"})
	require.ErrorIs(t, err, auth.ErrTokenExchange)
	require.Equal(t, 0, f.idp.UserInfoCalls())
}

func TestAuthenticate_CancelledRequestStillCompletes(t *testing.T) {
	f := setupTestFixture(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.service.Authenticate(ctx, auth.CallbackRequest{Code: "code-1"})
	require.NoError(t, err)
	require.Equal(t, "u1", result.Profile.Subject)
}

func TestLoginURL_EnforcedStateRequiresSession(t *testing.T) {
	f := setupTestFixture(t, true)
	require.True(t, f.service.EnforcesState())

	_, err := f.service.LoginURL(context.Background(), auth.LoginRequest{})
	require.Error(t, err)
}

// login runs the login-URL step for testSessionID and primes the provider to issue an
// id_token carrying the nonce of that login.
func (f *testFixture) login(t *testing.T, redirectURI string) auth.LoginURL {
	t.Helper()

	result, err := f.service.LoginURL(context.Background(), auth.LoginRequest{SessionID: testSessionID, RedirectURI: redirectURI})
	require.NoError(t, err)

	idToken := f.idp.IDToken(jwt.MapClaims{"sub": "u1", "nonce": result.Nonce})
	f.idp.SetTokenResponse(http.StatusOK, f.idp.TokenBody(idToken))
	return result
}

func TestAuthenticate_EnforcedState(t *testing.T) {
	t.Run("matching state and nonce", func(t *testing.T) {
		f := setupTestFixture(t, true)
		login := f.login(t, "")

		flow, err := f.flows.Get(context.Background(), login.State)
		require.NoError(t, err)
		require.Equal(t, testSessionID, flow.SessionID)

		result, err := f.service.Authenticate(context.Background(), auth.CallbackRequest{Code: "c", State: login.State, SessionID: testSessionID})
		require.NoError(t, err)
		require.Equal(t, "u1", result.Profile.Subject)

		_, err = f.flows.Get(context.Background(), login.State)
		require.ErrorIs(t, err, authflowrepo.ErrNotFound)
	})

	t.Run("state is single use", func(t *testing.T) {
		f := setupTestFixture(t, true)
		login := f.login(t, "")

		req := auth.CallbackRequest{Code: "c", State: login.State, SessionID: testSessionID}
		_, err := f.service.Authenticate(context.Background(), req)
		require.NoError(t, err)

		_, err = f.service.Authenticate(context.Background(), req)
		require.ErrorIs(t, err, oauthmodel.ErrInvalidState)
		require.Equal(t, 1, f.idp.TokenCalls())
	})

	t.Run("concurrent callbacks with one state", func(t *testing.T) {
		f := setupTestFixture(t, true)
		login := f.login(t, "")
		req := auth.CallbackRequest{Code: "c", State: login.State, SessionID: testSessionID}

		const attempts = 8
		var succeeded atomic.Int32
		var wg sync.WaitGroup
		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := f.service.Authenticate(context.Background(), req); err == nil {
					succeeded.Add(1)
				}
			}()
		}
		wg.Wait()

		require.Equal(t, int32(1), succeeded.Load())
		require.Equal(t, 1, f.idp.TokenCalls())
	})

	t.Run("missing state", func(t *testing.T) {
		f := setupTestFixture(t, true)
		f.login(t, "")

		_, err := f.service.Authenticate(context.Background(), auth.CallbackRequest{Code: "c", SessionID: testSessionID})
		require.ErrorIs(t, err, oauthmodel.ErrMissingState)
		require.Equal(t, 0, f.idp.TokenCalls())
	})

	t.Run("unknown state", func(t *testing.T) {
		f := setupTestFixture(t, true)

		_, err := f.service.Authenticate(context.Background(), auth.CallbackRequest{Code: "c", State: "forged", SessionID: testSessionID})
		require.ErrorIs(t, err, oauthmodel.ErrInvalidState)
		failure, ok := auth.AsAuthFailure(err)
		require.True(t, ok)
		require.Equal(t, "invalid state", failure.Reason)
		require.Equal(t, 0, f.idp.TokenCalls())
	})

	t.Run("other browser session", func(t *testing.T) {
		f := setupTestFixture(t, true)
		login := f.login(t, "")

		_, err := f.service.Authenticate(context.Background(), auth.CallbackRequest{Code: "c", State: login.State, SessionID: "session-2"})
		require.ErrorIs(t, err, oauthmodel.ErrInvalidState)
		require.Equal(t, 0, f.idp.TokenCalls())
	})

	t.Run("nonce mismatch", func(t *testing.T) {
		f := setupTestFixture(t, true)
		login := f.login(t, "")
		f.idp.SetTokenResponse(http.StatusOK, f.idp.TokenBody(f.idp.IDToken(jwt.MapClaims{"sub": "u1", "nonce": "replayed"})))

		_, err := f.service.Authenticate(context.Background(), auth.CallbackRequest{Code: "c", State: login.State, SessionID: testSessionID})
		require.ErrorIs(t, err, oauthmodel.ErrInvalidNonce)
	})

	t.Run("recorded redirect uri is reused", func(t *testing.T) {
		f := setupTestFixture(t, true)
		login := f.login(t, "https://other.example.com/cb")

		_, err := f.service.Authenticate(context.Background(), auth.CallbackRequest{Code: "c", State: login.State, SessionID: testSessionID})
		require.NoError(t, err)
		require.Equal(t, "https://other.example.com/cb", f.idp.LastTokenRequest().Get("redirect_uri"))
	})
}

func TestLogoutURL(t *testing.T) {
	f := setupTestFixture(t, false)

	q := query(t, f.service.LogoutURL("tok"))
	require.Equal(t, "tok", q.Get("id_token_hint"))
	require.Equal(t, testidp.ClientID, q.Get("client_id"))

	require.False(t, query(t, f.service.LogoutURL("")).Has("id_token_hint"))
}
