package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/jrsteele09/go-auth-relay/auth/authflowrepo"
	"github.com/jrsteele09/go-auth-relay/internal/metrics"
	"github.com/jrsteele09/go-auth-relay/oauthmodel"
	"github.com/rs/zerolog/log"
)

const defaultFlowTTL = 10 * time.Minute

// Settings configures the Service.
type Settings struct {
	ClientID           string
	ClientSecret       string
	Endpoints          oauthmodel.Endpoints
	DefaultRedirectURI string

	// HTTPClient is used for every outbound call. Defaults to a pooled go-cleanhttp client.
	HTTPClient *http.Client

	// EnforceState binds state and nonce to the browser session at login-URL time and
	// verifies them on callback.
	EnforceState bool
	// FlowTTL bounds how long a pending login flow can be completed.
	FlowTTL time.Duration
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithMetrics records login, PAR and exchange metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithFlowRepo sets where pending login flows are kept. Defaults to in-memory.
func WithFlowRepo(repo authflowrepo.Repo) Option {
	return func(s *Service) {
		s.flows = repo
	}
}

// Service sequences the relay's protocol steps: login URL construction with optional PAR,
// the code exchange, and logout URL construction. It holds no per-browser state itself.
type Service struct {
	settings Settings
	urls     *URLBuilder
	par      *PARClient
	tokens   *TokenExchangeClient
	flows    authflowrepo.Repo
	metrics  *metrics.Metrics
}

// NewService validates the settings and wires the protocol clients.
func NewService(settings Settings, opts ...Option) (*Service, error) {
	if settings.ClientID == "" {
		return nil, errors.New("[auth NewService] client id is required")
	}
	if settings.Endpoints.Authorization == "" || settings.Endpoints.Token == "" || settings.Endpoints.UserInfo == "" {
		return nil, errors.New("[auth NewService] authorization, token and userinfo endpoints are required")
	}
	if settings.HTTPClient == nil {
		settings.HTTPClient = cleanhttp.DefaultPooledClient()
	}
	if settings.FlowTTL <= 0 {
		settings.FlowTTL = defaultFlowTTL
	}

	s := &Service{settings: settings}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.flows == nil {
		s.flows = authflowrepo.NewInMemoryRepo()
	}

	s.urls = NewURLBuilder(settings.ClientID, settings.Endpoints)
	s.par = NewPARClient(settings.ClientID, settings.ClientSecret, settings.Endpoints.PushedAuthorizationRequest, s.urls, settings.HTTPClient, s.metrics)
	s.tokens = NewTokenExchangeClient(settings.ClientID, settings.ClientSecret, settings.Endpoints, settings.HTTPClient, s.metrics)
	return s, nil
}

// EnforcesState reports whether login flows are bound to browser sessions.
func (s *Service) EnforcesState() bool {
	return s.settings.EnforceState
}

// LoginRequest is the input of LoginURL. Empty fields take defaults.
type LoginRequest struct {
	RedirectURI string
	State       string
	UsePAR      bool
	Prompt      oauthmodel.Prompt

	// SessionID is the browser session the flow is bound to. Required when state is enforced.
	SessionID string
}

// LoginURL is the URL the browser is sent to, plus how it was built.
type LoginURL struct {
	URL   string
	Mode  string // one of metrics.LoginModeStandard, LoginModePAR, LoginModePARFallback
	State string
	Nonce string
}

// LoginURL builds the provider login URL. state is generated when absent and nonce is
// always fresh. With UsePAR a failed push falls back to the standard URL, so the only
// error source is recording the flow when state is enforced.
func (s *Service) LoginURL(ctx context.Context, req LoginRequest) (LoginURL, error) {
	ctx = context.WithoutCancel(ctx)

	params := oauthmodel.AuthorizationParameters{
		RedirectURI: s.redirectURI(req.RedirectURI),
		State:       req.State,
		Nonce:       newNonce(),
		Prompt:      req.Prompt,
	}
	if params.State == "" {
		params.State = newState()
	}

	if s.settings.EnforceState {
		if err := s.recordFlow(ctx, params, req.SessionID); err != nil {
			return LoginURL{}, err
		}
	}

	result := LoginURL{State: params.State, Nonce: params.Nonce, Mode: metrics.LoginModeStandard}
	if req.UsePAR {
		if pushed := s.par.Push(ctx, params); pushed.Available() {
			result.URL, result.Mode = s.urls.PushedAuthorizationURL(pushed.RequestURI), metrics.LoginModePAR
		} else {
			log.Warn().Err(pushed.Unavailable).Msg("pushed authorization request unavailable, using standard authorization URL")
			result.Mode = metrics.LoginModePARFallback
		}
	}
	if result.URL == "" {
		result.URL = s.urls.AuthorizationURL(params)
	}

	s.metrics.ObserveLoginURL(result.Mode)
	return result, nil
}

func (s *Service) recordFlow(ctx context.Context, params oauthmodel.AuthorizationParameters, sessionID string) error {
	if sessionID == "" {
		return errors.New("[auth LoginURL] a browser session is required to bind state")
	}
	now := time.Now()
	err := s.flows.Upsert(ctx, &authflowrepo.AuthFlowState{
		State:       params.State,
		Nonce:       params.Nonce,
		SessionID:   sessionID,
		RedirectURI: params.RedirectURI,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.settings.FlowTTL),
	})
	if err != nil {
		return fmt.Errorf("[auth LoginURL] failed to record login flow: %w", err)
	}
	return nil
}

// CallbackRequest is the input of Authenticate.
type CallbackRequest struct {
	Code        string
	State       string
	RedirectURI string
	SessionID   string
}

// Authenticate completes the flow for an authorization code. Input errors are
// oauthmodel.ErrMissingCode / ErrMissingState, identity provider failures are
// *AuthFailure, anything else is an internal error. It has no side effects beyond
// consuming the pending flow; persisting the result is the caller's job.
func (s *Service) Authenticate(ctx context.Context, req CallbackRequest) (ExchangeResult, error) {
	ctx = context.WithoutCancel(ctx)

	if req.Code == "" {
		return ExchangeResult{}, oauthmodel.ErrMissingCode
	}

	var flow *authflowrepo.AuthFlowState
	if s.settings.EnforceState {
		var err error
		if flow, err = s.consumeFlow(ctx, req.State, req.SessionID); err != nil {
			return ExchangeResult{}, err
		}
		if req.RedirectURI == "" {
			req.RedirectURI = flow.RedirectURI
		}
	}

	result, err := s.tokens.Exchange(ctx, req.Code, s.redirectURI(req.RedirectURI))
	if err != nil {
		return ExchangeResult{}, err
	}

	if flow != nil && result.IDToken != "" {
		nonce, err := idTokenNonce(result.IDToken)
		if err != nil {
			return ExchangeResult{}, invalidNonce(err)
		}
		if nonce != flow.Nonce {
			return ExchangeResult{}, invalidNonce(fmt.Errorf("id_token nonce %q does not match the login request", nonce))
		}
	}

	return result, nil
}

// consumeFlow loads and deletes the pending flow for state. A flow can be used once.
func (s *Service) consumeFlow(ctx context.Context, state, sessionID string) (*authflowrepo.AuthFlowState, error) {
	if state == "" {
		return nil, oauthmodel.ErrMissingState
	}

	flow, err := s.flows.Consume(ctx, state)
	if errors.Is(err, authflowrepo.ErrNotFound) {
		return nil, invalidState(err)
	}
	if err != nil {
		return nil, fmt.Errorf("[auth Authenticate] failed to consume login flow: %w", err)
	}

	if sessionID == "" || flow.SessionID != sessionID {
		return nil, invalidState(errors.New("login flow belongs to a different browser session"))
	}
	return flow, nil
}

// LogoutURL builds the provider end-session URL, with id_token_hint when idToken is non-empty.
func (s *Service) LogoutURL(idToken string) string {
	return s.urls.LogoutURL(idToken)
}

func (s *Service) redirectURI(requested string) string {
	if requested != "" {
		return requested
	}
	return s.settings.DefaultRedirectURI
}

func newState() string {
	return uuid.NewString()
}

func newNonce() string {
	return uuid.NewString()
}
