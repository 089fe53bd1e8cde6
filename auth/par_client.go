package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-relay/internal/metrics"
	"github.com/jrsteele09/go-auth-relay/oauthmodel"
)

// maxResponseBytes caps how much of an identity provider response is read.
const maxResponseBytes = 1 << 20

// PushResult is the outcome of a pushed authorization request. When the push is
// unavailable the caller falls back to a standard authorization URL.
type PushResult struct {
	RequestURI string
	ExpiresIn  int

	// Unavailable holds the reason PAR could not be used. nil means RequestURI is usable.
	Unavailable error
}

// Available reports whether the push produced a usable request_uri.
func (r PushResult) Available() bool {
	return r.Unavailable == nil && r.RequestURI != ""
}

func unavailable(format string, args ...any) PushResult {
	return PushResult{Unavailable: fmt.Errorf(format, args...)}
}

// PARClient pushes authorization requests to the provider (RFC 9126).
type PARClient struct {
	clientID     string
	clientSecret string
	endpoint     string
	urls         *URLBuilder
	httpClient   *http.Client
	metrics      *metrics.Metrics
}

// NewPARClient creates a PAR client. urls supplies the request parameters so a pushed
// request matches the equivalent inline authorization URL.
func NewPARClient(clientID, clientSecret, endpoint string, urls *URLBuilder, httpClient *http.Client, m *metrics.Metrics) *PARClient {
	return &PARClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		endpoint:     endpoint,
		urls:         urls,
		httpClient:   httpClient,
		metrics:      m,
	}
}

// Push sends one pushed authorization request. It never retries: any transport error,
// unexpected status, malformed body or missing request_uri yields an unavailable result.
func (c *PARClient) Push(ctx context.Context, p oauthmodel.AuthorizationParameters) (result PushResult) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveIdPRequest(metrics.EndpointPAR, start, result.Unavailable)
	}()

	form := c.urls.AuthorizationValues(p)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return unavailable("build pushed authorization request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(url.QueryEscape(c.clientID), url.QueryEscape(c.clientSecret))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unavailable("pushed authorization request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return unavailable("read pushed authorization response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return unavailable("pushed authorization request: status %d: %s", resp.StatusCode, body)
	}

	var par oauthmodel.PushedAuthorizationResponse
	if err := json.Unmarshal(body, &par); err != nil {
		return unavailable("decode pushed authorization response: %w", err)
	}
	if par.RequestURI == "" {
		return PushResult{Unavailable: oauthmodel.ErrMissingRequestURI}
	}

	return PushResult{RequestURI: par.RequestURI, ExpiresIn: par.ExpiresIn}
}
