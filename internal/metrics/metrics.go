package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login URL modes.
const (
	LoginModeStandard    = "standard"
	LoginModePAR         = "par"
	LoginModePARFallback = "par_fallback"
)

// Callback outcomes.
const (
	CallbackSuccess    = "success"
	CallbackBadRequest = "bad_request"
	CallbackAuthFailed = "auth_failed"
	CallbackError      = "error"
)

// Identity provider endpoints called by the relay.
const (
	EndpointToken    = "token"
	EndpointUserInfo = "userinfo"
	EndpointPAR      = "par"
)

// Metrics holds all Prometheus metrics for the relay.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	LoginURLs          *prometheus.CounterVec
	Callbacks          *prometheus.CounterVec
	IdPRequestDuration *prometheus.HistogramVec
	Logouts            prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginURLs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_relay_login_urls_total",
			Help: "Login URLs issued, by mode",
		}, []string{"mode"}),
		Callbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_relay_callbacks_total",
			Help: "Authorization code callbacks handled, by outcome",
		}, []string{"outcome"}),
		IdPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "auth_relay_idp_request_duration_seconds",
			Help:    "Latency of outbound identity provider requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint", "result"}),
		Logouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_relay_logouts_total",
			Help: "Local session teardowns",
		}),
	}
}

func (m *Metrics) ObserveLoginURL(mode string) {
	if m == nil {
		return
	}
	m.LoginURLs.WithLabelValues(mode).Inc()
}

func (m *Metrics) ObserveCallback(outcome string) {
	if m == nil {
		return
	}
	m.Callbacks.WithLabelValues(outcome).Inc()
}

// ObserveIdPRequest records the duration of one outbound call started at start.
func (m *Metrics) ObserveIdPRequest(endpoint string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.IdPRequestDuration.WithLabelValues(endpoint, result).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveLogout() {
	if m == nil {
		return
	}
	m.Logouts.Inc()
}
