package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-auth-relay/auth"
	"github.com/jrsteele09/go-auth-relay/internal/config"
	"github.com/jrsteele09/go-auth-relay/internal/metrics"
	"github.com/jrsteele09/go-auth-relay/sessions"
	"github.com/jrsteele09/go-auth-relay/students"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	router   chi.Router
	config   config.Config
	auth     *auth.Service
	sessions sessions.Store
	students students.Repo

	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	cookieName     string
	maxAge         time.Duration
	allowedOrigins config.AllowedOrigins
}

type Option func(*Server)

// WithMetrics records request metrics in m and exposes gatherer on /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithStudents serves the student roster from repo instead of the seeded in-memory one.
func WithStudents(repo students.Repo) Option {
	return func(s *Server) {
		s.students = repo
	}
}

func New(config config.Config, authService *auth.Service, sessionStore sessions.Store, opts ...Option) (*Server, error) {
	if authService == nil {
		return nil, errors.New("[Server New] auth service is required")
	}
	if sessionStore == nil {
		return nil, errors.New("[Server New] session store is required")
	}

	s := &Server{
		env:            config.GetEnv(),
		router:         chi.NewRouter(),
		config:         config,
		auth:           authService,
		sessions:       sessionStore,
		cookieName:     config.GetSessionCookieName(),
		maxAge:         config.GetMaxSessionAge(),
		allowedOrigins: config.GetAllowedOrigins(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.students == nil {
		s.students = students.NewInMemoryRepo(students.SeedStudents()...)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRoutes() {
	if s.env != config.DevEnv {
		return // Skip logging in non-development environments
	}
	_ = chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		logRoute(method, route)
		return nil
	})
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return strings.ToLower(scheme)
	}
	return "http"
}

// requestLogger returns the global logger tagged with the chi request id.
func requestLogger(r *http.Request) *zerolog.Logger {
	l := log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
	return &l
}
