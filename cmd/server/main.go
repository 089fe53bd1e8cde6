package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/jrsteele09/go-auth-relay/auth"
	"github.com/jrsteele09/go-auth-relay/auth/authflowrepo"
	"github.com/jrsteele09/go-auth-relay/internal/config"
	"github.com/jrsteele09/go-auth-relay/internal/logging"
	"github.com/jrsteele09/go-auth-relay/internal/metrics"
	"github.com/jrsteele09/go-auth-relay/server"
	"github.com/jrsteele09/go-auth-relay/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const janitorInterval = time.Minute

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to load environment file")
	}

	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server, restarting")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Init(c.GetLogLevel(), c.GetLogFormat(), c.GetAppName())
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionStore, flowRepo, closeStores, err := newStores(ctx, c)
	if err != nil {
		return err
	}
	defer closeStores()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = c.GetHTTPTimeout()

	authService, err := auth.NewService(auth.Settings{
		ClientID:           c.GetClientID(),
		ClientSecret:       c.GetClientSecret(),
		Endpoints:          c.GetEndpoints(),
		DefaultRedirectURI: c.GetDefaultRedirectURI(),
		HTTPClient:         httpClient,
		EnforceState:       c.GetEnforceState(),
		FlowTTL:            c.GetFlowTTL(),
	}, auth.WithMetrics(m), auth.WithFlowRepo(flowRepo))
	if err != nil {
		return err
	}

	handler, err := server.New(c, authService, sessionStore, server.WithMetrics(m, registry))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(srv) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

// newStores picks Redis when REDIS_URL is set, otherwise in-memory stores swept by janitors.
func newStores(ctx context.Context, c config.Config) (sessions.Store, authflowrepo.Repo, func(), error) {
	redisURL := c.GetRedisURL()
	if redisURL == "" {
		sessionStore := sessions.NewInMemoryStore()
		flowRepo := authflowrepo.NewInMemoryRepo()
		go sessionStore.RunJanitor(ctx, janitorInterval)
		go flowRepo.RunJanitor(ctx, janitorInterval)
		log.Info().Msg("using in-memory session store")
		return sessionStore, flowRepo, func() {}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Info().Str("addr", opts.Addr).Msg("using redis session store")
	closeClient := func() {
		if err := client.Close(); err != nil {
			log.Err(err).Msg("failed to close redis client")
		}
	}
	return sessions.NewRedisStore(client), authflowrepo.NewRedisRepo(client), closeClient, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
