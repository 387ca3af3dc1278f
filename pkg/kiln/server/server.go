// Package server wires the full stack together: configuration, the
// structured logger, optional metrics, the bound listener set, and the
// worker pool that drives every accepted connection's state machine.
// This is the one place an embedder touches to go from an App
// implementation to a running process.
package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	kilnapp "github.com/kilnhttp/kiln/pkg/kiln/app"
	"github.com/kilnhttp/kiln/pkg/kiln/config"
	"github.com/kilnhttp/kiln/pkg/kiln/listener"
	"github.com/kilnhttp/kiln/pkg/kiln/logging"
	"github.com/kilnhttp/kiln/pkg/kiln/metrics"
	"github.com/kilnhttp/kiln/pkg/kiln/workerpool"
)

// Server owns the bound listeners and the worker pool serving them. It
// does not own the App's lifetime — the embedder constructs that and
// hands it to New.
type Server struct {
	cfg       config.Config
	logger    *zap.Logger
	metrics   *metrics.Collectors
	listeners *listener.Set
	pool      *workerpool.Pool
	app       kilnapp.App
}

// New binds every listen_address in cfg and assembles the worker pool.
// It does not start accepting connections — call Run for that.
func New(a kilnapp.App, cfg config.Config) (*Server, error) {
	logger, err := newLoggerFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	var m *metrics.Collectors
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	listeners, err := listener.Bind(cfg.Endpoints())
	if err != nil {
		return nil, fmt.Errorf("bind listeners: %w", err)
	}

	wrapped := instrument(a, m, logger)

	pool := workerpool.New(wrapped, listeners, workerpool.Config{
		Workers:              cfg.Workers,
		ConnectionsPerWorker: cfg.ConnectionsPerWorker,
		Limits:               cfg.ConnLimits(),
	})

	return &Server{
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		listeners: listeners,
		pool:      pool,
		app:       wrapped,
	}, nil
}

func newLoggerFor(cfg config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if level == "" {
		level = "info"
	}
	return logging.New(level)
}

// Run notifies the App that the server is starting and blocks, running
// every worker's accept loop, until ctx is cancelled. Shutdown happens by
// cancelling ctx: the listener set is closed and Run returns once every
// worker's accept loops have exited. Connections already accepted are
// neither closed nor waited for; they keep running in their own
// goroutines until they end.
func (s *Server) Run(ctx context.Context) {
	s.app.OnStart(s.listeners.Addresses())
	s.pool.Run(ctx)
}

// Addresses returns the bound address of every listener, once New has
// returned successfully.
func (s *Server) Addresses() []string {
	return s.listeners.Addresses()
}
