package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/specialistvlad/learngrid/internal/config"
	"github.com/specialistvlad/learngrid/internal/ctxlog"
	"github.com/specialistvlad/learngrid/internal/curriculum"
	"github.com/specialistvlad/learngrid/internal/duckdbstore"
	"github.com/specialistvlad/learngrid/internal/inmemorystore"
	"github.com/specialistvlad/learngrid/internal/inmemorytopology"
	"github.com/specialistvlad/learngrid/internal/metrics"
	"github.com/specialistvlad/learngrid/internal/progressstore"
	"github.com/specialistvlad/learngrid/internal/service"
	"github.com/specialistvlad/learngrid/internal/topologystore"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx      context.Context
	logger   *slog.Logger
	config   *config.Config
	registry *prometheus.Registry
	service  *service.Service
	topology topologystore.Store
	closers  []func() error

	httpServer *http.Server
}

// New builds a fully wired App. Logs go to logW. The returned App must be
// closed.
func New(ctx context.Context, logW io.Writer, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.Log.Level, cfg.Log.Format, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		ctx:      ctx,
		logger:   logger,
		config:   cfg,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	topology, progress, err := a.openStores()
	if err != nil {
		return nil, err
	}
	a.topology = topology

	svc, err := service.New(topology, progress, metrics.New(a.registry), cfg.Service())
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.service = svc
	logger.Debug("Service ready.", "backend", cfg.Store.Backend, "workers", cfg.Workers)

	if cfg.Healthcheck.Port > 0 {
		a.startHealthcheckServer(cfg.Healthcheck.Port)
	}
	return a, nil
}

func (a *App) openStores() (topologystore.Store, progressstore.Store, error) {
	switch a.config.Store.Backend {
	case config.BackendDuckDB:
		a.logger.Debug("Opening DuckDB store.", "dsn", a.config.Store.DSN)
		s, err := duckdbstore.Open(a.ctx, a.config.Store.DSN,
			duckdbstore.WithThreads(a.config.Store.Threads),
			duckdbstore.WithMemoryLimit(a.config.Store.MemoryLimitGB),
		)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, s, nil
	default:
		a.logger.Debug("Using in-memory stores.")
		return inmemorytopology.New(), inmemorystore.New(), nil
	}
}

// Context returns the application context, which carries the logger.
func (a *App) Context() context.Context {
	return a.ctx
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Service returns the engine service.
func (a *App) Service() *service.Service {
	return a.service
}

// Registry returns the prometheus registry the app records into.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// LoadCurriculum parses the curriculum files under paths and seeds them into
// the stores.
func (a *App) LoadCurriculum(paths ...string) (curriculum.SeedStats, error) {
	c, err := curriculum.Load(a.ctx, paths...)
	if err != nil {
		return curriculum.SeedStats{}, fmt.Errorf("failed to load curriculum: %w", err)
	}
	return curriculum.Seed(a.ctx, c, a.service)
}

// Close stops the health check server and releases the stores.
func (a *App) Close() error {
	var firstErr error
	if err := a.closeHealthCheckServer(); err != nil {
		firstErr = err
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
