// Package server implements the browser upload UI behind `photogrid serve`.
//
// Visitors upload images, caption them, pick a column count and download the
// composed grid. All per-visitor state lives in a [session.Session] keyed by
// the photogrid_session cookie; the compositor itself is stateless and is
// reached through a [pipeline.Runner].
package server

import (
	"context"
	"errors"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/photogrid/pkg/cache"
	"github.com/matzehuels/photogrid/pkg/observability"
	"github.com/matzehuels/photogrid/pkg/pipeline"
	"github.com/matzehuels/photogrid/pkg/session"
)

// Server serves the upload UI.
type Server struct {
	cfg    Config
	store  session.Store
	runner *pipeline.Runner
	logger *log.Logger
	page   *template.Template
	router chi.Router
	stats  *observability.Counters

	// closers release backends opened by Open, in order.
	closers []func() error
}

// New creates a server over existing backends. cfg is validated.
func New(cfg Config, store session.Store, runner *pipeline.Runner, logger *log.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	page, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		runner: runner,
		logger: logger,
		page:   page,
		stats:  observability.NewCounters(),
	}
	s.router = s.routes()
	return s, nil
}

// Open builds the session store and result cache named in cfg and returns a
// server over them. It also installs the server's counters as the process
// observability hooks. Close releases the backends.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	var closers []func() error
	fail := func(err error) (*Server, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	var client *redis.Client
	if cfg.usesRedis() {
		c, err := cfg.Redis.NewClient(ctx)
		if err != nil {
			return fail(err)
		}
		client = c
		closers = append(closers, client.Close)
		logger.Info("connected to redis", "addr", client.Options().Addr)
	}

	var store session.Store
	switch cfg.Store {
	case BackendFile:
		fs, err := session.NewFileStore(cfg.SessionDir)
		if err != nil {
			return fail(err)
		}
		logger.Debug("file session store", "dir", fs.Dir())
		store = fs
	case BackendRedis:
		store = session.NewRedisStore(client, session.DefaultRedisPrefix)
	default:
		store = session.NewMemoryStore()
	}

	var c cache.Cache
	switch cfg.Cache {
	case BackendFile:
		fc, err := cache.NewFileCache(cfg.CacheDir)
		if err != nil {
			return fail(err)
		}
		c = fc
	case BackendRedis:
		c = cache.NewRedisCache(client)
	default:
		c = cache.NewNullCache()
	}
	runner := pipeline.NewRunner(c, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "photogrid:"), logger)

	s, err := New(cfg, store, runner, logger)
	if err != nil {
		return fail(err)
	}
	s.closers = closers
	observability.Install(s.stats)
	logger.Debug("backends ready", "store", cfg.Store, "cache", cfg.Cache)
	return s, nil
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Post("/uploads", s.handleUpload)
	r.Get("/uploads/{index}/preview", s.handlePreview)
	r.Post("/compose", s.handleCompose)
	r.Get("/grid.png", s.handleGrid)
	r.Post("/reset", s.handleReset)
	r.Post("/reset/confirm", s.handleResetConfirm)
	r.Post("/reset/cancel", s.handleResetCancel)
	return r
}

// Run listens on cfg.Addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. The session janitor runs for the same lifetime.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.janitor(janitorCtx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", "http://"+ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown failed", "err", err)
		return err
	}
	return nil
}

// janitor removes expired sessions every JanitorInterval until ctx ends.
func (s *Server) janitor(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.JanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.store.Cleanup(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("session cleanup failed", "err", err)
			}
		}
	}
}

// Close releases the cache and any backend connections opened by Open.
func (s *Server) Close() error {
	err := s.runner.Close()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if cerr := s.closers[i](); cerr != nil && err == nil && !errors.Is(cerr, redis.ErrClosed) {
			err = cerr
		}
	}
	return err
}
