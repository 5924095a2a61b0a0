// Package web serves a small JSON API over the messaging client: group
// listings, message history, send, and aggregate statistics, plus the
// Prometheus scrape endpoint. It exists so a deployment can keep one
// long-lived authenticated process instead of shelling out to the CLI.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/skbidisigma1/groupme-cli/api"
	"github.com/skbidisigma1/groupme-cli/errors"
	"github.com/skbidisigma1/groupme-cli/metric"
	"github.com/skbidisigma1/groupme-cli/page"
	"github.com/skbidisigma1/groupme-cli/pkg/cache"
	"github.com/skbidisigma1/groupme-cli/stats"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// Cache lifetimes. Group metadata changes rarely; statistics are
// expensive to recompute, so they stay warm longer.
const (
	groupCacheTTL = time.Minute
	statsCacheTTL = 5 * time.Minute
)

// Server is the HTTP front end. Construct with NewServer, then Start.
type Server struct {
	addr     string
	client   *api.Client
	registry *metric.Registry
	logger   *slog.Logger

	mux        *http.ServeMux
	httpServer *http.Server

	groupCache *cache.TTL[*api.Group]
	statsCache *cache.TTL[stats.Stats]

	pageMetrics *page.Metrics

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	stopOnce sync.Once
}

// ServerOption is a functional option for configuring the Server
type ServerOption func(*Server)

// WithLogger sets a custom logger for the server
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry attaches a metrics registry; its handler is mounted at
// /metrics
func WithRegistry(registry *metric.Registry) ServerOption {
	return func(s *Server) {
		s.registry = registry
	}
}

// NewServer creates the server and wires its routes. Nothing listens
// until Start.
func NewServer(addr string, client *api.Client, opts ...ServerOption) (*Server, error) {
	if addr == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Server", "NewServer", "bind address required")
	}
	if client == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Server", "NewServer", "api client required")
	}

	s := &Server{
		addr:       addr,
		client:     client,
		logger:     slog.Default(),
		mux:        http.NewServeMux(),
		stopChan:   make(chan struct{}),
		groupCache: cache.NewTTL[*api.Group](groupCacheTTL, groupCacheTTL),
		statsCache: cache.NewTTL[stats.Stats](statsCacheTTL, statsCacheTTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "web")

	if s.registry != nil {
		s.pageMetrics = page.NewMetrics(s.registry, "web")
	}

	s.routes()
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/me", s.handleMe)
	s.mux.HandleFunc("GET /api/groups", s.handleGroups)
	s.mux.HandleFunc("GET /api/groups/{id}", s.handleGroup)
	s.mux.HandleFunc("GET /api/groups/{id}/messages", s.handleMessages)
	s.mux.HandleFunc("POST /api/groups/{id}/messages", s.handleSend)
	s.mux.HandleFunc("GET /api/groups/{id}/stats", s.handleStats)
	s.mux.HandleFunc("GET /api/chats", s.handleChats)
	if s.registry != nil {
		s.mux.Handle("GET /metrics", s.registry.Handler())
	}
}

// Handler exposes the route table for tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start runs the server until ctx is cancelled, Stop is called, or the
// listener fails. The ready channel, when non-nil, is closed once the
// server is about to accept connections.
func (s *Server) Start(ctx context.Context, ready chan<- struct{}) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.WrapInvalid(errors.ErrAlreadyConnected, "Server", "Start", "server already running")
	}
	s.running = true
	server := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		s.logger.Info("server starting", "address", s.addr)

		if ready != nil {
			close(ready)
		}
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			case <-ctx.Done():
			case <-s.stopChan:
			}
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("server context cancelled, shutting down")
		return s.Stop(DefaultShutdownTimeout)
	case <-s.stopChan:
		return nil
	case err := <-errChan:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return errors.WrapTransport(err, "Server", "Start", "serve")
	}
}

// Stop gracefully shuts down the server. Safe to call more than once.
func (s *Server) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	server := s.httpServer
	s.mu.Unlock()

	s.stopOnce.Do(func() {
		close(s.stopChan)
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return errors.WrapTransport(err, "Server", "Stop", "graceful shutdown")
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.groupCache.Close()
	s.statsCache.Close()
	s.logger.Info("server stopped")
	return nil
}
