// Package metrics exposes the Prometheus registry over HTTP.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dbsmedya/goreef/internal/config"
	"github.com/dbsmedya/goreef/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Router serves reg on path and a plain-text liveness probe on /healthz.
func Router(reg *prometheus.Registry, path string) http.Handler {
	if path == "" {
		path = "/metrics"
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return r
}

// Server is the metrics HTTP listener.
type Server struct {
	cfg    *config.MetricsConfig
	reg    *prometheus.Registry
	logger *logger.Logger

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	done     chan struct{}
}

// NewServer creates a stopped Server.
func NewServer(cfg *config.MetricsConfig, reg *prometheus.Registry, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{cfg: cfg, reg: reg, logger: log}
}

// Start binds the listen address and serves in the background.
// It returns once the socket is bound.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return fmt.Errorf("metrics server already started")
	}
	if s.cfg.Listen == "" {
		return fmt.Errorf("metrics listen address is empty")
	}

	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}

	s.listener = ln
	s.done = make(chan struct{})
	s.srv = &http.Server{
		Handler:           Router(s.reg, s.cfg.Path),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("Metrics server stopped: %v", err)
		}
	}(s.srv, s.done)

	s.logger.Infof("Serving metrics on http://%s%s", ln.Addr(), s.cfg.Path)
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server and waits for the serve loop to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.srv, s.done
	s.srv, s.listener = nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(ctx)
	<-done
	return err
}
