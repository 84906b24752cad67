// Package health provides the liveness and readiness endpoints.
//
// /healthz answers 200 once the process is marked ready. /readyz also runs
// every registered check (the Redis translation cache, for instance) and
// answers 503 with the failing check names when any of them fails.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

type check struct {
	name string
	fn   CheckFunc
}

// Server is a lightweight HTTP server that exposes /healthz and /readyz.
type Server struct {
	port    int
	timeout time.Duration
	ready   atomic.Bool
	server  *http.Server

	mu     sync.Mutex
	checks []check
}

// New creates a new health check server.
func New(port int) *Server {
	return &Server{port: port, timeout: 2 * time.Second}
}

// SetReady marks the process as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// AddCheck registers a readiness check.
func (s *Server) AddCheck(name string, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, check{name: name, fn: fn})
}

// Ready reports nil when the process is ready and every check passes.
func (s *Server) Ready(ctx context.Context) error {
	if !s.ready.Load() {
		return errors.New("not ready")
	}
	_, err := s.run(ctx)
	return err
}

// run executes the checks and returns each result keyed by name.
func (s *Server) run(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	checks := append([]check(nil), s.checks...)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make(map[string]string, len(checks))
	var errs []error
	for _, c := range checks {
		if err := c.fn(ctx); err != nil {
			results[c.name] = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		results[c.name] = "ok"
	}
	return results, errors.Join(errs...)
}

// Handler returns the routes, for tests or mounting elsewhere.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready"})
			return
		}
		writeStatus(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready"})
			return
		}
		results, err := s.run(r.Context())
		if err != nil {
			slog.Warn("readiness check failed", "error", err)
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "checks": results})
			return
		}
		writeStatus(w, http.StatusOK, map[string]any{"status": "ok", "checks": results})
	})

	return mux
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

func writeStatus(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
