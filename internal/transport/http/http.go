// Package http implements parley's web API.
//
// The API is stateless per request: every call goes straight to the
// dispatcher and the result is returned as JSON. Collaborator failures are
// reported in the body with success=false and HTTP 200; only malformed
// requests and auth failures use 4xx codes. The package also serves the
// embedded web page at / and the Swagger UI at /swagger/.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/transport"
)

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port    int
	handler http.Handler
	server  *http.Server
}

// New creates the web API on cfg.Port, serving svc.
func New(cfg config.HTTPConfig, svc transport.Service) *Transport {
	return &Transport{
		port:    cfg.Port,
		handler: NewRouter(NewHandler(svc), cfg),
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler returns the routed handler, for embedding or tests.
func (t *Transport) Handler() http.Handler { return t.handler }

// Listen starts the HTTP server. It blocks until ctx is cancelled.
func (t *Transport) Listen(ctx context.Context) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}
