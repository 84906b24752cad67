// Package transport defines the interface for parley's network surfaces.
//
// Each transport (the HTTP web API, the gRPC health listener) implements
// Transport and is started by main next to the terminal view. Transports
// that serve requests go through a Service; they keep no session state.
package transport

import (
	"context"

	"github.com/nadzzz/parley/internal/language"
	"github.com/nadzzz/parley/internal/message"
)

// Service is the stateless request surface a transport exposes. The
// dispatcher implements it.
type Service interface {
	Languages() *language.Catalog
	Detect(ctx context.Context, text string) *language.Detection
	Translate(ctx context.Context, text, target, source string) message.TranslationResult
	Speak(ctx context.Context, text, lang string) bool
	StopAudio()
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen starts serving. It blocks until the context is cancelled.
	Listen(ctx context.Context) error

	// Close shuts the transport down, draining in-flight requests.
	Close() error
}
