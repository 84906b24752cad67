// Package libre implements the detector Backend on a LibreTranslate server.
package libre

import (
	"context"

	"github.com/nadzzz/parley/internal/detector"
	translibre "github.com/nadzzz/parley/internal/translator/libre"
)

// Backend asks LibreTranslate's /detect endpoint.
type Backend struct {
	client *translibre.Client
}

var _ detector.Backend = (*Backend)(nil)

// New wraps a LibreTranslate client.
func New(client *translibre.Client) *Backend {
	return &Backend{client: client}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "libretranslate" }

// Detect returns the server's most confident language.
func (b *Backend) Detect(ctx context.Context, text string) (string, error) {
	return b.client.Detect(ctx, text)
}
