// Package detector identifies the language of a piece of text.
//
// A Backend returns a raw language code; the Service applies the input
// length floor and maps the code onto the language catalog so callers only
// ever see catalog keys.
package detector

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/nadzzz/parley/internal/language"
)

// MinRunes is the shortest trimmed input worth detecting.
const MinRunes = 3

// Backend is a language identification engine.
type Backend interface {
	// Name returns the backend identifier (e.g., "lingua").
	Name() string

	// Detect returns a language code for text, or "" if it cannot tell.
	Detect(ctx context.Context, text string) (string, error)
}

// Service wraps a Backend with the catalog rules.
type Service struct {
	backend Backend
	catalog *language.Catalog
}

// NewService creates a detection service.
func NewService(backend Backend, catalog *language.Catalog) *Service {
	return &Service{backend: backend, catalog: catalog}
}

// TooShort reports whether text is below the detection floor.
func TooShort(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < MinRunes
}

// Detect returns the catalog language of text, or nil when text is too short,
// the backend fails, or the backend's answer is not in the catalog.
func (s *Service) Detect(ctx context.Context, text string) *language.Detection {
	if TooShort(text) {
		return nil
	}

	code, err := s.backend.Detect(ctx, strings.TrimSpace(text))
	if err != nil {
		slog.Error("language detection failed", "backend", s.backend.Name(), "error", err)
		return nil
	}
	if code == "" {
		slog.Debug("language not identified", "backend", s.backend.Name())
		return nil
	}

	det, ok := s.catalog.Lookup(code)
	if !ok {
		slog.Debug("detected language not in catalog", "backend", s.backend.Name(), "code", code)
		return nil
	}
	return det
}
