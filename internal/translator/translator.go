// Package translator defines the translation backend interface and the
// service that turns backend calls into TranslationResult values.
//
// parley ships four backends: LibreTranslate (self-hosted), OpenAI and
// Gemini (LLM prompted for JSON), and a Redis cache that wraps any of them.
package translator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nadzzz/parley/internal/language"
	"github.com/nadzzz/parley/internal/message"
)

// Translation is what a backend returns for one request.
type Translation struct {
	// Text is the translated text.
	Text string `json:"text"`

	// DetectedSource is the source language the backend used or identified.
	// It may be empty when the backend does not report one.
	DetectedSource string `json:"detected_source,omitempty"`
}

// Backend is the interface for machine translation.
type Backend interface {
	// Name returns the backend identifier (e.g., "libretranslate", "openai").
	Name() string

	// Translate translates text from source to target. source is a catalog
	// code or message.AutoDetect.
	Translate(ctx context.Context, text, source, target string) (*Translation, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Service adapts a Backend to the collaborator contract: it never returns a
// Go error, only a TranslationResult.
type Service struct {
	backend Backend
	catalog *language.Catalog
}

// NewService creates a translation service over backend. The catalog is the
// one Languages reports and names are resolved from.
func NewService(backend Backend, catalog *language.Catalog) *Service {
	return &Service{backend: backend, catalog: catalog}
}

// Languages returns the supported language catalog. The same value is
// returned on every call.
func (s *Service) Languages() *language.Catalog { return s.catalog }

// Translate translates text into target. source is a catalog code, or ""
// or message.AutoDetect to let the backend identify it.
func (s *Service) Translate(ctx context.Context, text, target, source string) message.TranslationResult {
	if strings.TrimSpace(text) == "" {
		return message.Failed(text, "Empty text")
	}

	target = language.Normalize(target)
	if !s.catalog.Contains(target) {
		return message.Failed(text, fmt.Sprintf("Unsupported target language: %s", target))
	}

	if source == "" || source == message.AutoDetect {
		source = message.AutoDetect
	} else {
		source = language.Normalize(source)
	}

	out, err := s.backend.Translate(ctx, text, source, target)
	if err != nil {
		slog.Error("translation failed", "backend", s.backend.Name(), "source", source, "target", target, "error", err)
		return message.Failed(text, err.Error())
	}

	detected := out.DetectedSource
	if detected == "" && source != message.AutoDetect {
		detected = source
	}
	detected = language.Normalize(detected)

	slog.Debug("translation complete", "backend", s.backend.Name(), "source", detected, "target", target, "text_length", len(text))
	return message.TranslationResult{
		OriginalText:         text,
		DetectedLanguage:     detected,
		DetectedLanguageName: s.nameOf(detected),
		TranslatedText:       out.Text,
		TargetLanguage:       target,
		TargetLanguageName:   s.nameOf(target),
		Success:              true,
	}
}

// Close closes the backend.
func (s *Service) Close() error { return s.backend.Close() }

func (s *Service) nameOf(code string) string {
	if name, ok := s.catalog.Name(code); ok {
		return name
	}
	return "Unknown"
}
