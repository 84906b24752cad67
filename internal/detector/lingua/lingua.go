// Package lingua implements the detector Backend in-process with lingua-go.
package lingua

import (
	"context"
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/detector"
)

// Backend wraps a lingua LanguageDetector.
type Backend struct {
	detector lingua.LanguageDetector
}

var _ detector.Backend = (*Backend)(nil)

// New builds a detector from config. Building loads language models, which
// takes a moment for the full set.
func New(cfg config.LinguaConfig) (*Backend, error) {
	if cfg.MinRelativeDistance < 0 || cfg.MinRelativeDistance >= 0.99 {
		return nil, fmt.Errorf("lingua min_relative_distance must be in [0, 0.99), got %v", cfg.MinRelativeDistance)
	}

	var b lingua.LanguageDetectorBuilder
	unconfigured := lingua.NewLanguageDetectorBuilder()
	if len(cfg.Languages) == 0 {
		b = unconfigured.FromAllLanguages()
	} else {
		codes := make([]lingua.IsoCode639_1, 0, len(cfg.Languages))
		for _, c := range cfg.Languages {
			iso := lingua.GetIsoCode639_1FromValue(strings.ToUpper(strings.TrimSpace(c)))
			if iso == lingua.UnknownIsoCode639_1 {
				return nil, fmt.Errorf("lingua does not support language %q", c)
			}
			codes = append(codes, iso)
		}
		if len(codes) < 2 {
			return nil, fmt.Errorf("lingua needs at least two languages, got %d", len(codes))
		}
		b = unconfigured.FromIsoCodes639_1(codes...)
	}

	if cfg.LowAccuracy {
		b = b.WithLowAccuracyMode()
	}
	if cfg.MinRelativeDistance > 0 {
		b = b.WithMinimumRelativeDistance(cfg.MinRelativeDistance)
	}

	return &Backend{detector: b.Build()}, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "lingua" }

// Detect returns the lower-cased ISO-639-1 code, or "" if lingua is unsure.
func (b *Backend) Detect(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lang, ok := b.detector.DetectLanguageOf(text)
	if !ok {
		return "", nil
	}
	return strings.ToLower(lang.IsoCode639_1().String()), nil
}
