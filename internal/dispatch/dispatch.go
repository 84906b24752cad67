// Package dispatch is the single entry point to parley's collaborators.
//
// The dispatcher holds the detector, translator and speaker, applies a
// bounded timeout to every call and logs each request. Both the terminal
// coordinator and the web API go through it; it keeps no session state.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/language"
	"github.com/nadzzz/parley/internal/message"
)

// Detector identifies languages.
type Detector interface {
	Detect(ctx context.Context, text string) *language.Detection
}

// Translator translates text and reports its catalog.
type Translator interface {
	Languages() *language.Catalog
	Translate(ctx context.Context, text, target, source string) message.TranslationResult
}

// Speaker synthesizes and plays speech.
type Speaker interface {
	SynthesizeAndPlay(ctx context.Context, text, lang string) bool
	IsPlaying() bool
	Stop()
}

// Dispatcher routes requests to the collaborators.
type Dispatcher struct {
	detector   Detector
	translator Translator
	speaker    Speaker
	timeouts   config.TimeoutsConfig
}

// New creates a Dispatcher.
func New(det Detector, tr Translator, sp Speaker, timeouts config.TimeoutsConfig) *Dispatcher {
	return &Dispatcher{
		detector:   det,
		translator: tr,
		speaker:    sp,
		timeouts:   timeouts,
	}
}

// Languages returns the translator's catalog.
func (d *Dispatcher) Languages() *language.Catalog {
	return d.translator.Languages()
}

// Detect identifies the language of text. It returns nil on any failure.
func (d *Dispatcher) Detect(ctx context.Context, text string) *language.Detection {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Detect)
	defer cancel()

	start := time.Now()
	det := d.detector.Detect(ctx, text)
	if det == nil {
		slog.Debug("detect complete", "detected", false, "duration", time.Since(start))
		return nil
	}
	slog.Debug("detect complete", "language", det.Code, "duration", time.Since(start))
	return det
}

// Translate translates text into target from source ("" or "auto" to detect).
func (d *Dispatcher) Translate(ctx context.Context, text, target, source string) message.TranslationResult {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Translate)
	defer cancel()

	start := time.Now()
	res := d.translator.Translate(ctx, text, target, source)
	logger := slog.With("target", target, "source", source, "duration", time.Since(start))
	if res.Success {
		logger.Info("translate complete", "detected", res.DetectedLanguage, "text_length", len(text))
	} else {
		logger.Warn("translate failed", "error", res.ErrorMessage())
	}
	return res
}

// Speak synthesizes text in lang and starts playback. The timeout bounds
// synthesis; playback continues in the background.
func (d *Dispatcher) Speak(ctx context.Context, text, lang string) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Speak)
	defer cancel()

	start := time.Now()
	ok := d.speaker.SynthesizeAndPlay(ctx, text, lang)
	slog.Info("speak requested", "language", lang, "ok", ok, "duration", time.Since(start))
	return ok
}

// IsPlaying reports whether audio is playing.
func (d *Dispatcher) IsPlaying() bool { return d.speaker.IsPlaying() }

// StopAudio stops any current playback.
func (d *Dispatcher) StopAudio() {
	d.speaker.Stop()
	slog.Debug("audio stopped")
}
