package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/detector"
	libredetect "github.com/nadzzz/parley/internal/detector/libre"
	"github.com/nadzzz/parley/internal/detector/lingua"
	"github.com/nadzzz/parley/internal/dispatch"
	"github.com/nadzzz/parley/internal/language"
	"github.com/nadzzz/parley/internal/speech"
	"github.com/nadzzz/parley/internal/translator"
	"github.com/nadzzz/parley/internal/translator/cache"
	geminitr "github.com/nadzzz/parley/internal/translator/gemini"
	libretr "github.com/nadzzz/parley/internal/translator/libre"
	openaitr "github.com/nadzzz/parley/internal/translator/openai"
	"github.com/nadzzz/parley/internal/tts"
	openaitts "github.com/nadzzz/parley/internal/tts/openai"
	"github.com/nadzzz/parley/internal/tts/piper"
)

// app holds the wired collaborators and what must be released on exit.
type app struct {
	dispatcher *dispatch.Dispatcher
	translator *translator.Service
	speaker    *speech.Speaker

	// cache is nil unless the Redis translation cache is enabled.
	cache *cache.Backend
}

// Close removes staged audio and closes every backend.
func (a *app) Close() {
	if err := a.speaker.Close(); err != nil {
		slog.Error("closing speaker", "error", err)
	}
	if err := a.translator.Close(); err != nil {
		slog.Error("closing translator", "error", err)
	}
}

func build(ctx context.Context, cfg *config.Config) (*app, error) {
	catalog := language.DefaultCatalog()

	detBackend, err := buildDetector(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{}
	trBackend, err := buildTranslator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Translator.Cache.Enabled {
		store, err := cache.NewRedisStore(cfg.Translator.Cache.RedisURL)
		if err != nil {
			_ = trBackend.Close()
			return nil, err
		}
		a.cache = cache.New(trBackend, store, cfg.Translator.Cache.TTL)
		trBackend = a.cache
		slog.Info("translation cache enabled", "ttl", cfg.Translator.Cache.TTL)
	}
	a.translator = translator.NewService(trBackend, catalog)

	synth := buildSynthesizer(cfg)
	player, err := buildPlayer(cfg)
	if err != nil {
		_ = a.translator.Close()
		_ = synth.Close()
		return nil, err
	}
	a.speaker = speech.New(synth, player, cfg.Playback.TempDir)

	a.dispatcher = dispatch.New(
		detector.NewService(detBackend, catalog),
		a.translator,
		a.speaker,
		cfg.Timeouts,
	)
	slog.Info("backends ready",
		"detector", detBackend.Name(),
		"translator", trBackend.Name(),
		"tts", synth.Name(),
		"playback", cfg.Playback.Backend)
	return a, nil
}

func buildDetector(cfg *config.Config) (detector.Backend, error) {
	switch cfg.Detector.Backend {
	case "lingua":
		return lingua.New(cfg.Detector.Lingua)
	case "libretranslate":
		return libredetect.New(libretr.New(cfg.Translator.LibreTranslate)), nil
	default:
		return nil, fmt.Errorf("unknown detector backend %q", cfg.Detector.Backend)
	}
}

func buildTranslator(ctx context.Context, cfg *config.Config) (translator.Backend, error) {
	switch cfg.Translator.Backend {
	case "libretranslate":
		return libretr.New(cfg.Translator.LibreTranslate), nil
	case "openai":
		return openaitr.New(cfg.Translator.OpenAI), nil
	case "gemini":
		return geminitr.New(ctx, cfg.Translator.Gemini)
	default:
		return nil, fmt.Errorf("unknown translator backend %q", cfg.Translator.Backend)
	}
}

func buildSynthesizer(cfg *config.Config) tts.Synthesizer {
	if cfg.TTS.Backend == "openai" {
		return openaitts.New(cfg.TTS.OpenAI)
	}
	return piper.New(cfg.TTS.Piper)
}

func buildPlayer(cfg *config.Config) (speech.Player, error) {
	if cfg.Playback.Backend == "none" {
		return speech.SilentPlayer{}, nil
	}
	p, err := speech.NewPulsePlayer(cfg.Playback.ApplicationName)
	if err != nil {
		return nil, fmt.Errorf("opening audio output: %w", err)
	}
	return p, nil
}
