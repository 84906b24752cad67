package main

import (
	"context"
	"testing"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/speech"
)

func TestBuildSelectsBackends(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Translator.Backend = "openai"
	cfg.TTS.Backend = "openai"
	cfg.Playback.Backend = "none"

	tr, err := buildTranslator(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildTranslator: %v", err)
	}
	if tr.Name() != "openai" {
		t.Errorf("translator = %q", tr.Name())
	}
	if s := buildSynthesizer(cfg); s.Name() != "openai" {
		t.Errorf("synthesizer = %q", s.Name())
	}
	p, err := buildPlayer(cfg)
	if err != nil {
		t.Fatalf("buildPlayer: %v", err)
	}
	if _, ok := p.(speech.SilentPlayer); !ok {
		t.Errorf("player = %T, want SilentPlayer", p)
	}

	cfg.Translator.Backend = "libretranslate"
	cfg.TTS.Backend = "piper"
	if tr, _ := buildTranslator(context.Background(), cfg); tr.Name() != "libretranslate" {
		t.Errorf("translator = %q", tr.Name())
	}
	if s := buildSynthesizer(cfg); s.Name() != "piper" {
		t.Errorf("synthesizer = %q", s.Name())
	}
}

func TestBuildRejectsUnknownBackends(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Translator.Backend = "babelfish"
	cfg.Detector.Backend = "guess"
	if _, err := buildTranslator(context.Background(), cfg); err == nil {
		t.Error("unknown translator accepted")
	}
	if _, err := buildDetector(cfg); err == nil {
		t.Error("unknown detector accepted")
	}
}
