package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parley.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Coordinator.Debounce != 500*time.Millisecond {
		t.Errorf("debounce = %s, want 500ms", cfg.Coordinator.Debounce)
	}
	if cfg.Coordinator.PollInterval != 100*time.Millisecond {
		t.Errorf("poll interval = %s, want 100ms", cfg.Coordinator.PollInterval)
	}
	if cfg.Coordinator.DefaultTarget != "en" {
		t.Errorf("default target = %q, want en", cfg.Coordinator.DefaultTarget)
	}
	if cfg.Translator.Backend != "libretranslate" {
		t.Errorf("translator backend = %q", cfg.Translator.Backend)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadEnvOverridesAndRefs(t *testing.T) {
	t.Setenv("PARLEY_TRANSLATOR_BACKEND", "openai")
	t.Setenv("MY_OPENAI_KEY", "sk-test")

	cfg, err := Load(writeConfig(t, `
translator:
  openai:
    api_key: "${MY_OPENAI_KEY}"
timeouts:
  translate: 3s
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Translator.Backend != "openai" {
		t.Errorf("backend = %q, want openai", cfg.Translator.Backend)
	}
	if cfg.Translator.OpenAI.APIKey != "sk-test" {
		t.Errorf("api key = %q, want resolved env ref", cfg.Translator.OpenAI.APIKey)
	}
	if cfg.Timeouts.Translate != 3*time.Second {
		t.Errorf("translate timeout = %s, want 3s", cfg.Timeouts.Translate)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	_, err := Load(writeConfig(t, "tts:\n  backend: espeak\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown tts backend") {
		t.Fatalf("expected tts backend error, got %v", err)
	}
}

func TestValidateDurations(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Timeouts.Speak = 0
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "timeouts.speak") {
		t.Fatalf("expected speak timeout error, got %v", err)
	}
}

func TestValidateLinguaLanguages(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Detector.Lingua.Languages = []string{"en"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for a single lingua language")
	}
}
