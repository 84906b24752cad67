// Package config handles loading and validating the parley configuration.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for parley.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Transports  TransportsConfig  `mapstructure:"transports"`
	Detector    DetectorConfig    `mapstructure:"detector"`
	Translator  TranslatorConfig  `mapstructure:"translator"`
	TTS         TTSConfig         `mapstructure:"tts"`
	Playback    PlaybackConfig    `mapstructure:"playback"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator"`
	Timeouts    TimeoutsConfig    `mapstructure:"timeouts"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each network surface.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC health/reflection listener.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the web API and page.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`

	// APIKey protects /api routes when set (X-API-Key or Authorization: Bearer).
	APIKey string `mapstructure:"api_key"`

	// CORSAllowedOrigins is a comma-separated list; empty allows all origins.
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
}

// DetectorConfig selects the language detection backend.
type DetectorConfig struct {
	Backend string       `mapstructure:"backend"` // "lingua" or "libretranslate"
	Lingua  LinguaConfig `mapstructure:"lingua"`
}

// LinguaConfig tunes the in-process lingua detector.
type LinguaConfig struct {
	// Languages restricts detection to these ISO-639-1 codes. Empty means all.
	Languages           []string `mapstructure:"languages"`
	LowAccuracy         bool     `mapstructure:"low_accuracy"`
	MinRelativeDistance float64  `mapstructure:"min_relative_distance"`
}

// TranslatorConfig selects and configures the translation backend.
type TranslatorConfig struct {
	Backend        string               `mapstructure:"backend"` // "libretranslate", "openai" or "gemini"
	LibreTranslate LibreTranslateConfig `mapstructure:"libretranslate"`
	OpenAI         OpenAIConfig         `mapstructure:"openai"`
	Gemini         GeminiConfig         `mapstructure:"gemini"`
	Cache          CacheConfig          `mapstructure:"cache"`
}

// LibreTranslateConfig points at a LibreTranslate server. The detector's
// "libretranslate" backend shares it.
type LibreTranslateConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

// OpenAIConfig holds OpenAI chat settings for translation.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"` // optional, for OpenAI-compatible servers
}

// GeminiConfig holds Gemini API settings for translation.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// CacheConfig enables the Redis translation cache.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Backend string            `mapstructure:"backend"` // "piper" or "openai"
	Piper   PiperConfig       `mapstructure:"piper"`
	OpenAI  OpenAISpeechConfig `mapstructure:"openai"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// For a single Piper instance that serves all languages, set Endpoint.
// For per-language instances, set Endpoints which maps ISO-639-1 codes to
// individual Wyoming TCP endpoints. Endpoints takes precedence.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`
	Endpoints map[string]string `mapstructure:"endpoints"`
	Voices    map[string]string `mapstructure:"voices"`
}

// OpenAISpeechConfig holds OpenAI speech settings.
type OpenAISpeechConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	Voice  string `mapstructure:"voice"`
}

// PlaybackConfig selects how synthesized audio is played.
type PlaybackConfig struct {
	Backend         string `mapstructure:"backend"` // "pulse" or "none"
	TempDir         string `mapstructure:"temp_dir"`
	ApplicationName string `mapstructure:"application_name"`
}

// CoordinatorConfig tunes the interactive session.
type CoordinatorConfig struct {
	Debounce      time.Duration `mapstructure:"debounce"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	MaxInFlight   int64         `mapstructure:"max_in_flight"`
	QueueTimeout  time.Duration `mapstructure:"queue_timeout"` // wait for a free request slot
	DefaultTarget string        `mapstructure:"default_target"`
}

// TimeoutsConfig bounds every external call.
type TimeoutsConfig struct {
	Detect    time.Duration `mapstructure:"detect"`
	Translate time.Duration `mapstructure:"translate"`
	Speak     time.Duration `mapstructure:"speak"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
	File   string `mapstructure:"file"`   // used by the terminal UI; empty discards
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the search order
// is ./parley.yaml, ./configs/parley.yaml, /etc/parley/parley.yaml.
// A .env file in the working directory is loaded into the environment first.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("ignoring unreadable .env file", "error", err)
	}

	v := viper.New()

	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 5000)
	v.SetDefault("transports.http.api_key", "")
	v.SetDefault("transports.http.cors_allowed_origins", "")
	v.SetDefault("detector.backend", "lingua")
	v.SetDefault("detector.lingua.languages", []string{})
	v.SetDefault("detector.lingua.low_accuracy", false)
	v.SetDefault("detector.lingua.min_relative_distance", 0.0)
	v.SetDefault("translator.backend", "libretranslate")
	v.SetDefault("translator.libretranslate.endpoint", "http://localhost:5001")
	v.SetDefault("translator.openai.model", "gpt-4o-mini")
	v.SetDefault("translator.gemini.model", "gemini-2.0-flash")
	v.SetDefault("translator.cache.enabled", false)
	v.SetDefault("translator.cache.redis_url", "redis://localhost:6379")
	v.SetDefault("translator.cache.ttl", "24h")
	v.SetDefault("tts.backend", "piper")
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("tts.openai.model", "tts-1")
	v.SetDefault("tts.openai.voice", "alloy")
	v.SetDefault("playback.backend", "pulse")
	v.SetDefault("playback.temp_dir", "")
	v.SetDefault("playback.application_name", "parley")
	v.SetDefault("coordinator.debounce", "500ms")
	v.SetDefault("coordinator.poll_interval", "100ms")
	v.SetDefault("coordinator.max_in_flight", 4)
	v.SetDefault("coordinator.queue_timeout", "10s")
	v.SetDefault("coordinator.default_target", "en")
	v.SetDefault("timeouts.detect", "5s")
	v.SetDefault("timeouts.translate", "15s")
	v.SetDefault("timeouts.speak", "30s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("parley")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/parley")
	}

	// Environment variables: PARLEY_TRANSLATOR_BACKEND, PARLEY_TTS_PIPER_ENDPOINT, etc.
	v.SetEnvPrefix("PARLEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}").
	cfg.Transports.HTTP.APIKey = resolveEnvRef(cfg.Transports.HTTP.APIKey)
	cfg.Translator.LibreTranslate.APIKey = resolveEnvRef(cfg.Translator.LibreTranslate.APIKey)
	cfg.Translator.OpenAI.APIKey = resolveEnvRef(cfg.Translator.OpenAI.APIKey)
	cfg.Translator.Gemini.APIKey = resolveEnvRef(cfg.Translator.Gemini.APIKey)
	cfg.TTS.OpenAI.APIKey = resolveEnvRef(cfg.TTS.OpenAI.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend names and durations.
func (c *Config) Validate() error {
	switch c.Detector.Backend {
	case "lingua", "libretranslate":
	default:
		return fmt.Errorf("unknown detector backend %q", c.Detector.Backend)
	}
	if n := len(c.Detector.Lingua.Languages); n == 1 {
		return fmt.Errorf("detector.lingua.languages needs at least two languages, got %d", n)
	}

	switch c.Translator.Backend {
	case "libretranslate", "openai", "gemini":
	default:
		return fmt.Errorf("unknown translator backend %q", c.Translator.Backend)
	}
	if c.Translator.Cache.Enabled && c.Translator.Cache.TTL <= 0 {
		return fmt.Errorf("translator.cache.ttl must be positive")
	}

	switch c.TTS.Backend {
	case "piper", "openai":
	default:
		return fmt.Errorf("unknown tts backend %q", c.TTS.Backend)
	}

	switch c.Playback.Backend {
	case "pulse", "none":
	default:
		return fmt.Errorf("unknown playback backend %q", c.Playback.Backend)
	}

	durations := map[string]time.Duration{
		"coordinator.debounce":      c.Coordinator.Debounce,
		"coordinator.poll_interval": c.Coordinator.PollInterval,
		"coordinator.queue_timeout": c.Coordinator.QueueTimeout,
		"timeouts.detect":           c.Timeouts.Detect,
		"timeouts.translate":        c.Timeouts.Translate,
		"timeouts.speak":            c.Timeouts.Speak,
	}
	for key, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", key, d)
		}
	}
	if c.Coordinator.MaxInFlight <= 0 {
		return fmt.Errorf("coordinator.max_in_flight must be positive")
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	SetupLoggingTo(os.Stdout, cfg)
}

// SetupLoggingTo is SetupLogging with an explicit destination. The terminal
// UI passes a file (or io.Discard) so log lines do not corrupt the screen.
func SetupLoggingTo(w io.Writer, cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}
