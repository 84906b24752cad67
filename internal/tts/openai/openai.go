// Package openai implements the TTS Synthesizer using OpenAI's speech API.
//
// Audio is requested as raw PCM (24 kHz, 16-bit, mono) so it can go
// straight to the player without a decoder.
package openai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nadzzz/parley/internal/audio"
	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/tts"
)

// pcmFormat is the fixed layout of OpenAI's "pcm" response format.
var pcmFormat = audio.Format{SampleRate: 24000, Channels: 1, Width: 2}

// maxAudioBytes caps a single response (about ten minutes of speech).
const maxAudioBytes = 32 << 20

// speechClient is the subset of the go-openai client used here.
type speechClient interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// Synthesizer implements tts.Synthesizer with OpenAI speech models.
type Synthesizer struct {
	client speechClient
	model  string
	voice  string
}

var _ tts.Synthesizer = (*Synthesizer)(nil)

// New creates a new OpenAI synthesizer from config.
func New(cfg config.OpenAISpeechConfig) *Synthesizer {
	return &Synthesizer{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
		voice:  cfg.Voice,
	}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "openai" }

// Synthesize requests PCM speech for text. OpenAI voices are multilingual,
// so the language only matters for logging.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	voice := s.voice
	if opts.Voice != "" {
		voice = opts.Voice
	}

	slog.Debug("openai synthesize", "text_length", len(text), "voice", voice, "language", opts.Language, "model", s.model)

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech request: %w", err)
	}
	defer resp.Close()

	pcm, err := io.ReadAll(io.LimitReader(resp, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("reading openai speech: %w", err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("openai returned no audio")
	}

	return &tts.SynthesizeResult{PCM: pcm, Format: pcmFormat}, nil
}

// Close is a no-op; the HTTP client is shared.
func (s *Synthesizer) Close() error { return nil }
