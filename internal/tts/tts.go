// Package tts defines the interface for text-to-speech synthesis.
//
// parley synthesizes either the source text (in its detected language) or
// the translation (in the target language) and hands the PCM to a player.
package tts

import (
	"context"

	"github.com/nadzzz/parley/internal/audio"
)

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is the catalog code (e.g., "en", "fr", "zh-cn") selecting the voice.
	Language string

	// Voice overrides automatic language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Name returns the backend identifier (e.g., "piper", "openai").
	Name() string

	// Synthesize generates raw PCM from the given text.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// PCM is interleaved little-endian sample data.
	PCM []byte

	// Format describes PCM.
	Format audio.Format
}
