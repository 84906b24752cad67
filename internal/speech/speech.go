// Package speech turns a tts.Synthesizer and an audio player into the
// single-slot "synthesize and play" collaborator.
//
// Every playback owns a temporary WAV file: it is created before play and
// removed when playback finishes or is stopped. Close removes anything
// still on disk at process exit.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/nadzzz/parley/internal/audio"
	"github.com/nadzzz/parley/internal/tts"
)

// Player plays PCM and blocks until it has drained or ctx is cancelled.
type Player interface {
	Play(ctx context.Context, pcm []byte, f audio.Format) error
	Close() error
}

// playback is the state of one in-flight play.
type playback struct {
	cancel context.CancelFunc
	done   chan struct{}
	path   string
}

// Speaker synthesizes text and plays it in a single playback slot.
type Speaker struct {
	synth   tts.Synthesizer
	player  Player
	tempDir string

	mu      sync.Mutex
	current *playback
	files   map[string]struct{}
	closed  bool

	// gen advances on every Stop; a synthesis started under an older
	// generation is discarded instead of played.
	gen       uint64
	nextSynth int
	synths    map[int]context.CancelFunc

	playing atomic.Bool
}

// New creates a Speaker. tempDir "" uses os.TempDir.
func New(synth tts.Synthesizer, player Player, tempDir string) *Speaker {
	return &Speaker{
		synth:   synth,
		player:  player,
		tempDir: tempDir,
		files:   make(map[string]struct{}),
		synths:  make(map[int]context.CancelFunc),
	}
}

// IsPlaying reports whether audio is currently playing.
func (s *Speaker) IsPlaying() bool { return s.playing.Load() }

// SynthesizeAndPlay stops any current playback, synthesizes text in lang and
// starts playing it in the background. It returns false (after logging) if
// synthesis or staging failed; ctx bounds synthesis only.
func (s *Speaker) SynthesizeAndPlay(ctx context.Context, text, lang string) bool {
	if strings.TrimSpace(text) == "" {
		slog.Warn("empty text provided for speech")
		return false
	}

	s.Stop()

	ctx, cancelSynth := context.WithCancel(ctx)
	defer cancelSynth()
	s.mu.Lock()
	gen := s.gen
	id := s.nextSynth
	s.nextSynth++
	s.synths[id] = cancelSynth
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.synths, id)
		s.mu.Unlock()
	}()

	res, err := s.synth.Synthesize(ctx, text, tts.SynthesizeOpts{Language: lang})
	if err != nil {
		if s.stoppedSince(gen) {
			slog.Debug("speech synthesis cancelled by stop", "language", lang)
			return false
		}
		slog.Error("speech synthesis failed", "backend", s.synth.Name(), "language", lang, "error", err)
		return false
	}

	path, err := s.stage(res)
	if err != nil {
		slog.Error("staging synthesized audio failed", "error", err)
		return false
	}

	playCtx, cancel := context.WithCancel(context.Background())
	pb := &playback{cancel: cancel, done: make(chan struct{}), path: path}

	s.mu.Lock()
	if s.closed || s.gen != gen {
		s.mu.Unlock()
		cancel()
		s.release(path)
		return false
	}
	s.current = pb
	s.mu.Unlock()

	s.playing.Store(true)
	go s.play(playCtx, pb)

	slog.Debug("speech playback started", "language", lang, "duration", res.Format.Duration(len(res.PCM)))
	return true
}

// play reads the staged file back and hands it to the player.
func (s *Speaker) play(ctx context.Context, pb *playback) {
	defer close(pb.done)
	defer s.release(pb.path)
	defer func() {
		s.mu.Lock()
		if s.current == pb {
			s.current = nil
			s.playing.Store(false)
		}
		s.mu.Unlock()
	}()

	f, err := os.Open(pb.path)
	if err != nil {
		slog.Error("opening staged audio failed", "path", pb.path, "error", err)
		return
	}
	format, pcm, err := audio.DecodeWAV(f)
	f.Close()
	if err != nil {
		slog.Error("decoding staged audio failed", "path", pb.path, "error", err)
		return
	}

	if err := s.player.Play(ctx, pcm, format); err != nil && ctx.Err() == nil {
		slog.Error("audio playback failed", "error", err)
	}
}

// stage writes synthesized audio to a tracked temporary WAV file.
func (s *Speaker) stage(res *tts.SynthesizeResult) (string, error) {
	f, err := os.CreateTemp(s.tempDir, "parley-*.wav")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()

	s.mu.Lock()
	s.files[path] = struct{}{}
	s.mu.Unlock()

	if err := audio.EncodeWAV(f, res.PCM, res.Format); err != nil {
		f.Close()
		s.release(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		s.release(path)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return path, nil
}

// release deletes a staged file and forgets it.
func (s *Speaker) release(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Error("failed to delete temporary audio file", "path", path, "error", err)
	}
	s.mu.Lock()
	delete(s.files, path)
	s.mu.Unlock()
}

// stoppedSince reports whether Stop ran after generation gen was captured.
func (s *Speaker) stoppedSince(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen != gen
}

// Stop interrupts the current playback and any synthesis in progress, and
// waits for playback to end.
func (s *Speaker) Stop() {
	s.mu.Lock()
	pb := s.current
	s.current = nil
	s.gen++
	for _, cancel := range s.synths {
		cancel()
	}
	s.mu.Unlock()

	if pb != nil {
		pb.cancel()
		<-pb.done
	}
	s.playing.Store(false)
}

// Close stops playback, removes any remaining temporary files and closes the
// player and synthesizer.
func (s *Speaker) Close() error {
	s.Stop()

	s.mu.Lock()
	s.closed = true
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	s.mu.Unlock()

	for _, p := range paths {
		s.release(p)
	}

	var firstErr error
	if err := s.player.Close(); err != nil {
		firstErr = fmt.Errorf("closing player: %w", err)
	}
	if err := s.synth.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing synthesizer: %w", err)
	}
	return firstErr
}
