package piper

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/tts"
)

// fakeServer answers one synthesize request on conn with the given events.
func fakeServer(t *testing.T, conn net.Conn, gotVoice chan<- string, reply func(w net.Conn)) {
	t.Helper()
	go func() {
		defer conn.Close()
		evt, _, err := readEvent(bufio.NewReader(conn))
		if err != nil {
			t.Errorf("server read: %v", err)
			return
		}
		voice, _ := evt.Data["voice"].(map[string]any)
		name, _ := voice["name"].(string)
		gotVoice <- name
		reply(conn)
	}()
}

func newTestSynth(t *testing.T, reply func(w net.Conn)) (*Synthesizer, chan string) {
	t.Helper()
	s := New(config.PiperConfig{Endpoint: "tcp://piper:10200"})
	voices := make(chan string, 1)
	s.dialer = func(ctx context.Context, network, addr string) (net.Conn, error) {
		if addr != "piper:10200" {
			t.Errorf("dialed %q, want piper:10200", addr)
		}
		client, server := net.Pipe()
		fakeServer(t, server, voices, reply)
		return client, nil
	}
	return s, voices
}

func TestSynthesizeCollectsChunks(t *testing.T) {
	t.Parallel()

	s, voices := newTestSynth(t, func(w net.Conn) {
		_ = writeEvent(w, wyomingEvent{Type: "audio-start", Data: map[string]any{"rate": 16000, "channels": 1, "width": 2}}, nil)
		_ = writeEvent(w, wyomingEvent{Type: "audio-chunk"}, []byte{1, 2})
		_ = writeEvent(w, wyomingEvent{Type: "audio-chunk"}, []byte{3, 4})
		_ = writeEvent(w, wyomingEvent{Type: "audio-stop"}, nil)
	})

	res, err := s.Synthesize(context.Background(), "Bonjour le monde", tts.SynthesizeOpts{Language: "fr"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if got := <-voices; got != "fr_FR-siwis-medium" {
		t.Errorf("voice = %q, want fr_FR-siwis-medium", got)
	}
	if string(res.PCM) != "\x01\x02\x03\x04" {
		t.Errorf("pcm = %v", res.PCM)
	}
	if res.Format.SampleRate != 16000 || res.Format.Channels != 1 || res.Format.Width != 2 {
		t.Errorf("format = %+v", res.Format)
	}
}

func TestSynthesizeMapsCatalogCodes(t *testing.T) {
	t.Parallel()

	s, voices := newTestSynth(t, func(w net.Conn) {
		_ = writeEvent(w, wyomingEvent{Type: "audio-stop"}, nil)
	})

	if _, err := s.Synthesize(context.Background(), "你好世界", tts.SynthesizeOpts{Language: "zh-cn"}); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if got := <-voices; got != "zh_CN-huayan-medium" {
		t.Errorf("voice = %q, want zh_CN-huayan-medium", got)
	}
}

func TestSynthesizeServerError(t *testing.T) {
	t.Parallel()

	s, _ := newTestSynth(t, func(w net.Conn) {
		_ = writeEvent(w, wyomingEvent{Type: "error", Data: map[string]any{"text": "voice not found"}}, nil)
	})

	_, err := s.Synthesize(context.Background(), "hello there", tts.SynthesizeOpts{Language: "en"})
	if err == nil || !strings.Contains(err.Error(), "voice not found") {
		t.Fatalf("expected piper error, got %v", err)
	}
}

func TestSynthesizeRejectsUnknownLanguage(t *testing.T) {
	t.Parallel()

	s := New(config.PiperConfig{Endpoint: "piper:10200"})
	if _, err := s.Synthesize(context.Background(), "Sawubona", tts.SynthesizeOpts{Language: "zu"}); err == nil {
		t.Fatal("expected error for language without a voice")
	}
	if _, err := s.Synthesize(context.Background(), "  ", tts.SynthesizeOpts{Language: "en"}); err == nil {
		t.Fatal("expected error for empty text")
	}
}
