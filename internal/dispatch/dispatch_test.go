package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/language"
	"github.com/nadzzz/parley/internal/message"
)

type slowDetector struct{}

func (slowDetector) Detect(ctx context.Context, text string) *language.Detection {
	<-ctx.Done()
	return nil
}

type stubTranslator struct {
	gotTarget, gotSource string
	deadline             bool
}

func (s *stubTranslator) Languages() *language.Catalog { return language.DefaultCatalog() }

func (s *stubTranslator) Translate(ctx context.Context, text, target, source string) message.TranslationResult {
	s.gotTarget, s.gotSource = target, source
	_, s.deadline = ctx.Deadline()
	return message.TranslationResult{OriginalText: text, TranslatedText: "Hello world", Success: true}
}

type stubSpeaker struct {
	playing bool
	stopped bool
}

func (s *stubSpeaker) SynthesizeAndPlay(ctx context.Context, text, lang string) bool {
	s.playing = true
	return true
}
func (s *stubSpeaker) IsPlaying() bool { return s.playing }
func (s *stubSpeaker) Stop()           { s.playing, s.stopped = false, true }

func testTimeouts() config.TimeoutsConfig {
	return config.TimeoutsConfig{Detect: 20 * time.Millisecond, Translate: time.Second, Speak: time.Second}
}

func TestDetectTimesOut(t *testing.T) {
	t.Parallel()

	d := New(slowDetector{}, &stubTranslator{}, &stubSpeaker{}, testTimeouts())
	start := time.Now()
	if got := d.Detect(context.Background(), "Bonjour"); got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
	if el := time.Since(start); el > time.Second {
		t.Errorf("detect took %v, timeout not applied", el)
	}
}

func TestTranslatePassesThrough(t *testing.T) {
	t.Parallel()

	tr := &stubTranslator{}
	d := New(slowDetector{}, tr, &stubSpeaker{}, testTimeouts())
	res := d.Translate(context.Background(), "Bonjour le monde", "en", "fr")
	if !res.Success || res.TranslatedText != "Hello world" {
		t.Fatalf("result = %+v", res)
	}
	if tr.gotTarget != "en" || tr.gotSource != "fr" || !tr.deadline {
		t.Errorf("translator saw target=%q source=%q deadline=%v", tr.gotTarget, tr.gotSource, tr.deadline)
	}
	if d.Languages().Len() == 0 {
		t.Error("empty catalog")
	}
}

func TestSpeakAndStop(t *testing.T) {
	t.Parallel()

	sp := &stubSpeaker{}
	d := New(slowDetector{}, &stubTranslator{}, sp, testTimeouts())
	if !d.Speak(context.Background(), "Hello", "en") || !d.IsPlaying() {
		t.Fatal("expected playback")
	}
	d.StopAudio()
	if d.IsPlaying() || !sp.stopped {
		t.Error("StopAudio did not stop the speaker")
	}
}
