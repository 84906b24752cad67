package translator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nadzzz/parley/internal/language"
	"github.com/nadzzz/parley/internal/message"
)

type fakeBackend struct {
	calls  int
	source string
	target string
	out    *Translation
	err    error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Translate(ctx context.Context, text, source, target string) (*Translation, error) {
	f.calls++
	f.source, f.target = source, target
	return f.out, f.err
}

func (f *fakeBackend) Close() error { return nil }

func TestServiceTranslate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		text         string
		target       string
		source       string
		out          *Translation
		err          error
		wantCalls    int
		wantSource   string
		wantSuccess  bool
		wantError    string
		wantDetected string
		wantName     string
	}{
		{
			name:         "auto detect",
			text:         "Bonjour le monde",
			target:       "en",
			source:       message.AutoDetect,
			out:          &Translation{Text: "Hello world", DetectedSource: "fr"},
			wantCalls:    1,
			wantSource:   "auto",
			wantSuccess:  true,
			wantDetected: "fr",
			wantName:     "French",
		},
		{
			name:         "explicit source kept when backend silent",
			text:         "Hola",
			target:       "en",
			source:       "es",
			out:          &Translation{Text: "Hello"},
			wantCalls:    1,
			wantSource:   "es",
			wantSuccess:  true,
			wantDetected: "es",
			wantName:     "Spanish",
		},
		{
			name:         "empty source means auto",
			text:         "Hallo",
			target:       "en",
			out:          &Translation{Text: "Hello", DetectedSource: "xx"},
			wantCalls:    1,
			wantSource:   "auto",
			wantSuccess:  true,
			wantDetected: "xx",
			wantName:     "Unknown",
		},
		{
			name:      "empty text",
			text:      "   ",
			target:    "en",
			wantError: "Empty text",
		},
		{
			name:      "unsupported target",
			text:      "Hello",
			target:    "tlh",
			wantError: "Unsupported target language: tlh",
		},
		{
			name:       "backend error",
			text:       "Hello",
			target:     "fr",
			err:        errors.New("network error"),
			wantCalls:  1,
			wantSource: "auto",
			wantError:  "network error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fb := &fakeBackend{out: tt.out, err: tt.err}
			svc := NewService(fb, language.DefaultCatalog())
			got := svc.Translate(context.Background(), tt.text, tt.target, tt.source)

			if fb.calls != tt.wantCalls {
				t.Fatalf("backend calls = %d, want %d", fb.calls, tt.wantCalls)
			}
			if tt.wantCalls > 0 && fb.source != tt.wantSource {
				t.Errorf("source = %q, want %q", fb.source, tt.wantSource)
			}
			if got.Success != tt.wantSuccess {
				t.Fatalf("success = %v, want %v (error %q)", got.Success, tt.wantSuccess, got.ErrorMessage())
			}
			if got.ErrorMessage() != tt.wantError {
				t.Errorf("error = %q, want %q", got.ErrorMessage(), tt.wantError)
			}
			if got.OriginalText != tt.text {
				t.Errorf("original = %q", got.OriginalText)
			}
			if tt.wantSuccess {
				if got.DetectedLanguage != tt.wantDetected || got.DetectedLanguageName != tt.wantName {
					t.Errorf("detected = %q/%q, want %q/%q", got.DetectedLanguage, got.DetectedLanguageName, tt.wantDetected, tt.wantName)
				}
				if got.TargetLanguage != tt.target {
					t.Errorf("target = %q", got.TargetLanguage)
				}
			}
		})
	}
}

func TestLanguagesStable(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeBackend{}, language.DefaultCatalog())
	a, b := svc.Languages(), svc.Languages()
	if a.Len() == 0 || a.Len() != b.Len() {
		t.Fatalf("catalog sizes %d and %d", a.Len(), b.Len())
	}
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			t.Fatalf("entry %d differs: %v vs %v", i, a.At(i), b.At(i))
		}
	}
}

func TestParseReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		wantText string
		wantLang string
		wantErr  bool
	}{
		{"plain", `{"translation":"Hello world","detected_language":"FR"}`, "Hello world", "fr", false},
		{"fenced", "```json\n{\"translation\":\"Hi\",\"detected_language\":\"de\"}\n```", "Hi", "de", false},
		{"empty translation allowed", `{"translation":""}`, "", "", false},
		{"missing field", `{"text":"Hello"}`, "", "", true},
		{"not json", "Hello world", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseReply(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReply: %v", err)
			}
			if got.Text != tt.wantText || got.DetectedSource != tt.wantLang {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestSystemPromptMentionsLanguages(t *testing.T) {
	t.Parallel()

	auto := SystemPrompt(message.AutoDetect, "en")
	fixed := SystemPrompt("fr", "de")
	if auto == fixed {
		t.Fatal("prompts should differ")
	}
	for _, want := range []string{`"fr"`, `"de"`, "detected_language"} {
		if !strings.Contains(fixed, want) {
			t.Errorf("prompt missing %s", want)
		}
	}
}
