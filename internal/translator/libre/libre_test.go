package libre

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nadzzz/parley/internal/config"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.LibreTranslateConfig{Endpoint: srv.URL + "/", APIKey: "secret"})
}

func TestTranslateMapsCodes(t *testing.T) {
	t.Parallel()

	var got translateRequest
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"translatedText":"你好世界","detectedLanguage":{"confidence":92,"language":"en"}}`))
	})

	out, err := c.Translate(context.Background(), "Hello world", "auto", "zh-cn")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got.Source != "auto" || got.Target != "zh" || got.APIKey != "secret" || got.Format != "text" {
		t.Errorf("request = %+v", got)
	}
	if out.Text != "你好世界" || out.DetectedSource != "en" {
		t.Errorf("out = %+v", out)
	}
}

func TestTranslateKeepsExplicitSource(t *testing.T) {
	t.Parallel()

	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req translateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Source != "he" {
			t.Errorf("source = %q, want he", req.Source)
		}
		_, _ = w.Write([]byte(`{"translatedText":"Hello"}`))
	})

	out, err := c.Translate(context.Background(), "שלום", "iw", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out.DetectedSource != "iw" {
		t.Errorf("detected = %q, want iw", out.DetectedSource)
	}
}

func TestTranslateServerError(t *testing.T) {
	t.Parallel()

	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"zz is not supported"}`))
	})

	_, err := c.Translate(context.Background(), "Hello", "auto", "zz")
	if err == nil || !strings.Contains(err.Error(), "zz is not supported") {
		t.Fatalf("expected server error, got %v", err)
	}
}

func TestDetectPicksMostConfident(t *testing.T) {
	t.Parallel()

	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"confidence":12,"language":"it"},{"confidence":88,"language":"zt"}]`))
	})

	code, err := c.Detect(context.Background(), "你好世界")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if code != "zh-tw" {
		t.Errorf("code = %q, want zh-tw", code)
	}
}

func TestDetectNoCandidates(t *testing.T) {
	t.Parallel()

	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	code, err := c.Detect(context.Background(), "???")
	if err != nil || code != "" {
		t.Fatalf("Detect = %q, %v", code, err)
	}
}
