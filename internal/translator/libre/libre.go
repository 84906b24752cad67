// Package libre talks to a LibreTranslate server. The same client backs the
// "libretranslate" translator and detector.
package libre

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/message"
	"github.com/nadzzz/parley/internal/translator"
)

// toLibre maps catalog codes LibreTranslate spells differently.
var toLibre = map[string]string{
	"zh-cn": "zh",
	"zh-tw": "zt",
	"iw":    "he",
	"jw":    "jv",
	"no":    "nb",
}

// fromLibre is the reverse of toLibre.
var fromLibre = map[string]string{
	"zh": "zh-cn",
	"zt": "zh-tw",
	"he": "iw",
	"jv": "jw",
	"nb": "no",
}

// Client is a minimal LibreTranslate API client.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ translator.Backend = (*Client)(nil)

// New creates a client from config.
func New(cfg config.LibreTranslateConfig) *Client {
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the backend identifier.
func (c *Client) Name() string { return "libretranslate" }

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage *struct {
		Confidence float64 `json:"confidence"`
		Language   string  `json:"language"`
	} `json:"detectedLanguage"`
}

type detectRequest struct {
	Q      string `json:"q"`
	APIKey string `json:"api_key,omitempty"`
}

type detectCandidate struct {
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Translate translates text from source (or "auto") to target.
func (c *Client) Translate(ctx context.Context, text, source, target string) (*translator.Translation, error) {
	req := translateRequest{
		Q:      text,
		Source: encode(source),
		Target: encode(target),
		Format: "text",
		APIKey: c.apiKey,
	}

	var resp translateResponse
	if err := c.post(ctx, "/translate", req, &resp); err != nil {
		return nil, err
	}

	out := &translator.Translation{Text: resp.TranslatedText, DetectedSource: source}
	if resp.DetectedLanguage != nil && resp.DetectedLanguage.Language != "" {
		out.DetectedSource = decode(resp.DetectedLanguage.Language)
	}
	return out, nil
}

// Detect returns the most confident language code for text, or "" when the
// server has no candidate.
func (c *Client) Detect(ctx context.Context, text string) (string, error) {
	var candidates []detectCandidate
	if err := c.post(ctx, "/detect", detectRequest{Q: text, APIKey: c.apiKey}, &candidates); err != nil {
		return "", err
	}

	best := -1
	for i, cand := range candidates {
		if best < 0 || cand.Confidence > candidates[best].Confidence {
			best = i
		}
	}
	if best < 0 {
		return "", nil
	}
	slog.Debug("libretranslate detect", "language", candidates[best].Language, "confidence", candidates[best].Confidence)
	return decode(candidates[best].Language), nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("libretranslate %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading libretranslate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("libretranslate %s: %s", path, e.Error)
		}
		return fmt.Errorf("libretranslate %s: status %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding libretranslate response: %w", err)
	}
	return nil
}

func encode(code string) string {
	if code == "" || code == message.AutoDetect {
		return message.AutoDetect
	}
	if v, ok := toLibre[code]; ok {
		return v
	}
	return code
}

func decode(code string) string {
	code = strings.ToLower(code)
	if v, ok := fromLibre[code]; ok {
		return v
	}
	return code
}
