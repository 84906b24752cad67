// Package gemini implements the translation Backend with Google's Gemini API.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/translator"
)

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Backend translates with a Gemini model asked for a JSON reply.
type Backend struct {
	models contentGenerator
	model  string
}

var _ translator.Backend = (*Backend)(nil)

// New creates a Gemini translation backend.
func New(ctx context.Context, cfg config.GeminiConfig) (*Backend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Backend{models: client.Models, model: cfg.Model}, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "gemini" }

// Translate asks the model for a JSON translation of text.
func (b *Backend) Translate(ctx context.Context, text, source, target string) (*translator.Translation, error) {
	resp, err := b.models.GenerateContent(ctx, b.model, genai.Text(text), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(translator.SystemPrompt(source, target), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	content := resp.Text()
	if content == "" {
		return nil, fmt.Errorf("empty response from gemini")
	}

	out, err := translator.ParseReply(content)
	if err != nil {
		return nil, err
	}
	slog.Debug("gemini translation", "model", b.model, "detected", out.DetectedSource)
	return out, nil
}

// Close is a no-op; the genai client holds no connections of its own.
func (b *Backend) Close() error { return nil }
