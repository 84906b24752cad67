// Package openai implements the translation Backend with the OpenAI Chat
// Completions API. Any OpenAI-compatible server (Ollama, vLLM, LocalAI) works
// by setting base_url.
package openai

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/translator"
)

// chatClient is the subset of the go-openai client used here.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Backend translates with a chat model in JSON mode.
type Backend struct {
	client chatClient
	model  string
}

var _ translator.Backend = (*Backend)(nil)

// New creates a new OpenAI translation backend from config.
func New(cfg config.OpenAIConfig) *Backend {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return &Backend{
		client: openai.NewClientWithConfig(cc),
		model:  cfg.Model,
	}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "openai" }

// Translate sends text with a translation instruction and parses the JSON reply.
func (b *Backend) Translate(ctx context.Context, text, source, target string) (*translator.Translation, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: translator.SystemPrompt(source, target),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from openai")
	}

	out, err := translator.ParseReply(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	slog.Debug("openai translation", "model", b.model, "detected", out.DetectedSource, "tokens", resp.Usage.TotalTokens)
	return out, nil
}

// Close is a no-op for the OpenAI backend.
func (b *Backend) Close() error { return nil }
