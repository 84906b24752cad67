package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"
)

type fakeModels struct {
	model  string
	config *genai.GenerateContentConfig
	reply  string
	err    error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.config = model, config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: f.reply}}}},
		},
	}, nil
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	fake := &fakeModels{reply: `{"translation":"Guten Tag","detected_language":"en"}`}
	b := &Backend{models: fake, model: "gemini-2.0-flash"}

	out, err := b.Translate(context.Background(), "Good day", "auto", "de")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out.Text != "Guten Tag" || out.DetectedSource != "en" {
		t.Errorf("out = %+v", out)
	}
	if fake.model != "gemini-2.0-flash" {
		t.Errorf("model = %q", fake.model)
	}
	if fake.config == nil || fake.config.ResponseMIMEType != "application/json" || fake.config.SystemInstruction == nil {
		t.Errorf("config = %+v", fake.config)
	}
}

func TestTranslateErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("quota exceeded")
	b := &Backend{models: &fakeModels{err: boom}, model: "m"}
	if _, err := b.Translate(context.Background(), "x", "auto", "en"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	b = &Backend{models: &fakeModels{reply: ""}, model: "m"}
	if _, err := b.Translate(context.Background(), "x", "auto", "en"); err == nil {
		t.Fatal("expected error for empty reply")
	}
}
