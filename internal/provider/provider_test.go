package provider

import "testing"

func TestNewVertexProvider_FullURLOverridesComposedFields(t *testing.T) {
	p, err := NewVertexProvider(VertexConfig{
		FullURL:   "https://custom.example.com/v1/models/claude-override",
		Region:    "us-east5",
		Project:   "should-be-ignored",
		Publisher: "anthropic",
		ModelID:   "claude-3-5-sonnet@20241022",
	})
	if err != nil {
		t.Fatalf("NewVertexProvider: %v", err)
	}
	if p.RawPredictURL() != "https://custom.example.com/v1/models/claude-override:rawPredict" {
		t.Fatalf("expected FullURL to win, got %s", p.RawPredictURL())
	}
}

func TestNewVertexProvider_ComposesURLFromFields(t *testing.T) {
	p, err := NewVertexProvider(VertexConfig{
		Region:    "us-east5",
		Project:   "my-project",
		Publisher: "anthropic",
		ModelID:   "claude-3-5-sonnet@20241022",
	})
	if err != nil {
		t.Fatalf("NewVertexProvider: %v", err)
	}
	want := "https://us-east5-aiplatform.googleapis.com/v1/projects/my-project/locations/us-east5/publishers/anthropic/models/claude-3-5-sonnet@20241022:streamRawPredict"
	if p.StreamRawPredictURL() != want {
		t.Fatalf("got %s, want %s", p.StreamRawPredictURL(), want)
	}
}

func TestNewVertexProvider_DisplayModelStripsRevision(t *testing.T) {
	p, err := NewVertexProvider(VertexConfig{
		Region:    "us-east5",
		Project:   "my-project",
		Publisher: "anthropic",
		ModelID:   "claude-3-5-sonnet@20241022",
	})
	if err != nil {
		t.Fatalf("NewVertexProvider: %v", err)
	}
	if p.DisplayModel() != "claude-3-5-sonnet" {
		t.Fatalf("got %q, want claude-3-5-sonnet", p.DisplayModel())
	}
}

func TestNewVertexProvider_DisplayModelOverride(t *testing.T) {
	p, err := NewVertexProvider(VertexConfig{
		Region:       "us-east5",
		Project:      "my-project",
		Publisher:    "anthropic",
		ModelID:      "claude-3-5-sonnet@20241022",
		DisplayModel: "gpt-4",
	})
	if err != nil {
		t.Fatalf("NewVertexProvider: %v", err)
	}
	if p.DisplayModel() != "gpt-4" {
		t.Fatalf("got %q, want gpt-4 (explicit override)", p.DisplayModel())
	}
}

func TestNewVertexProvider_MissingFieldsError(t *testing.T) {
	_, err := NewVertexProvider(VertexConfig{Region: "us-east5"})
	if err == nil {
		t.Fatal("expected an error when neither FullURL nor the full field set is present")
	}
}

func TestOpenAiCompatibleProvider_ImplementsLlmProviderBackend(t *testing.T) {
	var backend LlmProviderBackend = &OpenAiCompatibleProvider{
		BaseURL: "https://compat.example.com/v1/chat/completions",
		Model:   "gpt-4",
	}

	if backend.DisplayModel() != "gpt-4" {
		t.Fatalf("got %q, want gpt-4", backend.DisplayModel())
	}
	if backend.RequestURL(true) != backend.RequestURL(false) {
		t.Fatal("OpenAiCompatibleProvider must return the same URL regardless of streaming intent")
	}
	if backend.RequestURL(false) != "https://compat.example.com/v1/chat/completions" {
		t.Fatalf("got %s, want the raw BaseURL unsuffixed", backend.RequestURL(false))
	}
}
