// File path: internal/llm/embedder_test.go
package llm

import (
	"context"
	"testing"

	openai "github.com/openai/openai-go/v2"
)

func TestNewEmbedderFromEnvWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if e := NewEmbedderFromEnv(); e != nil {
		t.Fatal("expected nil embedder without an API key")
	}
}

func TestNewEmbedderFromEnvDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_EMBED_MODEL", "")
	e := NewEmbedderFromEnv()
	if e == nil {
		t.Fatal("expected embedder with an API key present")
	}
	if e.model != openai.EmbeddingModelTextEmbedding3Small {
		t.Fatalf("unexpected default model %q", e.model)
	}
}

func TestNewEmbedderFromEnvModelOverride(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_EMBED_MODEL", "text-embedding-3-large")
	e := NewEmbedderFromEnv()
	if e == nil || string(e.model) != "text-embedding-3-large" {
		t.Fatalf("model override not honored: %+v", e)
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	e := NewEmbedderFromEnv()
	vectors, err := e.Embed(context.Background(), nil)
	if err != nil || vectors != nil {
		t.Fatalf("empty input must short-circuit, got %v %v", vectors, err)
	}
}

func TestNilEmbedder(t *testing.T) {
	var e *OpenAIEmbedder
	if _, err := e.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatal("nil embedder must error")
	}
}
