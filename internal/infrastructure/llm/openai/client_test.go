package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEmbedderReturnsProviderVectors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		// Reversed index order checks that results are re-sorted by index.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float32{0.3, 0.4}},
				{"index": 0, "embedding": []float32{0.1, 0.2}},
			},
		})
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "test-key", "gen", "embed", 2))
	vectors, err := embedder.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 0.1 || vectors[1][0] != 0.3 {
		t.Errorf("vectors not ordered by index: %v", vectors)
	}
}

func TestEmbedderDegradesToZeroVectorsOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "test-key", "gen", "embed", 4))
	vectors, err := embedder.Embed(context.Background(), []string{"only"})
	if err != nil {
		t.Fatalf("degraded mode must not return an error, got %v", err)
	}
	if len(vectors) != 1 || len(vectors[0]) != 4 {
		t.Fatalf("expected one 4-dim zero vector, got %v", vectors)
	}
	for _, v := range vectors[0] {
		if v != 0 {
			t.Fatalf("expected zero vector, got %v", vectors[0])
		}
	}
}

func TestEmbedderUnconfiguredReturnsZeroVectors(t *testing.T) {
	embedder := NewEmbedder(New("http://localhost:1", "", "gen", "embed", 3))
	if embedder.Configured() {
		t.Fatal("embedder without api key must report unconfigured")
	}
	vectors, err := embedder.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if len(vectors) != 2 || len(vectors[0]) != 3 {
		t.Fatalf("expected two 3-dim vectors, got %v", vectors)
	}
}

func TestGeneratorReturnsCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "User Question: what is auth?") {
			t.Errorf("prompt missing question: %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "  Use bearer tokens.  "}},
			},
		})
	}))
	defer server.Close()

	generator := NewGenerator(New(server.URL, "test-key", "gen", "embed", 2))
	answer, err := generator.GenerateAnswer(context.Background(), "what is auth?", "Auth uses bearer tokens.")
	if err != nil {
		t.Fatalf("GenerateAnswer returned error: %v", err)
	}
	if answer != "Use bearer tokens." {
		t.Errorf("unexpected answer %q", answer)
	}
}

func TestGeneratorSurfacesProviderErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	generator := NewGenerator(New(server.URL, "test-key", "gen", "embed", 2))
	if _, err := generator.GenerateAnswer(context.Background(), "q", "ctx"); err == nil {
		t.Fatal("expected error from failing provider")
	}
}

func TestGeneratorUnconfiguredFailsFast(t *testing.T) {
	generator := NewGenerator(New("http://localhost:1", "", "gen", "embed", 2))
	if generator.Configured() {
		t.Fatal("generator without api key must report unconfigured")
	}
	if _, err := generator.GenerateAnswer(context.Background(), "q", "ctx"); err == nil {
		t.Fatal("expected error when provider unconfigured")
	}
}
