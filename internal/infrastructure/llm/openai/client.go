package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/devdocs-ai/devdocs-backend/internal/infrastructure/resilience"
)

// Client talks to an OpenAI-compatible API (embeddings + chat completions).
type Client struct {
	baseURL    string
	apiKey     string
	genModel   string
	embedModel string
	dimension  int
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	RequestTimeout     time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, apiKey, genModel, embedModel string, dimension int) *Client {
	return NewWithOptions(baseURL, apiKey, genModel, embedModel, dimension, Options{})
}

func NewWithOptions(baseURL, apiKey, genModel, embedModel string, dimension int, options Options) *Client {
	timeout := options.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if dimension <= 0 {
		dimension = 1536
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		genModel:   genModel,
		embedModel: embedModel,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

func (c *Client) configured() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

// Embedder maps text to fixed-dimension vectors. When the provider is
// unconfigured or unreachable it returns zero vectors of the configured
// dimension so the pipeline can proceed in degraded mode; use Configured to
// tell the modes apart.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Configured() bool { return e.client.configured() }

func (e *Embedder) Dimension() int { return e.client.dimension }

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if !e.client.configured() {
		slog.Warn("embedding_degraded", "reason", "provider not configured", "texts", len(texts))
		return e.zeroVectors(len(texts)), nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}
	var response struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}

	call := func(callCtx context.Context) error {
		return e.client.postJSON(callCtx, "/v1/embeddings", request, &response, "embeddings")
	}
	var err error
	if e.client.executor != nil {
		err = e.client.executor.Execute(ctx, "openai.embeddings", call, classifyProviderError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		slog.Warn("embedding_degraded", "reason", "provider call failed", "error", err, "texts", len(texts))
		return e.zeroVectors(len(texts)), nil
	}
	if len(response.Data) != len(texts) {
		slog.Warn("embedding_degraded", "reason", "vector count mismatch", "want", len(texts), "got", len(response.Data))
		return e.zeroVectors(len(texts)), nil
	}

	sort.Slice(response.Data, func(i, j int) bool {
		return response.Data[i].Index < response.Data[j].Index
	})
	out := make([][]float32, len(response.Data))
	for i, item := range response.Data {
		out[i] = item.Embedding
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return make([]float32, e.client.dimension), nil
	}
	return vectors[0], nil
}

func (e *Embedder) zeroVectors(n int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, e.client.dimension)
	}
	return out
}

// Generator produces the generative answer. Unlike the embedder it surfaces
// errors: the answering engine owns the extractive fallback.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Configured() bool { return g.client.configured() }

func (g *Generator) GenerateAnswer(ctx context.Context, question, contextText string) (string, error) {
	if !g.client.configured() {
		return "", fmt.Errorf("generation provider not configured")
	}

	request := map[string]any{
		"model": g.client.genModel,
		"messages": []map[string]string{
			{"role": "user", "content": buildAnswerPrompt(question, contextText)},
		},
		"temperature": 0.2,
		"max_tokens":  1000,
	}
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	call := func(callCtx context.Context) error {
		return g.client.postJSON(callCtx, "/v1/chat/completions", request, &response, "chat")
	}
	var err error
	if g.client.executor != nil {
		err = g.client.executor.Execute(ctx, "openai.chat", call, classifyProviderError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
