package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

const defaultEmbeddingModel = "nomic-embed-text"

// Embedder turns text into dense vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// OllamaEmbedder uses the Ollama /api/embeddings endpoint. It shares the
// transport settings of an OllamaClient.
type OllamaEmbedder struct {
	*OllamaClient
}

func NewOllamaEmbedder(baseURL, model string, opts ...Option) *OllamaEmbedder {
	if model == "" {
		model = defaultEmbeddingModel
	}
	return &OllamaEmbedder{OllamaClient: NewOllamaClient(baseURL, model, opts...)}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	raw, err := e.post(ctx, "/api/embeddings", body)
	if err != nil {
		return nil, err
	}

	var resp embedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrMalformedReply, err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrMalformedReply)
	}
	return resp.Embedding, nil
}

// EmbedBatch embeds texts one by one and fails on the first error.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

var _ Embedder = (*OllamaEmbedder)(nil)
