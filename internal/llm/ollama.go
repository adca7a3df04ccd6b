// Package llm holds the Ollama adapters used for chat completion and
// embeddings.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/ragbooking/internal/domain"
)

var (
	// ErrBackendUnavailable covers network failures, timeouts and non-2xx replies.
	ErrBackendUnavailable = errors.New("llm backend unavailable")
	// ErrMalformedReply means the backend answered without the expected content field.
	ErrMalformedReply = errors.New("llm reply malformed")
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "deepseek-r1:1.5b"
	defaultTimeout = 20 * time.Second
)

// Generator produces a reply for an ordered list of chat messages.
type Generator interface {
	Generate(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// OllamaClient talks to the Ollama /api/chat endpoint without streaming.
type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
}

type Option func(*OllamaClient)

func WithHTTPClient(client *http.Client) Option {
	return func(c *OllamaClient) {
		c.client = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *OllamaClient) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

func NewOllamaClient(baseURL, model string, opts ...Option) *OllamaClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	c := &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type chatResponse struct {
	Message *struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	} `json:"message"`
}

func (c *OllamaClient) Generate(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Stream: false})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	raw, err := c.post(ctx, "/api/chat", body)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrMalformedReply, err)
	}
	if resp.Message == nil || resp.Message.Content == nil {
		return "", fmt.Errorf("%w: missing message.content", ErrMalformedReply)
	}
	return *resp.Message.Content, nil
}

func (c *OllamaClient) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calling ollama: %v", ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", ErrBackendUnavailable, resp.StatusCode, strings.TrimSpace(string(buf)))
	}

	buf, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrBackendUnavailable, err)
	}
	return buf, nil
}

var _ Generator = (*OllamaClient)(nil)
