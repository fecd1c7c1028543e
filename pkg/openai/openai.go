// Package openai provides a minimal OpenAI client for chat completions and
// embeddings over the HTTP API. Outbound calls share a token-bucket rate
// limiter so concurrent classifications do not trip the provider's limits.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client calls the OpenAI chat-completions and embeddings endpoints.
// Safe for concurrent use.
type Client struct {
	apiKey     string
	model      string
	embedModel string
	baseURL    string
	client     *http.Client
	limiter    *rate.Limiter
}

// New creates an OpenAI client for the given chat and embedding models.
func New(apiKey, model, embedModel string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		embedModel: embedModel,
		baseURL:    defaultBaseURL,
		client:     &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// NewWithBaseURL creates a client against a custom endpoint. Used by tests
// and by OpenAI-compatible gateways.
func NewWithBaseURL(apiKey, model, embedModel, baseURL string) *Client {
	c := New(apiKey, model, embedModel)
	c.baseURL = baseURL
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends a system+user prompt pair and returns the completion text.
// Temperature is pinned to zero: classification must be as deterministic as
// the model allows.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
	}

	var result chatResponse
	if err := c.post(ctx, "/chat/completions", body, &result); err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("openai chat: empty choices")
	}
	return result.Choices[0].Message.Content, nil
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var result embedResponse
	if err := c.post(ctx, "/embeddings", embedRequest{Model: c.embedModel, Input: text}, &result); err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, errors.New("openai embed: empty data")
	}
	return result.Data[0].Embedding, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, snippet)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
