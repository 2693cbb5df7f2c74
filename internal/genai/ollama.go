package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// OllamaClient calls an Ollama-compatible /api/generate endpoint.
type OllamaClient struct {
	client *resty.Client
	model  string
}

// NewOllamaClient builds a client for the given base URL and model.
func NewOllamaClient(baseURL, model string) *OllamaClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(2 * time.Minute)
	return &OllamaClient{client: c, model: model}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Generate sends the prompt and returns the generated text. A failure here
// aborts the request upstream; no conversation turn is persisted.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("empty prompt")
	}

	reqBody := generateRequest{Model: c.model, Prompt: prompt, Stream: false}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("generate status %d: %s", resp.StatusCode(), resp.String())
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("generate backend error: %s", out.Error)
	}
	return out.Response, nil
}
