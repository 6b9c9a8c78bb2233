// Package openai implements pkg/llm's Completer against OpenAI's Chat
// Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/papercomputeco/quip/pkg/llm"
)

const (
	// DefaultModel is the default chat completion model.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultBaseURL is the default OpenAI API URL.
	DefaultBaseURL = "https://api.openai.com"
)

// Client wraps OpenAI's Chat Completions API.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// Config holds configuration for the OpenAI client.
type Config struct {
	// BaseURL is the API URL (e.g., "https://api.openai.com" or any
	// OpenAI-compatible endpoint). Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the chat model to use. Defaults to DefaultModel if empty.
	Model string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string
}

// NewClient creates a new chat completion client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		baseURL: baseURL,
		model:   model,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Complete sends the ordered turns to the chat completions endpoint and
// returns the provider's candidates. A response with zero choices is returned
// as-is, not as an error.
func (c *Client) Complete(ctx context.Context, turns []llm.Turn, maxTokens int) (*llm.ChatResponse, error) {
	messages := make([]chatMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, chatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	reqBody := chatRequest{
		Model:    c.model,
		Messages: messages,
	}
	if maxTokens > 0 {
		reqBody.MaxTokens = &maxTokens
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("openai returned status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(body))
	}

	var wire chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	result := &llm.ChatResponse{
		Model:   wire.Model,
		Choices: make([]llm.Choice, 0, len(wire.Choices)),
	}
	for _, choice := range wire.Choices {
		result.Choices = append(result.Choices, llm.Choice{
			Content:      choice.Message.Content,
			FinishReason: choice.FinishReason,
		})
	}
	if wire.Usage != nil {
		result.Usage = &llm.Usage{
			PromptTokens:     wire.Usage.PromptTokens,
			CompletionTokens: wire.Usage.CompletionTokens,
			TotalTokens:      wire.Usage.TotalTokens,
		}
	}

	return result, nil
}
