// Package llm holds the provider-agnostic conversation types and the
// completion-service boundary consumed by the relay pipeline.
package llm

import (
	"context"
	"errors"
)

// ErrNoChoices is never returned by a Completer: zero choices is a valid
// outcome and surfaces as an empty Choices slice on the response. It exists
// for callers that want to treat "no reply" as an error in their own domain.
var ErrNoChoices = errors.New("completion returned no choices")

// ChatResponse is a provider-agnostic completion result. Choices preserves
// the provider's candidate ordering; callers take the first.
type ChatResponse struct {
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is one candidate reply from the completion service.
// Content may be empty when the provider elides it.
type Choice struct {
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// Usage contains token counts reported by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// Completer is the completion-service boundary. Given an ordered sequence of
// role-tagged turns and a maximum-output-token bound it returns at least zero
// candidate replies. A response with no choices is a valid, non-error outcome.
type Completer interface {
	Complete(ctx context.Context, turns []Turn, maxTokens int) (*ChatResponse, error)
}

// FirstChoice returns the first candidate's content and whether one exists.
func (r *ChatResponse) FirstChoice() (string, bool) {
	if r == nil || len(r.Choices) == 0 {
		return "", false
	}
	return r.Choices[0].Content, true
}
