package llm

import (
	"context"
	"errors"
)

// Provider is the interface all completion backends must implement.
type Provider interface {
	// Chat sends a chat completion request and returns the full response.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Name returns the provider name (e.g. "gemini", "openai").
	Name() string

	// DefaultModel returns the default model for this provider.
	DefaultModel() string
}

// LLMError wraps an error with a classification for retry and fallback logic.
type LLMError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *LLMError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// IsRateLimit reports whether err carries a rate-limit classification.
func IsRateLimit(err error) bool {
	var llmErr *LLMError
	return errors.As(err, &llmErr) && llmErr.Type == ErrorRateLimit
}
