package llm

import "context"

// Provider defines the interface for text-completion backends. It is used
// both for routing classification and for answer synthesis, with different
// prompts and parameters.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
