// Package llm defines the interface for model invocation providers and the
// request envelopes they accept.
package llm

import "context"

// Invoker performs a single blocking model invocation.
// Implementations return the raw response bytes untouched; interpreting the
// response envelope is the normalizer's job.
type Invoker interface {
	Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error)
}

// Params holds the inference parameters shared by all request envelopes.
type Params struct {
	Prompt      string
	System      string
	MaxTokens   int
	Temperature float64
}
