// Package mock provides a model invoker for testing without Bedrock access.
package mock

import (
	"context"
	"encoding/json"
	"sync"
)

// Invocation records one Invoke call.
type Invocation struct {
	ModelID string
	Body    []byte
}

// Invoker implements llm.Invoker with canned responses.
type Invoker struct {
	// Respond, when set, computes the response for each call.
	Respond func(modelID string, body []byte) ([]byte, error)

	mu    sync.Mutex
	calls []Invocation
}

// New creates a mock invoker that answers every call with a structured
// envelope carrying the given text payload.
func New(text string) *Invoker {
	return &Invoker{
		Respond: func(string, []byte) ([]byte, error) {
			return Envelope(text), nil
		},
	}
}

// Invoke records the call and returns the configured response.
func (i *Invoker) Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	i.mu.Lock()
	i.calls = append(i.calls, Invocation{ModelID: modelID, Body: body})
	i.mu.Unlock()
	return i.Respond(modelID, body)
}

// Calls returns the recorded invocations.
func (i *Invoker) Calls() []Invocation {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]Invocation, len(i.calls))
	copy(out, i.calls)
	return out
}

// Envelope wraps text in the structured output.message.content envelope.
func Envelope(text string) []byte {
	b, _ := json.Marshal(map[string]any{
		"output": map[string]any{
			"message": map[string]any{
				"content": []any{map[string]any{"text": text}},
			},
		},
	})
	return b
}

// LegacyEnvelope wraps text in the older content[0].text envelope.
func LegacyEnvelope(text string) []byte {
	b, _ := json.Marshal(map[string]any{
		"content": []any{map[string]any{"text": text}},
	})
	return b
}
