package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// anthropicVersion is the envelope version required by Claude models on
// Bedrock.
const anthropicVersion = "bedrock-2023-05-31"

// BuildRequestBody builds the invocation body for the given model id. The
// envelope family is chosen from the id: anthropic models use the messages
// envelope, everything else uses the converse-style envelope that Nova
// models accept.
func BuildRequestBody(modelID string, p Params) ([]byte, error) {
	if strings.TrimSpace(p.Prompt) == "" {
		return nil, fmt.Errorf("prompt is empty")
	}
	if strings.Contains(modelID, "anthropic.") {
		return buildAnthropicRequest(p)
	}
	return buildNovaRequest(p)
}

func buildAnthropicRequest(p Params) ([]byte, error) {
	body := map[string]any{
		"anthropic_version": anthropicVersion,
		"max_tokens":        p.MaxTokens,
		"temperature":       p.Temperature,
		"messages": []any{
			map[string]any{"role": "user", "content": p.Prompt},
		},
	}
	if p.System != "" {
		body["system"] = p.System
	}
	return json.Marshal(body)
}

func buildNovaRequest(p Params) ([]byte, error) {
	body := map[string]any{
		"messages": []any{
			map[string]any{
				"role":    "user",
				"content": []any{map[string]any{"text": p.Prompt}},
			},
		},
		"inferenceConfig": map[string]any{
			"maxTokens":   p.MaxTokens,
			"temperature": p.Temperature,
		},
	}
	if p.System != "" {
		body["system"] = []any{map[string]any{"text": p.System}}
	}
	return json.Marshal(body)
}
