package llm

import (
	"encoding/json"
	"testing"
)

func TestBuildRequestBodyAnthropic(t *testing.T) {
	body, err := BuildRequestBody("anthropic.claude-3-sonnet-20240229-v1:0", Params{
		Prompt:      "Generate a SOAP note.",
		System:      "You are a clinical documentation assistant.",
		MaxTokens:   800,
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("BuildRequestBody() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got["anthropic_version"] != anthropicVersion {
		t.Errorf("anthropic_version = %v", got["anthropic_version"])
	}
	if got["max_tokens"] != float64(800) {
		t.Errorf("max_tokens = %v, want 800", got["max_tokens"])
	}
	if got["system"] != "You are a clinical documentation assistant." {
		t.Errorf("system = %v", got["system"])
	}
	msgs, ok := got["messages"].([]any)
	if !ok || len(msgs) != 1 {
		t.Fatalf("messages = %v", got["messages"])
	}
	msg := msgs[0].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "Generate a SOAP note." {
		t.Errorf("message = %v", msg)
	}
}

func TestBuildRequestBodyNova(t *testing.T) {
	body, err := BuildRequestBody("apac.amazon.nova-lite-v1:0", Params{
		Prompt:      "Write a patient handout.",
		MaxTokens:   300,
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("BuildRequestBody() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if _, hasVersion := got["anthropic_version"]; hasVersion {
		t.Error("nova envelope should not carry anthropic_version")
	}
	if _, hasSystem := got["system"]; hasSystem {
		t.Error("system should be omitted when empty")
	}

	cfg, ok := got["inferenceConfig"].(map[string]any)
	if !ok {
		t.Fatalf("inferenceConfig = %v", got["inferenceConfig"])
	}
	if cfg["maxTokens"] != float64(300) {
		t.Errorf("maxTokens = %v, want 300", cfg["maxTokens"])
	}

	msgs := got["messages"].([]any)
	content := msgs[0].(map[string]any)["content"].([]any)
	block := content[0].(map[string]any)
	if block["text"] != "Write a patient handout." {
		t.Errorf("content text = %v", block["text"])
	}
}

func TestBuildRequestBodyEmptyPrompt(t *testing.T) {
	if _, err := BuildRequestBody("apac.amazon.nova-lite-v1:0", Params{MaxTokens: 100}); err == nil {
		t.Error("BuildRequestBody should reject an empty prompt")
	}
}
