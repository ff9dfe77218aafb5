// Package normalize turns heterogeneous model invocation responses into a
// canonical mapping.
//
// Different Bedrock backends wrap their output differently: newer models nest
// content blocks under output.message.content, older ones use content[0].text,
// and either may wrap a JSON document in a markdown code fence. Normalize
// hides that drift from callers: it always returns either the decoded JSON
// object the model produced, or {"text": <verbatim text>} when the text is
// plain prose.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/buger/jsonparser"
)

// previewLimit bounds the raw payload preview attached to extraction errors.
const previewLimit = 1000

// MalformedResponseError indicates the response bytes were not valid UTF-8 or
// did not parse as top-level JSON. The invocation should be treated as failed.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ExtractionFailureError indicates the response parsed as JSON but carried no
// text block anywhere in its structure. Preview holds a bounded slice of the
// decoded payload for diagnosis.
type ExtractionFailureError struct {
	Preview string
}

func (e *ExtractionFailureError) Error() string {
	return fmt.Sprintf("no text block found in model response: %s", e.Preview)
}

// Normalize parses the raw bytes of a model invocation response and returns
// the canonical result: the embedded JSON object if one of the text blocks
// decodes as JSON, otherwise {"text": <first text block, verbatim>}.
//
// Extraction strategies are tried in a fixed order:
//
//  1. structured envelope: output.message.content, first block with a
//     string "text" field
//  2. legacy envelope: content[0].text
//  3. only when neither envelope yields a candidate, an ordered pre-order
//     scan of the whole document for any string "text" field
//
// Candidates are then attempted in that same order; the first one whose
// (fence-stripped) text parses as a JSON object wins. Normalize is a pure
// function: no I/O, no retries, safe for concurrent use.
func Normalize(raw []byte) (map[string]any, error) {
	if !utf8.Valid(raw) {
		return nil, &MalformedResponseError{Err: fmt.Errorf("payload is not valid UTF-8")}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}

	var candidates []string
	if text, ok := extractStructured(doc); ok {
		candidates = append(candidates, text)
	}
	if text, ok := extractLegacy(doc); ok {
		candidates = append(candidates, text)
	}
	if len(candidates) == 0 {
		candidates = scanTexts(raw)
	}

	for _, text := range candidates {
		if obj, ok := decodeObject(stripCodeFence(text)); ok {
			return obj, nil
		}
	}

	if len(candidates) > 0 {
		// Plain prose: returned verbatim, fence markers included.
		return map[string]any{"text": candidates[0]}, nil
	}

	return nil, &ExtractionFailureError{Preview: preview(string(raw))}
}

// extractStructured follows output -> message -> content and returns the text
// of the first content block that carries a string "text" field.
func extractStructured(doc any) (string, bool) {
	root, ok := doc.(map[string]any)
	if !ok {
		return "", false
	}
	output, ok := root["output"].(map[string]any)
	if !ok {
		return "", false
	}
	message, ok := output["message"].(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := message["content"].([]any)
	if !ok {
		return "", false
	}
	for _, block := range content {
		if m, ok := block.(map[string]any); ok {
			if text, ok := m["text"].(string); ok {
				return text, true
			}
		}
	}
	return "", false
}

// extractLegacy follows the older content[0].text envelope.
func extractLegacy(doc any) (string, bool) {
	root, ok := doc.(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := root["content"].([]any)
	if !ok || len(content) == 0 {
		return "", false
	}
	block, ok := content[0].(map[string]any)
	if !ok {
		return "", false
	}
	text, ok := block["text"].(string)
	return text, ok
}

// scanTexts walks the raw document in document order and collects every
// string-valued "text" field, pre-order. It operates on the raw bytes because
// decoded Go maps do not preserve key order.
func scanTexts(raw []byte) []string {
	var texts []string
	walkValue(raw, guessType(raw), &texts)
	return texts
}

func walkValue(value []byte, dataType jsonparser.ValueType, texts *[]string) {
	switch dataType {
	case jsonparser.Object:
		// A "text" field on this object is emitted before descending.
		if v, err := jsonparser.GetString(value, "text"); err == nil {
			*texts = append(*texts, v)
		}
		_ = jsonparser.ObjectEach(value, func(key, val []byte, vt jsonparser.ValueType, _ int) error {
			if string(key) == "text" && vt == jsonparser.String {
				return nil // already emitted above
			}
			walkValue(val, vt, texts)
			return nil
		})
	case jsonparser.Array:
		_, _ = jsonparser.ArrayEach(value, func(val []byte, vt jsonparser.ValueType, _ int, _ error) {
			walkValue(val, vt, texts)
		})
	}
}

func guessType(raw []byte) jsonparser.ValueType {
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case strings.HasPrefix(trimmed, "{"):
		return jsonparser.Object
	case strings.HasPrefix(trimmed, "["):
		return jsonparser.Array
	default:
		return jsonparser.Unknown
	}
}

// stripCodeFence removes a surrounding triple-backtick fence, optionally
// tagged (e.g. ```json), keeping the content between the first newline after
// the opening fence and the closing fence. Input is returned unchanged when
// no complete fence is present.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	rest := trimmed[len("```"):]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return s
	}
	body := rest[nl+1:]
	end := strings.LastIndex(body, "```")
	if end < 0 {
		return s
	}
	return strings.TrimSpace(body[:end])
}

// decodeObject attempts to parse s as a JSON object. Scalar and array parses
// do not count: the canonical result is always a mapping, so anything that is
// not an object is treated as prose.
func decodeObject(s string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// preview truncates s to previewLimit characters, appending an ellipsis
// marker when the payload was longer.
func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLimit {
		return s
	}
	return string(runes[:previewLimit]) + "..."
}
