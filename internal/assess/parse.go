package assess

import (
	"encoding/json"
	"strings"

	"github.com/classkit/assessgen/internal/model"
)

// Parse decodes the model's raw response text into an AssessmentResult.
// It tolerates code fences and surrounding prose by extracting the first
// JSON object before decoding. Parse is deterministic and has no side
// effects; validation happens separately.
func Parse(raw string) (*model.AssessmentResult, error) {
	payload, err := extractPayload(raw)
	if err != nil {
		return nil, err
	}

	var result model.AssessmentResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, &MalformedError{Reason: "decode payload", Err: err}
	}
	return &result, nil
}

// extractPayload locates the structured JSON payload inside free-form model
// output. It strips markdown code fences first, then falls back to scanning
// for the first balanced JSON object.
func extractPayload(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", &MalformedError{Reason: "empty response"}
	}

	if fenced, ok := stripCodeFence(text); ok {
		text = fenced
	}

	obj, ok := firstJSONObject(text)
	if !ok {
		return "", &MalformedError{Reason: "no JSON object found in response"}
	}
	return obj, nil
}

// stripCodeFence returns the content of the first ``` fence, if present.
func stripCodeFence(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	// Skip an optional language tag on the fence line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine == "json" || firstLine == "" {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return strings.TrimSpace(rest), true
	}
	return strings.TrimSpace(rest[:end]), true
}

// firstJSONObject scans for the first balanced top-level JSON object,
// respecting string literals and escapes.
func firstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
