// Package jsonutil extracts and parses JSON from model responses that may
// arrive wrapped in markdown code fences or surrounded by prose, even when a
// structured-output schema was requested.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripMarkdownFences removes a ```json ... ``` or ``` ... ``` wrapper.
// Text without fences is returned unchanged.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	end := len(lines) - 1
	for i := len(lines) - 1; i >= 1; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}

	return strings.Join(lines[1:end], "\n")
}

// extractObject returns the first top-level JSON object embedded in text.
func extractObject(text string) (string, error) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found")
	}
	text = text[start:]
	end := strings.LastIndex(text, "}")
	if end == -1 {
		return "", fmt.Errorf("no closing } found")
	}
	return text[:end+1], nil
}

// ParseObject strips markdown fences from raw response text, locates the JSON
// object, and unmarshals it into T.
func ParseObject[T any](raw string) (T, error) {
	var zero T

	jsonStr, err := extractObject(StripMarkdownFences(raw))
	if err != nil {
		return zero, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		preview := jsonStr
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return zero, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return result, nil
}
