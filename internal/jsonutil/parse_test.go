package jsonutil

import (
	"testing"
)

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no fences",
			input:    `{"a": 1}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "json fence",
			input:    "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "plain fence",
			input:    "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "leading whitespace",
			input:    "  ```json\n{\"a\": 1}\n```  ",
			expected: `{"a": 1}`,
		},
		{
			name:     "multiline body",
			input:    "```json\n{\n\"a\": 1\n}\n```",
			expected: "{\n\"a\": 1\n}",
		},
		{
			name:     "too short to be fenced",
			input:    "```",
			expected: "```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripMarkdownFences(tt.input)
			if result != tt.expected {
				t.Errorf("StripMarkdownFences(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

type testPayload struct {
	Prompt      string `json:"prompt"`
	Explanation string `json:"explanation"`
}

func TestParseObject(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    testPayload
		expectError bool
	}{
		{
			name:     "bare object",
			input:    `{"prompt": "a cat", "explanation": "added detail"}`,
			expected: testPayload{Prompt: "a cat", Explanation: "added detail"},
		},
		{
			name:     "fenced object",
			input:    "```json\n{\"prompt\": \"a cat\", \"explanation\": \"added detail\"}\n```",
			expected: testPayload{Prompt: "a cat", Explanation: "added detail"},
		},
		{
			name:     "object surrounded by prose",
			input:    "Here is the result:\n{\"prompt\": \"a cat\", \"explanation\": \"x\"}\nHope that helps!",
			expected: testPayload{Prompt: "a cat", Explanation: "x"},
		},
		{
			name:        "no object at all",
			input:       "sorry, I cannot do that",
			expectError: true,
		},
		{
			name:        "unbalanced braces",
			input:       `{"prompt": "a cat"`,
			expectError: true,
		},
		{
			name:        "invalid json inside braces",
			input:       `{prompt: a cat}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseObject[testPayload](tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for %q, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("got %+v, want %+v", result, tt.expected)
			}
		})
	}
}
