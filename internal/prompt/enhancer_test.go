package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"
)

type stubTextModels struct {
	generateContent func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (s *stubTextModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return s.generateContent(ctx, model, contents, config)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func TestEnhanceSuccess(t *testing.T) {
	var gotModel string
	var gotUserText string
	models := &stubTextModels{
		generateContent: func(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotModel = model
			gotUserText = contents[0].Parts[0].Text
			if config.ResponseMIMEType != "application/json" {
				t.Errorf("response MIME type = %q, want application/json", config.ResponseMIMEType)
			}
			if config.ResponseSchema == nil {
				t.Error("expected a response schema")
			}
			return textResponse(`{"enhancedPrompt": "a majestic cat floating in a nebula", "explanation": "Added setting and composition."}`), nil
		},
	}

	e := &Enhancer{models: models, model: "test-model"}
	result := e.Enhance(context.Background(), "a cat in space", ModifierSet{Style: "Surrealism", Mood: "Epic"})

	if gotModel != "test-model" {
		t.Errorf("model = %q, want test-model", gotModel)
	}
	if result.EnhancedPrompt != "a majestic cat floating in a nebula" {
		t.Errorf("enhancedPrompt = %q", result.EnhancedPrompt)
	}
	if result.Explanation != "Added setting and composition." {
		t.Errorf("explanation = %q", result.Explanation)
	}

	if !strings.Contains(gotUserText, `"a cat in space"`) {
		t.Errorf("user content missing concept: %q", gotUserText)
	}
	if !strings.Contains(gotUserText, "Style: Surrealism") {
		t.Errorf("user content missing pinned style: %q", gotUserText)
	}
	if !strings.Contains(gotUserText, "Medium: Auto") {
		t.Errorf("unset axis should render as Auto: %q", gotUserText)
	}
}

func TestEnhanceFencedResponse(t *testing.T) {
	models := &stubTextModels{
		generateContent: func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse("```json\n{\"enhancedPrompt\": \"detailed prompt\", \"explanation\": \"x\"}\n```"), nil
		},
	}

	e := &Enhancer{models: models, model: "test-model"}
	result := e.Enhance(context.Background(), "a cat", ModifierSet{})
	if result.EnhancedPrompt != "detailed prompt" {
		t.Errorf("enhancedPrompt = %q, want detailed prompt", result.EnhancedPrompt)
	}
}

func TestEnhanceFallback(t *testing.T) {
	tests := []struct {
		name     string
		response *genai.GenerateContentResponse
		err      error
	}{
		{
			name: "network error",
			err:  errors.New("connection refused"),
		},
		{
			name:     "empty response",
			response: &genai.GenerateContentResponse{},
		},
		{
			name:     "malformed json",
			response: textResponse("I'd be happy to help with that!"),
		},
		{
			name:     "missing enhancedPrompt",
			response: textResponse(`{"explanation": "did nothing"}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := &stubTextModels{
				generateContent: func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
					return tt.response, tt.err
				},
			}

			e := &Enhancer{models: models, model: "test-model"}
			result := e.Enhance(context.Background(), "a cat in space", ModifierSet{})

			if result.EnhancedPrompt != "a cat in space" {
				t.Errorf("fallback prompt = %q, want original concept", result.EnhancedPrompt)
			}
			if result.Explanation != fallbackExplanation {
				t.Errorf("fallback explanation = %q, want %q", result.Explanation, fallbackExplanation)
			}
		})
	}
}

func TestGetModelName(t *testing.T) {
	t.Setenv("STUDIO_ENHANCE_MODEL", "")
	if got := GetModelName(); got != DefaultModelName {
		t.Errorf("GetModelName() = %q, want %q", got, DefaultModelName)
	}

	t.Setenv("STUDIO_ENHANCE_MODEL", "gemini-override")
	if got := GetModelName(); got != "gemini-override" {
		t.Errorf("GetModelName() = %q, want gemini-override", got)
	}
}
