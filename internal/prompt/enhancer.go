package prompt

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/Bakhtawar-pk/Visionary-Studio/internal/jsonutil"
)

// DefaultModelName is the default Gemini model for prompt enhancement.
// Can be overridden via the STUDIO_ENHANCE_MODEL environment variable.
const DefaultModelName = "gemini-3-flash-preview"

// GetModelName returns the enhancement model to use, resolved from:
//  1. STUDIO_ENHANCE_MODEL environment variable (if set)
//  2. Default: gemini-3-flash-preview (best for speed + intelligence)
func GetModelName() string {
	if env := os.Getenv("STUDIO_ENHANCE_MODEL"); env != "" {
		return env
	}
	return DefaultModelName
}

// systemInstruction frames the enhancement task for the model.
const systemInstruction = `You are an expert AI prompt engineer.
Your goal is to take a basic user idea and expand it into a detailed, high-quality prompt suitable for state-of-the-art image/video generation models.

Construct the prompt by weaving in the user's selected parameters seamlessly.
Focus on descriptive adjectives, visual details, lighting, composition, and texture.

Return the response in JSON format.`

// fallbackExplanation is shown when enhancement could not complete.
const fallbackExplanation = "Failed to enhance prompt. Using original."

// Enhancement is the structured output of one enhancement attempt.
// EnhancedPrompt is always non-empty: when the attempt fails it carries the
// original concept verbatim.
type Enhancement struct {
	EnhancedPrompt string `json:"enhancedPrompt"`
	Explanation    string `json:"explanation"`
}

// textModels is the slice of the Gemini client the enhancer needs.
// *genai.Models satisfies it.
type textModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Enhancer performs single-attempt prompt enhancement. It is stateless
// between calls; each Enhance issues exactly one network request.
type Enhancer struct {
	models textModels
	model  string
}

// NewEnhancer builds an Enhancer on top of a Gemini client. model may be
// empty to use GetModelName().
func NewEnhancer(client *genai.Client, model string) *Enhancer {
	if model == "" {
		model = GetModelName()
	}
	return &Enhancer{models: client.Models, model: model}
}

// enhancementSchema constrains the response to exactly the two required
// text fields.
var enhancementSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"enhancedPrompt": {Type: genai.TypeString},
		"explanation":    {Type: genai.TypeString},
	},
	Required: []string{"enhancedPrompt", "explanation"},
}

// Enhance expands concept into a detailed generation prompt. The operation is
// total: every failure mode (network, malformed response, empty prompt) is
// absorbed and the original concept is returned as the enhanced prompt. No
// retries are attempted.
func (e *Enhancer) Enhance(ctx context.Context, concept string, mods ModifierSet) Enhancement {
	fallback := Enhancement{EnhancedPrompt: concept, Explanation: fallbackExplanation}

	userContent := fmt.Sprintf(`Base Idea: %q
Parameters:
- Medium: %s
- Style: %s
- Lighting: %s
- Camera: %s
- Mood: %s

Output a JSON object with:
1. 'enhancedPrompt': The final detailed prompt string.
2. 'explanation': A brief 1-sentence explanation of what you improved.`,
		concept,
		orAuto(mods.Medium), orAuto(mods.Style), orAuto(mods.Lighting),
		orAuto(mods.Camera), orAuto(mods.Mood))

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   enhancementSchema,
	}
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: userContent}}},
	}

	start := time.Now()
	resp, err := e.models.GenerateContent(ctx, e.model, contents, config)
	if err != nil {
		log.Warn().Err(err).Str("model", e.model).Msg("Prompt enhancement failed, using original concept")
		return fallback
	}

	text := resp.Text()
	if text == "" {
		log.Warn().Str("model", e.model).Msg("Prompt enhancement returned no text, using original concept")
		return fallback
	}

	result, err := jsonutil.ParseObject[Enhancement](text)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse enhancement response, using original concept")
		return fallback
	}
	if result.EnhancedPrompt == "" {
		log.Warn().Msg("Enhancement response missing enhancedPrompt, using original concept")
		return fallback
	}

	log.Info().
		Int("concept_length", len(concept)).
		Int("enhanced_length", len(result.EnhancedPrompt)).
		Dur("duration", time.Since(start)).
		Msg("Prompt enhanced")

	return result
}
