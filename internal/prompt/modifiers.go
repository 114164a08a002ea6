// Package prompt expands a short user concept into a detailed,
// generation-ready prompt using Gemini with a structured output contract.
package prompt

// ModifierSet carries the optional descriptive axes a user can pin while
// composing a concept. An empty value on any axis means "let the model
// decide" and is rendered as "Auto" in the enhancement request.
type ModifierSet struct {
	Medium   string `json:"medium"`
	Style    string `json:"style"`
	Lighting string `json:"lighting"`
	Camera   string `json:"camera"`
	Mood     string `json:"mood"`
}

// Vocabulary lists offered by the editor for each modifier axis. Free-form
// values are also accepted; these are the curated suggestions.
var (
	MediumOptions = []string{
		"Photography", "3D Render", "Digital Illustration", "Oil Painting",
		"Cinematic Film", "Anime/Manga", "Concept Art", "Polaroid", "Isometric",
	}

	StyleOptions = []string{
		"Cyberpunk", "Minimalist", "Surrealism", "Steampunk", "Vaporwave",
		"Noir", "Studio Ghibli", "Pixar Style", "Hyperrealistic", "Abstract",
	}

	LightingOptions = []string{
		"Golden Hour", "Studio Lighting", "Neon Lights", "Cinematic Lighting",
		"Natural Light", "Bioluminescent", "Volumetric Fog", "Rembrandt", "Softbox",
	}

	CameraOptions = []string{
		"Wide Angle", "Telephoto", "Macro", "Drone View", "Fisheye",
		"Bokeh", "Top-Down", "GoPro", "First-Person",
	}

	MoodOptions = []string{
		"Epic", "Melancholic", "Whimsical", "Dark", "Ethereal",
		"Energetic", "Peaceful", "Chaotic", "Romantic",
	}
)

// orAuto substitutes the wire value for an unset axis.
func orAuto(v string) string {
	if v == "" {
		return "Auto"
	}
	return v
}
