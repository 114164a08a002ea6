// Package media dispatches generation requests to the Gemini image and Veo
// video models and turns the responses into displayable media locations.
package media

// Generation model IDs
//
// | Model Name              | API Model ID                  | Tier                          |
// |-------------------------|-------------------------------|-------------------------------|
// | Gemini 2.5 Flash Image  | gemini-2.5-flash-image        | Standard image (fast)         |
// | Gemini 3 Pro Image      | gemini-3-pro-image-preview    | High-res image (elevated key) |
// | Veo 3.1 Fast            | veo-3.1-fast-generate-preview | Video (elevated key only)     |
const (
	// ModelImageStandard is the fast image tier; no size override accepted.
	ModelImageStandard = "gemini-2.5-flash-image"

	// ModelImageHigh is the high-quality image tier; requires elevated access.
	ModelImageHigh = "gemini-3-pro-image-preview"

	// ModelVideo is the video tier; always requires elevated access.
	ModelVideo = "veo-3.1-fast-generate-preview"
)

// videoResolution is the fixed output tier for video generation.
const videoResolution = "1080p"

// Kind selects the generation path.
type Kind string

const (
	KindImage Kind = "IMAGE"
	KindVideo Kind = "VIDEO"
)

// AspectRatio is one of the five ratios the editor offers.
type AspectRatio string

const (
	RatioSquare       AspectRatio = "1:1"
	RatioLandscape    AspectRatio = "16:9"
	RatioPortrait     AspectRatio = "9:16"
	RatioFourThirds   AspectRatio = "4:3"
	RatioThreeFourths AspectRatio = "3:4"
)

// AspectRatios lists every ratio accepted for image generation.
var AspectRatios = []AspectRatio{
	RatioSquare, RatioLandscape, RatioPortrait, RatioFourThirds, RatioThreeFourths,
}

// ImageResolution selects the image tier. The wire values double as the size
// parameter passed to the high-quality model.
type ImageResolution string

const (
	ResolutionStandard ImageResolution = "1K"
	ResolutionHigh     ImageResolution = "2K"
	ResolutionUltra    ImageResolution = "4K"
)

// ImageResolutions lists the supported resolution tiers.
var ImageResolutions = []ImageResolution{ResolutionStandard, ResolutionHigh, ResolutionUltra}

// Video duration bounds in seconds.
const (
	MinVideoDuration     = 4
	MaxVideoDuration     = 12
	DefaultVideoDuration = 8
)

// MapVideoAspect maps a requested ratio onto the two ratios the video service
// accepts. The downgrade is a fixed policy, not a best effort:
//
//	9:16 and 3:4  -> 9:16
//	1:1, 16:9, 4:3 -> 16:9
func MapVideoAspect(r AspectRatio) string {
	switch r {
	case RatioPortrait, RatioThreeFourths:
		return "9:16"
	default:
		return "16:9"
	}
}
