package studio

import (
	"errors"
	"fmt"

	"github.com/Bakhtawar-pk/Visionary-Studio/internal/media"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/prompt"
)

// ErrEmptyConcept rejects operations without a concept. Boundaries treat it
// as a silent no-op rather than a surfaced error.
var ErrEmptyConcept = errors.New("concept is empty")

// ErrBusy rejects an operation while another one is in flight. Only one
// enhancement or generation may run at a time; there is no queue.
var ErrBusy = errors.New("another operation is in flight")

// Request carries everything one generate action needs. It is constructed
// per user action and never stored.
type Request struct {
	Concept         string                `json:"concept"`
	Modifiers       prompt.ModifierSet    `json:"modifiers"`
	Kind            media.Kind            `json:"mediaKind"`
	AspectRatio     media.AspectRatio     `json:"aspectRatio"`
	Resolution      media.ImageResolution `json:"imageResolution"`
	DurationSeconds int                   `json:"videoDurationSeconds"`
}

// Validate checks the request and fills defaults: square ratio, standard
// resolution, 8-second duration. A duration outside [4,12] is an error
// rather than a silent clamp.
func (r *Request) Validate() error {
	if r.Concept == "" {
		return ErrEmptyConcept
	}

	switch r.Kind {
	case media.KindImage, media.KindVideo:
	case "":
		r.Kind = media.KindImage
	default:
		return fmt.Errorf("unknown media kind %q", r.Kind)
	}

	if r.AspectRatio == "" {
		r.AspectRatio = media.RatioSquare
	} else if !validRatio(r.AspectRatio) {
		return fmt.Errorf("unknown aspect ratio %q", r.AspectRatio)
	}

	if r.Resolution == "" {
		r.Resolution = media.ResolutionStandard
	} else if !validResolution(r.Resolution) {
		return fmt.Errorf("unknown image resolution %q", r.Resolution)
	}

	if r.Kind == media.KindVideo {
		if r.DurationSeconds == 0 {
			r.DurationSeconds = media.DefaultVideoDuration
		}
		if r.DurationSeconds < media.MinVideoDuration || r.DurationSeconds > media.MaxVideoDuration {
			return fmt.Errorf("video duration %d outside [%d,%d] seconds",
				r.DurationSeconds, media.MinVideoDuration, media.MaxVideoDuration)
		}
	}

	return nil
}

func validRatio(r media.AspectRatio) bool {
	for _, known := range media.AspectRatios {
		if r == known {
			return true
		}
	}
	return false
}

func validResolution(r media.ImageResolution) bool {
	for _, known := range media.ImageResolutions {
		if r == known {
			return true
		}
	}
	return false
}
