// Package studio owns the generation workflow: it sequences prompt
// enhancement and media generation, tracks the single current result, and
// handles authorization failures with a re-selection flow.
package studio

import (
	"time"

	"github.com/Bakhtawar-pk/Visionary-Studio/internal/media"
)

// State is the lifecycle state of a generation result.
type State string

const (
	// StatePending means media generation is in flight.
	StatePending State = "PENDING"
	// StateReady means the result is complete and displayable.
	StateReady State = "READY"
	// StateFailed means media generation failed.
	StateFailed State = "FAILED"
)

// Result is one immutable snapshot of the current generation. Snapshots are
// replaced wholesale on every transition; nothing mutates a published Result.
// At most one current Result exists at a time.
type Result struct {
	// ID is unique per generation attempt within a session.
	ID string `json:"id"`

	// OriginalConcept and EnhancedPrompt snapshot the inputs used.
	OriginalConcept string `json:"originalConcept"`
	EnhancedPrompt  string `json:"enhancedPrompt"`

	// Explanation describes what enhancement improved. Informational only.
	Explanation string `json:"explanation,omitempty"`

	// Kind is the media type this result targets.
	Kind media.Kind `json:"mediaKind"`

	// MediaLocation references the produced asset. Empty while pending or on
	// failure.
	MediaLocation string `json:"mediaLocation,omitempty"`

	// State is the lifecycle state.
	State State `json:"lifecycleState"`

	// FailureReason is the user-facing failure text, set only when State is
	// StateFailed.
	FailureReason string `json:"failureReason,omitempty"`

	// CreatedAt is when this generation attempt started.
	CreatedAt time.Time `json:"createdAt"`
}
