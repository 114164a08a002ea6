package studio

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Bakhtawar-pk/Visionary-Studio/internal/auth"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/media"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/prompt"
)

// failureMessage is the only failure text users ever see for media
// generation, regardless of the underlying cause. Raw error detail stays in
// the logs.
const failureMessage = "Generation failed. Please try again."

// reauthMessage is shown when a generation failed because elevated access is
// missing or lapsed.
const reauthMessage = "API key session expired or invalid. Please select your key again."

// Enhancer expands a concept into a generation-ready prompt. The operation
// is total: it never fails, falling back to the original concept instead.
type Enhancer interface {
	Enhance(ctx context.Context, concept string, mods prompt.ModifierSet) prompt.Enhancement
}

// MediaGenerator dispatches a resolved prompt into one of the two media
// paths. Both propagate errors; there is no fallback asset.
type MediaGenerator interface {
	GenerateImage(ctx context.Context, prompt string, ratio media.AspectRatio, res media.ImageResolution, elevated bool) (string, error)
	GenerateVideo(ctx context.Context, prompt string, ratio media.AspectRatio, durationSeconds int, elevated bool) (string, error)
}

// Publisher receives state snapshots for display. Implementations must not
// block for long; they run on the generation path.
type Publisher interface {
	// PublishResult delivers a new current-result snapshot.
	PublishResult(Result)
	// PublishAccess delivers the elevated-access flag.
	PublishAccess(elevated bool)
	// Notify delivers a blocking user notification outside the result state.
	Notify(message string)
}

// Orchestrator owns the top-level generation workflow. It is the only
// component that touches the current result and the elevated-access flag;
// enhancement and media generation are stateless collaborators.
//
// At most one enhancement or generation runs at a time, enforced by the busy
// flag. Enhance and Generate run synchronously; StartEnhance and
// StartGenerate claim the slot synchronously and detach the work, so callers
// learn about admission before the operation runs. The access flag may be
// refreshed concurrently; it only influences future admission decisions,
// never an in-flight call.
type Orchestrator struct {
	enhancer  Enhancer
	generator MediaGenerator
	access    auth.Provider
	publisher Publisher

	mu       sync.Mutex
	busy     bool
	elevated bool
	current  *Result

	now   func() time.Time
	newID func() string
}

// NewOrchestrator wires the workflow together.
func NewOrchestrator(enhancer Enhancer, generator MediaGenerator, access auth.Provider, publisher Publisher) *Orchestrator {
	return &Orchestrator{
		enhancer:  enhancer,
		generator: generator,
		access:    access,
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Current returns the latest result snapshot, if any.
func (o *Orchestrator) Current() (Result, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return Result{}, false
	}
	return *o.current, true
}

// Busy reports whether an enhancement or generation is in flight. It is
// advisory, for display and polling; admission is decided by the acquire
// inside each operation.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Elevated returns the cached elevated-access flag.
func (o *Orchestrator) Elevated() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.elevated
}

// RefreshAccess re-checks elevated access with the provider and publishes the
// flag. Called at startup and whenever the client regains focus. A probe
// error keeps the previous flag value.
func (o *Orchestrator) RefreshAccess(ctx context.Context) {
	elevated, err := o.access.HasElevatedAccess(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Elevated access check failed, keeping previous state")
		return
	}
	o.setElevated(elevated)
}

// RequestAccess triggers the interactive key selection and optimistically
// marks access as granted. The optimism is deliberate: the external check
// can lag the user's selection, and the next entitlement failure revokes the
// flag again.
func (o *Orchestrator) RequestAccess(ctx context.Context) error {
	if err := o.access.RequestElevatedAccess(ctx); err != nil {
		log.Error().Err(err).Msg("Authorization selection failed")
		return err
	}
	o.setElevated(true)
	return nil
}

// Enhance runs the enhancement step on its own and publishes a prompt-only
// snapshot, letting the user inspect the refined prompt before committing to
// media generation. kind records the currently selected media type for
// display purposes.
func (o *Orchestrator) Enhance(ctx context.Context, concept string, mods prompt.ModifierSet, kind media.Kind) error {
	if concept == "" {
		return ErrEmptyConcept
	}
	if err := o.acquire(); err != nil {
		return err
	}
	defer o.release()

	o.enhance(ctx, concept, mods, kind)
	return nil
}

// StartEnhance claims the in-flight slot synchronously and runs the
// enhancement on a new goroutine. Admission errors (empty concept, ErrBusy)
// are returned before any work starts, so a nil return guarantees a snapshot
// will be published. Serving layers use this to answer "accepted" truthfully.
func (o *Orchestrator) StartEnhance(ctx context.Context, concept string, mods prompt.ModifierSet, kind media.Kind) error {
	if concept == "" {
		return ErrEmptyConcept
	}
	if err := o.acquire(); err != nil {
		return err
	}

	go func() {
		defer o.release()
		o.enhance(ctx, concept, mods, kind)
	}()
	return nil
}

// enhance runs the enhancement with the in-flight slot already claimed.
func (o *Orchestrator) enhance(ctx context.Context, concept string, mods prompt.ModifierSet, kind media.Kind) {
	enhancement := o.enhancer.Enhance(ctx, concept, mods)

	result := Result{
		ID:              o.newID(),
		OriginalConcept: concept,
		EnhancedPrompt:  enhancement.EnhancedPrompt,
		Explanation:     enhancement.Explanation,
		Kind:            kind,
		State:           StateReady,
		CreatedAt:       o.now(),
	}
	o.publish(result)
}

// Generate runs the full workflow for one request: resolve the prompt
// (reusing a matching prior enhancement or re-enhancing inline), publish a
// pending snapshot, dispatch the media path, and land the same snapshot in a
// terminal state.
func (o *Orchestrator) Generate(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := o.acquire(); err != nil {
		return err
	}
	defer o.release()

	return o.generate(ctx, req)
}

// StartGenerate claims the in-flight slot synchronously and runs the
// generation on a new goroutine. Admission errors (validation, ErrBusy) are
// returned before any work starts; a nil return means the cycle was admitted
// and its outcome will arrive through the publisher.
func (o *Orchestrator) StartGenerate(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := o.acquire(); err != nil {
		return err
	}

	go func() {
		defer o.release()
		if err := o.generate(ctx, req); err != nil {
			log.Error().Err(err).Msg("Generation cycle failed")
		}
	}()
	return nil
}

// generate runs one validated generation cycle with the in-flight slot
// already claimed.
func (o *Orchestrator) generate(ctx context.Context, req Request) error {
	promptText, explanation := o.resolvePrompt(ctx, req)

	result := Result{
		ID:              o.newID(),
		OriginalConcept: req.Concept,
		EnhancedPrompt:  promptText,
		Explanation:     explanation,
		Kind:            req.Kind,
		State:           StatePending,
		CreatedAt:       o.now(),
	}
	o.publish(result)

	elevated := o.Elevated()

	var location string
	var err error
	switch req.Kind {
	case media.KindVideo:
		location, err = o.generator.GenerateVideo(ctx, promptText, req.AspectRatio, req.DurationSeconds, elevated)
	default:
		location, err = o.generator.GenerateImage(ctx, promptText, req.AspectRatio, req.Resolution, elevated)
	}

	if err != nil {
		o.handleGenerationFailure(ctx, result.ID, err)
		return err
	}

	o.complete(result.ID, location)
	return nil
}

// resolvePrompt reuses the current enhanced prompt only when its recorded
// original concept exactly matches the request; otherwise it re-enhances
// inline. The raw concept is the last-resort prompt.
func (o *Orchestrator) resolvePrompt(ctx context.Context, req Request) (promptText, explanation string) {
	o.mu.Lock()
	if o.current != nil && o.current.OriginalConcept == req.Concept && o.current.EnhancedPrompt != "" {
		promptText = o.current.EnhancedPrompt
		explanation = o.current.Explanation
		o.mu.Unlock()
		log.Debug().Msg("Reusing prior enhancement for unchanged concept")
		return promptText, explanation
	}
	o.mu.Unlock()

	enhancement := o.enhancer.Enhance(ctx, req.Concept, req.Modifiers)
	if enhancement.EnhancedPrompt == "" {
		return req.Concept, ""
	}
	return enhancement.EnhancedPrompt, enhancement.Explanation
}

// complete transitions the snapshot with the given identity to READY. A
// snapshot that is no longer current is discarded: only one generation runs
// at a time, so a mismatch means a fresh cycle has already replaced it.
func (o *Orchestrator) complete(id, location string) {
	o.mu.Lock()
	if o.current == nil || o.current.ID != id {
		o.mu.Unlock()
		log.Warn().Str("result", id).Msg("Discarding stale generation completion")
		return
	}
	updated := *o.current
	o.mu.Unlock()

	updated.MediaLocation = location
	updated.State = StateReady
	o.publish(updated)
}

// handleGenerationFailure translates an internal error into the generic
// user-facing failure, and on entitlement failures additionally revokes the
// access flag and starts the re-authorization interaction.
func (o *Orchestrator) handleGenerationFailure(ctx context.Context, id string, err error) {
	log.Error().Err(err).Str("result", id).Msg("Media generation failed")

	if media.IsEntitlementError(err) {
		o.setElevated(false)
		o.publisher.Notify(reauthMessage)
		if reqErr := o.access.RequestElevatedAccess(ctx); reqErr != nil {
			log.Error().Err(reqErr).Msg("Failed to start authorization selection")
		}
	}

	o.mu.Lock()
	if o.current == nil || o.current.ID != id {
		o.mu.Unlock()
		log.Warn().Str("result", id).Msg("Discarding stale generation failure")
		return
	}
	updated := *o.current
	o.mu.Unlock()

	updated.State = StateFailed
	updated.FailureReason = failureMessage
	o.publish(updated)
}

// acquire takes the single in-flight slot.
func (o *Orchestrator) acquire() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return ErrBusy
	}
	o.busy = true
	return nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

func (o *Orchestrator) publish(result Result) {
	o.mu.Lock()
	o.current = &result
	o.mu.Unlock()
	o.publisher.PublishResult(result)
}

func (o *Orchestrator) setElevated(elevated bool) {
	o.mu.Lock()
	changed := o.elevated != elevated
	o.elevated = elevated
	o.mu.Unlock()

	if changed {
		log.Info().Bool("elevated", elevated).Msg("Elevated access flag updated")
	}
	o.publisher.PublishAccess(elevated)
}
