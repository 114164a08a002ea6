package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// DefaultPollInterval is the fixed delay between video operation status checks.
const DefaultPollInterval = 5 * time.Second

// DefaultPollTimeout bounds the total time spent waiting for one video
// operation. The service itself imposes no bound.
const DefaultPollTimeout = 10 * time.Minute

// BlobStore turns fetched media bytes into a locally-dereferenceable
// location. Implementations decide whether that is a served URL or a file
// path.
type BlobStore interface {
	Put(data []byte, mimeType string) (string, error)
}

// contentModels is the slice of the Gemini client used for image generation
// and video job creation. *genai.Models satisfies it.
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateVideos(ctx context.Context, model string, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
}

// videoOperations polls long-running video jobs. *genai.Operations satisfies it.
type videoOperations interface {
	GetVideosOperation(ctx context.Context, operation *genai.GenerateVideosOperation, config *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error)
}

// Generator dispatches prompts to the image and video models. It holds no
// per-request state; every call is an independent request/response exchange
// that either returns a media location or propagates an error. Unlike prompt
// enhancement there is no fallback: a missing asset has no sensible default.
type Generator struct {
	models     contentModels
	operations videoOperations
	store      BlobStore
	apiKey     string

	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	sleep        func(time.Duration)
}

// NewGenerator builds a Generator. apiKey is attached to video download URLs,
// which are not servable without credentials. store receives fetched video
// bytes.
func NewGenerator(client *genai.Client, apiKey string, store BlobStore) *Generator {
	return &Generator{
		models:     client.Models,
		operations: client.Operations,
		store:      store,
		apiKey:     apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		pollInterval: DefaultPollInterval,
		pollTimeout:  DefaultPollTimeout,
		sleep:        time.Sleep,
	}
}

// SetPolling overrides the video poll interval and deadline. Zero values keep
// the current settings.
func (g *Generator) SetPolling(interval, timeout time.Duration) {
	if interval > 0 {
		g.pollInterval = interval
	}
	if timeout > 0 {
		g.pollTimeout = timeout
	}
}

// GenerateImage generates one image and returns it as a self-contained
// data URL. Resolution selects the tier: 1K routes to the standard model,
// 2K and 4K route to the high-quality model with an explicit size parameter.
// The high-quality tier requires elevated access.
func (g *Generator) GenerateImage(ctx context.Context, prompt string, ratio AspectRatio, res ImageResolution, elevated bool) (string, error) {
	highRes := res == ResolutionHigh || res == ResolutionUltra

	model := ModelImageStandard
	if highRes {
		model = ModelImageHigh
	}
	if highRes && !elevated {
		return "", &EntitlementError{Model: model}
	}

	imageConfig := &genai.ImageConfig{
		AspectRatio: string(ratio),
	}
	// The standard tier does not accept a size override.
	if highRes {
		imageConfig.ImageSize = string(res)
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
		ImageConfig:        imageConfig,
	}
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}

	log.Info().
		Str("model", model).
		Str("aspect_ratio", string(ratio)).
		Str("resolution", string(res)).
		Msg("Generating image")

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		log.Error().Err(err).Str("model", model).Msg("Image generation failed")
		return "", classifyGenerationError(model, err)
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				log.Info().
					Int("bytes", len(part.InlineData.Data)).
					Dur("duration", time.Since(start)).
					Msg("Image generated")
				return "data:image/png;base64," + base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
			}
		}
	}

	return "", fmt.Errorf("no image data returned")
}

// GenerateVideo generates one video and returns its stored location. Video
// generation always runs on the elevated tier; the requested ratio is mapped
// onto 16:9 or 9:16 by the fixed policy in MapVideoAspect. The call starts a
// long-running job which is polled to completion, then the finished asset is
// fetched and handed to the blob store.
func (g *Generator) GenerateVideo(ctx context.Context, prompt string, ratio AspectRatio, durationSeconds int, elevated bool) (string, error) {
	if !elevated {
		return "", &EntitlementError{Model: ModelVideo}
	}

	config := &genai.GenerateVideosConfig{
		NumberOfVideos:  1,
		AspectRatio:     MapVideoAspect(ratio),
		Resolution:      videoResolution,
		DurationSeconds: genai.Ptr(int32(durationSeconds)),
	}

	log.Info().
		Str("model", ModelVideo).
		Str("aspect_ratio", config.AspectRatio).
		Int("duration_seconds", durationSeconds).
		Msg("Starting video generation")

	start := time.Now()
	op, err := g.models.GenerateVideos(ctx, ModelVideo, prompt, nil, config)
	if err != nil {
		log.Error().Err(err).Str("model", ModelVideo).Msg("Failed to start video generation")
		return "", classifyGenerationError(ModelVideo, err)
	}

	op, err = g.pollVideoOperation(ctx, op)
	if err != nil {
		return "", err
	}

	if op.Error != nil {
		return "", fmt.Errorf("video generation failed: %v", op.Error)
	}

	uri := videoURI(op)
	if uri == "" {
		return "", fmt.Errorf("no video URI returned")
	}

	data, err := g.fetchVideo(ctx, uri)
	if err != nil {
		return "", err
	}

	location, err := g.store.Put(data, "video/mp4")
	if err != nil {
		return "", fmt.Errorf("failed to store video: %w", err)
	}

	log.Info().
		Int("bytes", len(data)).
		Str("location", location).
		Dur("duration", time.Since(start)).
		Msg("Video generated")

	return location, nil
}

// pollVideoOperation re-fetches the job status at the fixed poll interval
// until the job reports completion or the poll deadline passes.
func (g *Generator) pollVideoOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	deadline := time.Now().Add(g.pollTimeout)
	iteration := 0

	for !op.Done {
		if time.Now().After(deadline) {
			log.Error().
				Str("operation", op.Name).
				Int("poll_iterations", iteration).
				Msg("Video operation did not complete before deadline")
			return nil, fmt.Errorf("%w after %v", ErrPollTimeout, g.pollTimeout)
		}

		iteration++
		log.Debug().
			Str("operation", op.Name).
			Int("poll_iteration", iteration).
			Msg("Video still generating, waiting...")

		g.sleep(g.pollInterval)

		var err error
		op, err = g.operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, classifyGenerationError(ModelVideo, fmt.Errorf("failed to poll video operation: %w", err))
		}
	}

	return op, nil
}

// videoURI extracts the download URI from a completed operation, or "".
func videoURI(op *genai.GenerateVideosOperation) string {
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return ""
	}
	video := op.Response.GeneratedVideos[0].Video
	if video == nil {
		return ""
	}
	return video.URI
}

// fetchVideo downloads the finished asset. The returned URI is not servable
// as-is: the API key must be attached as a query parameter.
func (g *Generator) fetchVideo(ctx context.Context, uri string) ([]byte, error) {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri+sep+"key="+g.apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create video download request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download video: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read video body: %w", err)
	}
	return data, nil
}
