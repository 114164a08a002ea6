package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/Bakhtawar-pk/Visionary-Studio/internal/assets"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/auth"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/config"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/logging"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/media"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/prompt"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/studio"
)

// CLI flags
var (
	kindFlag       string
	ratioFlag      string
	resolutionFlag string
	durationFlag   int
	outFlag        string
	enhanceOnly    bool

	mediumFlag   string
	styleFlag    string
	lightingFlag string
	cameraFlag   string
	moodFlag     string
)

var rootCmd = &cobra.Command{
	Use:   "studio-cli <concept>",
	Short: "One-shot concept-to-media generation",
	Long: `Studio CLI enhances a short concept into a detailed prompt and generates an
image or video from it, writing the asset to disk.

Examples:
  studio-cli "A cat in space"
  studio-cli "A cat in space" --enhance-only
  studio-cli "Neon city at night" --type video --ratio 9:16 --duration 6
  studio-cli "Mountain lake" --resolution 2K --style Minimalist --lighting "Golden Hour"`,
	Args: cobra.ExactArgs(1),
	Run:  runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&kindFlag, "type", "t", "image", "Media type: image or video")
	rootCmd.Flags().StringVar(&ratioFlag, "ratio", "1:1", "Aspect ratio: 1:1, 16:9, 9:16, 4:3, 3:4")
	rootCmd.Flags().StringVar(&resolutionFlag, "resolution", "1K", "Image resolution: 1K, 2K, 4K")
	rootCmd.Flags().IntVar(&durationFlag, "duration", media.DefaultVideoDuration, "Video duration in seconds (4-12)")
	rootCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output directory (overrides STUDIO_ASSET_DIR)")
	rootCmd.Flags().BoolVar(&enhanceOnly, "enhance-only", false, "Print the enhanced prompt without generating media")

	rootCmd.Flags().StringVar(&mediumFlag, "medium", "", "Medium modifier (e.g. Photography)")
	rootCmd.Flags().StringVar(&styleFlag, "style", "", "Style modifier (e.g. Cyberpunk)")
	rootCmd.Flags().StringVar(&lightingFlag, "lighting", "", "Lighting modifier (e.g. Golden Hour)")
	rootCmd.Flags().StringVar(&cameraFlag, "camera", "", "Camera modifier (e.g. Wide Angle)")
	rootCmd.Flags().StringVar(&moodFlag, "mood", "", "Mood modifier (e.g. Epic)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()
	cfg := config.Load()
	if outFlag != "" {
		cfg.AssetDir = outFlag
	}

	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get API key")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	store := &assets.FileStore{Dir: cfg.AssetDir}
	provider := auth.NewProbeProvider(client, media.ModelImageHigh, requestKeyDialog)

	generator := media.NewGenerator(client, apiKey, store)
	generator.SetPolling(cfg.PollInterval, cfg.PollTimeout)

	orch := studio.NewOrchestrator(
		prompt.NewEnhancer(client, cfg.EnhanceModel),
		generator,
		provider,
		consolePublisher{},
	)

	orch.RefreshAccess(ctx)

	concept := args[0]
	mods := prompt.ModifierSet{
		Medium:   mediumFlag,
		Style:    styleFlag,
		Lighting: lightingFlag,
		Camera:   cameraFlag,
		Mood:     moodFlag,
	}
	kind := media.KindImage
	if strings.EqualFold(kindFlag, "video") {
		kind = media.KindVideo
	}

	if enhanceOnly {
		if err := orch.Enhance(ctx, concept, mods, kind); err != nil {
			log.Fatal().Err(err).Msg("Enhancement failed")
		}
		result, _ := orch.Current()
		fmt.Printf("\nEnhanced prompt:\n%s\n\n%s\n", result.EnhancedPrompt, result.Explanation)
		return
	}

	req := studio.Request{
		Concept:         concept,
		Modifiers:       mods,
		Kind:            kind,
		AspectRatio:     media.AspectRatio(ratioFlag),
		Resolution:      media.ImageResolution(resolutionFlag),
		DurationSeconds: durationFlag,
	}

	if err := orch.Generate(ctx, req); err != nil {
		if errors.Is(err, studio.ErrEmptyConcept) {
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Generation failed")
	}

	result, ok := orch.Current()
	if !ok || result.State != studio.StateReady {
		log.Fatal().Msg("Generation did not produce a result")
	}

	location := result.MediaLocation
	if strings.HasPrefix(location, "data:") {
		location, err = writeDataURL(location, cfg.AssetDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to write image")
		}
	}

	fmt.Printf("\nSaved: %s\n", location)
}

// writeDataURL decodes a base64 image data URL into a file under dir.
func writeDataURL(dataURL, dir string) (string, error) {
	_, encoded, found := strings.Cut(dataURL, ";base64,")
	if !found {
		return "", fmt.Errorf("unexpected media location format")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode image data: %w", err)
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("studio-%d.png", time.Now().Unix()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// requestKeyDialog is the CLI's authorization-selection surface. The entered
// key applies to subsequent runs; this run keeps its current client.
func requestKeyDialog(ctx context.Context) error {
	key, err := zenity.Entry(
		"High-resolution images and video need an API key with billing enabled.\nPaste one to use from the next run on:",
		zenity.Title("Select API key"),
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			log.Warn().Msg("Key selection canceled")
			return nil
		}
		return err
	}
	if key != "" {
		os.Setenv("GEMINI_API_KEY", key)
		log.Info().Msg("API key selected; it takes effect on the next run")
	}
	return nil
}

// consolePublisher reports state transitions to the terminal log.
type consolePublisher struct{}

func (consolePublisher) PublishResult(result studio.Result) {
	switch result.State {
	case studio.StatePending:
		log.Info().Str("kind", string(result.Kind)).Msg("Generating...")
	case studio.StateReady:
		log.Info().Str("kind", string(result.Kind)).Msg("Generation complete")
	case studio.StateFailed:
		log.Error().Str("reason", result.FailureReason).Msg("Generation failed")
	}
}

func (consolePublisher) PublishAccess(elevated bool) {
	log.Debug().Bool("elevated", elevated).Msg("Elevated access")
}

func (consolePublisher) Notify(message string) {
	log.Warn().Msg(message)
}
