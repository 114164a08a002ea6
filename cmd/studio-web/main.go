package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

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
	portFlag  int
	modelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "studio-web",
	Short: "Web UI for concept-to-media generation",
	Long: `Studio Web starts a local server that turns a short concept into a refined
prompt and then into a generated image or video. The editor issues enhance and
generate actions over HTTP; results and the authorization flag stream back
over a WebSocket.

Examples:
  studio-web
  studio-web --port 9090
  studio-web --enhance-model gemini-2.5-flash`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides STUDIO_PORT)")
	rootCmd.Flags().StringVarP(&modelFlag, "enhance-model", "m", "", "Gemini model for prompt enhancement")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()
	cfg := config.Load()
	if portFlag != 0 {
		cfg.Port = portFlag
	}
	if modelFlag != "" {
		cfg.EnhanceModel = modelFlag
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

	store := assets.NewMemoryStore()
	wsHub := newHub()
	provider := auth.NewProbeProvider(client, media.ModelImageHigh, wsHub.RequestKeySelection)

	generator := media.NewGenerator(client, apiKey, store)
	generator.SetPolling(cfg.PollInterval, cfg.PollTimeout)

	orch := studio.NewOrchestrator(
		prompt.NewEnhancer(client, cfg.EnhanceModel),
		generator,
		provider,
		wsHub,
	)

	// Startup refresh of the elevated-access flag; focus-regained refreshes
	// arrive via POST /api/access/refresh.
	go orch.RefreshAccess(ctx)

	srv := &server{orch: orch, store: store, hub: wsHub}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", srv.handleState)
	mux.HandleFunc("/api/options", srv.handleOptions)
	mux.HandleFunc("/api/enhance", srv.handleEnhance)
	mux.HandleFunc("/api/generate", srv.handleGenerate)
	mux.HandleFunc("/api/access/refresh", srv.handleAccessRefresh)
	mux.HandleFunc("/api/access/select", srv.handleAccessSelect)
	mux.HandleFunc("/assets/", srv.handleAsset)
	mux.HandleFunc("/ws", wsHub.handleWS)

	handler := withLogging(withCORS(mux))

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Int("port", cfg.Port).Msg("Starting studio server")
	fmt.Printf("\n  Visionary Studio: http://localhost:%d\n\n", cfg.Port)

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// --- Middleware ---

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("API request")
		}
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Local tool: only localhost origins are allowed.
		origin := r.Header.Get("Origin")
		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
