// Package config loads server and generation settings from the environment,
// with an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds every runtime setting for Visionary Studio.
type Config struct {
	// Port is the studio-web listen port.
	Port int

	// EnhanceModel is the Gemini model used for prompt enhancement.
	EnhanceModel string

	// PollInterval is the delay between Veo operation status checks.
	PollInterval time.Duration

	// PollTimeout bounds the total time spent polling one video operation.
	PollTimeout time.Duration

	// AssetDir is where studio-cli writes generated media.
	AssetDir string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables only")
	}

	return &Config{
		Port:         getInt("STUDIO_PORT", 8080),
		EnhanceModel: getEnv("STUDIO_ENHANCE_MODEL", ""),
		PollInterval: getDuration("STUDIO_POLL_INTERVAL", 5*time.Second),
		PollTimeout:  getDuration("STUDIO_POLL_TIMEOUT", 10*time.Minute),
		AssetDir:     getEnv("STUDIO_ASSET_DIR", "."),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer in environment, using default")
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid duration in environment, using default")
	}
	return fallback
}
