package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by SOULBENCH_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("SOULBENCH_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func OpenRouterAPIKey() string {
	return os.Getenv("OPENROUTER_API_KEY")
}

// OpenRouterBaseURL returns the chat completions endpoint base.
// Empty means the client's default (the public OpenRouter API).
func OpenRouterBaseURL() string {
	return os.Getenv("OPENROUTER_BASE_URL")
}

// ChatProvider returns the configured chat provider.
// Defaults to "openrouter" if not set. Valid values: openrouter, mock.
func ChatProvider() string {
	p := os.Getenv("CHAT_PROVIDER")
	if p == "" {
		return "openrouter"
	}
	return p
}

// RateLimitRPS returns the outbound requests-per-second ceiling for the
// chat client. Defaults to 0 (no client-side limit).
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps < 0 {
		return 0
	}
	return rps
}

// RateLimitBurst returns the burst size for the outbound rate limiter.
// Defaults to 10 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 10
	}
	return burst
}

// ServerPort returns the results API port. Defaults to 8080.
func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
