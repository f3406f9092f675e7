// Package config loads configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all client-side configuration values.
type Config struct {
	// Gateway endpoint the client talks to
	GatewayURL string

	// Product catalog source: an http(s) URL or a local file path
	CatalogURL string

	// Model requested from the gateway
	Model string

	// Directory for durable client state (saved selection)
	DataDir string

	// Upper bound for a single gateway round-trip
	RequestTimeout time.Duration

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// GatewayConfig holds configuration for the proxy gateway.
type GatewayConfig struct {
	Addr string

	// Provider selects the upstream adapter. The credential is read from
	// GATEWAY_API_KEY regardless of which provider it belongs to; provider
	// identity and credential naming stay independent.
	Provider      string
	APIKey        string
	UpstreamURL   string
	DefaultModel  string
	ProvidersFile string

	// Local provider
	OllamaHost  string
	OllamaModel string

	// Bedrock provider
	AWSRegion string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads client configuration from environment variables.
func Load() Config {
	return Config{
		GatewayURL:     getEnv("ROUTINELY_GATEWAY_URL", "http://localhost:8787/"),
		CatalogURL:     getEnv("ROUTINELY_CATALOG_URL", "products.json"),
		Model:          getEnv("ROUTINELY_MODEL", "gpt-4o"),
		DataDir:        getEnv("ROUTINELY_DATA_DIR", defaultDataDir()),
		RequestTimeout: parseDuration(getEnv("ROUTINELY_TIMEOUT", "2m")),
		LogFile:        getEnv("ROUTINELY_LOG_FILE", ""),
		LogLevel:       parseLogLevel(getEnv("ROUTINELY_LOG_LEVEL", "INFO")),
	}
}

// LoadGateway reads gateway configuration from environment variables.
func LoadGateway() GatewayConfig {
	return GatewayConfig{
		Addr:          getEnv("GATEWAY_ADDR", ":8787"),
		Provider:      getEnv("GATEWAY_PROVIDER", "openai"),
		APIKey:        os.Getenv("GATEWAY_API_KEY"),
		UpstreamURL:   os.Getenv("GATEWAY_UPSTREAM_URL"),
		DefaultModel:  os.Getenv("GATEWAY_DEFAULT_MODEL"),
		ProvidersFile: os.Getenv("GATEWAY_PROVIDERS_FILE"),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:   getEnv("GATEWAY_OLLAMA_MODEL", "llama3.1"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		LogFile:       getEnv("GATEWAY_LOG_FILE", ""),
		LogLevel:      parseLogLevel(getEnv("GATEWAY_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

// defaultDataDir returns the per-user data directory for saved state,
// honoring XDG_DATA_HOME.
func defaultDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "routinely")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "routinely-data"
	}
	return filepath.Join(homeDir, ".local", "share", "routinely")
}
