package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	Environment    string
	LogLevel       string

	// Google OAuth client. Empty values are allowed at boot; the auth
	// layer fails fast with a config error before any network call.
	GoogleClientID     string
	GoogleClientSecret string
	RedirectURL        string

	// Bearer token protecting the admin API surface.
	AdminAPIToken string
	// Optional property pin. When set, a connection for the global
	// scope is seeded at startup, bypassing property selection.
	GAPropertyID string
	// Secret used to sign the OAuth anti-forgery state token.
	StateSigningSecret string

	RedisURL        string
	CacheTTLSeconds int
}

// DefaultCacheTTLSeconds is used when CACHE_TTL_SECONDS is unset.
const DefaultCacheTTLSeconds = 3600

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")

	redirectURL := getEnv("REDIRECT_URL", "")
	if redirectURL == "" {
		baseURL := getEnv("BASE_URL", "http://localhost:"+port)
		redirectURL = baseURL + "/oauth/callback"
	}

	return &Config{
		Port:               port,
		AllowedOrigins:     parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		Environment:        getEnv("ENVIRONMENT", "production"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:        redirectURL,
		AdminAPIToken:      getEnv("ADMIN_API_TOKEN", ""),
		GAPropertyID:       getEnv("GA_PROPERTY_ID", ""),
		StateSigningSecret: getEnv("STATE_SIGNING_SECRET", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		CacheTTLSeconds:    getIntEnv("CACHE_TTL_SECONDS", DefaultCacheTTLSeconds),
	}, nil
}

// HasGoogleCredentials reports whether an OAuth client is configured.
func (c *Config) HasGoogleCredentials() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
