package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabaseURL      string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	EncryptionKey    string
	TrackerBaseURL   string

	// OAuth app credentials for the tracker "connect" flow. Optional:
	// workspaces can also be connected with a personal API token.
	TrackerClientID     string
	TrackerClientSecret string
	TrackerAuthURL      string
	TrackerTokenURL     string
	TrackerRedirectURI  string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 168 * time.Hour // 7 days
	if exp := os.Getenv("JWT_REFRESH_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         getEnv("DATABASE_URL", "host=localhost user=boardpulse password=boardpulse dbname=boardpulse port=5432 sslmode=disable"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:     accessExpiry,
		JWTRefreshExpiry:    refreshExpiry,
		EncryptionKey:       getEnv("ENCRYPTION_KEY", ""),
		TrackerBaseURL:      getEnv("TRACKER_BASE_URL", "https://api.tracker.example/v2"),
		TrackerClientID:     getEnv("TRACKER_CLIENT_ID", ""),
		TrackerClientSecret: getEnv("TRACKER_CLIENT_SECRET", ""),
		TrackerAuthURL:      getEnv("TRACKER_AUTH_URL", "https://app.tracker.example/oauth/authorize"),
		TrackerTokenURL:     getEnv("TRACKER_TOKEN_URL", "https://api.tracker.example/v2/oauth/token"),
		TrackerRedirectURI:  getEnv("TRACKER_REDIRECT_URI", "http://localhost:8080/api/workspaces/oauth/callback"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
