// Package config snapshots environment configuration at startup.
// A .env file, when present, is loaded by the caller via godotenv
// before Load runs.
package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Server
	Port         string
	DatabasePath string
	SentryDSN    string

	// External providers
	OpenWeatherAPIKey string
	GeminiAPIKey      string
	GroqAPIKey        string

	// SMTP delivery. MockEmail switches the sender to log-only mode.
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	EmailFrom string
	MockEmail bool
}

// Load reads configuration from the environment with dev-friendly
// defaults. Missing provider keys are not fatal here; the components
// that need them report ErrConfig at call time.
func Load() Config {
	return Config{
		Port:              getEnv("PORT", "8080"),
		DatabasePath:      getEnv("DATABASE_PATH", "aircast.db"),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPass:          os.Getenv("SMTP_PASS"),
		EmailFrom:         getEnv("EMAIL_FROM", "alerts@aircast.local"),
		MockEmail:         os.Getenv("MOCK_EMAIL") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
