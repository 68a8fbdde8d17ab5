package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string
	TwilioWebhookSecret  string

	GeminiAPIKey      string
	GeminiModelID     string
	ClassifierTimeout time.Duration

	// OrderDishCount is how many random dishes the mock order intake attaches
	// to a synthesized order.
	OrderDishCount int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		TwilioAccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppNumber: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
		TwilioWebhookSecret:  getEnv("TWILIO_WEBHOOK_SECRET", ""),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:     getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		ClassifierTimeout: getEnvAsDuration("CLASSIFIER_TIMEOUT", 15*time.Second),

		OrderDishCount: getEnvAsInt("ORDER_DISH_COUNT", 2),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
