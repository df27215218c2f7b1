package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIPort        string
	APIHost        string
	APIEnvironment string

	// Redis (optional; activity feed persistence)
	RedisURL string

	// Rate Limiting
	RateLimitRequestsPerMinute int
	RateLimitBurst             int

	// OpenAI
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAITemperature float64
	OpenAIMaxTokens   int

	// SendGrid
	SendGridAPIKey string
	EmailFrom      string
	EmailFromName  string

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePricePremium  string
	StripeSuccessURL    string
	StripeCancelURL     string

	// Telephony
	VonageAPIKey        string
	VonageAPISecret     string
	VonageApplicationID string
	VonageFromNumber    string
	AppURL              string
	WSURL               string
	CallTimeout         time.Duration

	// Dialer pacing (the [2,4], [3,6], [2,5] windows from the simulation)
	PacingUnit time.Duration

	// Platform state
	PlatformDataFile string
	DefaultRegion    string

	// Exports
	ExportPath string

	// Sentry
	SentryDSN         string
	SentryEnvironment string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		// API
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIEnvironment: getEnv("API_ENVIRONMENT", "development"),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Rate Limiting
		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 10),

		// OpenAI
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4-turbo-preview"),
		OpenAITemperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),
		OpenAIMaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 2000),

		// SendGrid
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", "noreply@outreach.local"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Outreach Assistant"),

		// Stripe
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePricePremium:  getEnv("STRIPE_PRICE_PREMIUM", ""),
		StripeSuccessURL:    getEnv("STRIPE_SUCCESS_URL", "http://localhost:3001/billing/success"),
		StripeCancelURL:     getEnv("STRIPE_CANCEL_URL", "http://localhost:3001/billing/cancel"),

		// Telephony
		VonageAPIKey:        getEnv("VONAGE_API_KEY", ""),
		VonageAPISecret:     getEnv("VONAGE_API_SECRET", ""),
		VonageApplicationID: getEnv("VONAGE_APPLICATION_ID", ""),
		VonageFromNumber:    getEnv("VONAGE_FROM_NUMBER", ""),
		AppURL:              getEnv("APP_URL", "http://localhost:8080"),
		WSURL:               getEnv("WS_URL", "ws://localhost:8080"),
		CallTimeout:         getEnvAsDuration("CALL_TIMEOUT", 10*time.Second),

		// Dialer
		PacingUnit: getEnvAsDuration("DIALER_PACING_UNIT", time.Second),

		// Platform
		PlatformDataFile: getEnv("PLATFORM_DATA_FILE", "platform_data.json"),
		DefaultRegion:    getEnv("DEFAULT_PHONE_REGION", "US"),

		// Exports
		ExportPath: getEnv("EXPORT_PATH", "./data/exports"),

		// Sentry
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "development"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
