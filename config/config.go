package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration (vote count push)
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Payment provider configuration
	PaymentProvider       string // "paystack" or "simulated"
	PaystackBaseURL       string
	PaystackSecretKey     string
	PaystackWebhookSecret string
	Currency              string

	// Simulated provider (development) notification channel
	SimulatorSubscribeKey string
	SimulatorChannel      string

	// Webhook idempotency guard
	WebhookGuardTTL time.Duration

	// Rate limiting
	CheckInRateLimit  int64
	CheckInRateWindow time.Duration
	VoteRateLimit     int64
	VoteRateWindow    time.Duration

	// Monitoring
	EnableMetrics   bool
	MetricsInterval time.Duration
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Payments
		PaymentProvider:       getEnv("PAYMENT_PROVIDER", "simulated"),
		PaystackBaseURL:       getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		PaystackSecretKey:     getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackWebhookSecret: getEnv("PAYSTACK_WEBHOOK_SECRET", ""),
		Currency:              getEnv("CURRENCY", "GHS"),

		// Simulator
		SimulatorSubscribeKey: getEnv("SIMULATOR_SUBSCRIBE_KEY", ""),
		SimulatorChannel:      getEnv("SIMULATOR_CHANNEL", "payment-simulator"),

		// Webhooks
		WebhookGuardTTL: getEnvAsDuration("WEBHOOK_GUARD_TTL", "1h"),

		// Rate limits
		CheckInRateLimit:  int64(getEnvAsInt("CHECKIN_RATE_LIMIT", 60)),
		CheckInRateWindow: getEnvAsDuration("CHECKIN_RATE_WINDOW", "1m"),
		VoteRateLimit:     int64(getEnvAsInt("VOTE_RATE_LIMIT", 30)),
		VoteRateWindow:    getEnvAsDuration("VOTE_RATE_WINDOW", "1m"),

		// Monitoring
		EnableMetrics:   getEnvAsBool("ENABLE_METRICS", true),
		MetricsInterval: getEnvAsDuration("METRICS_INTERVAL", "30s"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
