package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings for the service. Everything comes from
// environment variables with sensible defaults.
type Config struct {
	Port string
	Host string

	FetchTimeout time.Duration

	// Cron spec (with seconds field) for the periodic price sweep.
	CheckSchedule string

	// Tuned selection heuristic: prefer the second listed price for
	// electronics-like products. Off means always take the first.
	PreferSecondForElectronics bool

	ClassificationThreshold int
	NegativeKeywordPenalty  int

	RateLimitPerSecond float64
	AllowedOrigins     string
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:                       getEnv("PORT", "8080"),
		Host:                       getEnv("HOST", "0.0.0.0"),
		FetchTimeout:               getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		CheckSchedule:              getEnv("CHECK_SCHEDULE", "0 0 */12 * * *"),
		PreferSecondForElectronics: getEnvBool("PREFER_SECOND_FOR_ELECTRONICS", true),
		ClassificationThreshold:    getEnvInt("CLASSIFICATION_THRESHOLD", 10),
		NegativeKeywordPenalty:     getEnvInt("NEGATIVE_KEYWORD_PENALTY", 15),
		RateLimitPerSecond:         getEnvFloat("RATE_LIMIT_PER_SECOND", 5),
		AllowedOrigins:             getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
