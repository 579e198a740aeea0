package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries all runtime settings, loaded from the environment.
type Config struct {
	HTTPAddr string

	RedisAddr     string
	RedisDB       int
	WorkerCount   int
	MaxAttempts   int
	RetryBaseWait time.Duration
	RetryMaxWait  time.Duration

	BotName     string
	GitHubToken string

	DiffTool string
	DataDir  string

	// ContactCooldown is the minimum time between two notifications to the
	// same person.
	ContactCooldown time.Duration

	// VacuumAge is how old an irrelevant commit must be before vacuum
	// deletes it.
	VacuumAge time.Duration
}

// Load reads configuration from environment variables with sensible
// fallbacks for local development.
func Load() Config {
	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		WorkerCount:     getEnvInt("WORKER_COUNT", 4),
		MaxAttempts:     getEnvInt("QUEUE_MAX_ATTEMPTS", 5),
		RetryBaseWait:   getEnvDuration("QUEUE_RETRY_BASE", 2*time.Second),
		RetryMaxWait:    getEnvDuration("QUEUE_RETRY_MAX", 5*time.Minute),
		BotName:         getEnv("BOT_NAME", "typetrace"),
		GitHubToken:     getEnv("GITHUB_TOKEN", ""),
		DiffTool:        getEnv("DIFF_TOOL", "gumtree"),
		DataDir:         getEnv("DATA_DIR", "/var/lib/typetrace/repos"),
		ContactCooldown: getEnvDuration("CONTACT_COOLDOWN", 14*24*time.Hour),
		VacuumAge:       getEnvDuration("VACUUM_AGE", 36*time.Hour),
	}
}

// Helper function to fetch environment variables with a fallback value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
