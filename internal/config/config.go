package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// HTTP
	HTTPHost string
	HTTPPort string

	// Database
	DBURL      string
	DBUser     string
	DBPass     string
	DBPoolSize int

	// Redis (optional; enables event publishing and the ws endpoint)
	RedisURL string

	// Security
	JWTSecret     string
	JWTTTLMinutes int

	// Kernel
	AskTimeoutSeconds   int
	SupervisorStashSize int
}

// Load reads configuration from the environment, with .env support.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Environment: getEnv("APP_ENV", "development"),

		HTTPHost: getEnv("HTTP_HOST", "0.0.0.0"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DBURL:      getEnv("DB_URL", "postgres://localhost:5432/gameservice?sslmode=disable"),
		DBUser:     getEnv("DB_USER", ""),
		DBPass:     getEnv("DB_PASS", ""),
		DBPoolSize: getEnvInt("DB_POOL_SIZE", 25),

		RedisURL: getEnv("REDIS_URL", ""),

		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 24*60),

		AskTimeoutSeconds:   getEnvInt("ASK_TIMEOUT_SECONDS", 3),
		SupervisorStashSize: getEnvInt("SUPERVISOR_STASH_SIZE", 128),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
