package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string

	// JWTSecret verifies access tokens issued by the external identity
	// provider. The backend never issues tokens itself.
	JWTSecret string

	// DatasetSourceURL is the upstream endpoint serving the full rate
	// collection as a JSON array. Empty disables remote refresh.
	DatasetSourceURL    string
	DatasetFetchTimeout time.Duration

	AllowedOrigin string

	ResultCacheExpiry  time.Duration
	ResultCacheCleanup time.Duration

	RateLimitInterval time.Duration
	RateLimitBurst    int
}

var Cfg *AppConfig

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found. Relying on OS environment variables and defaults. Error (if any):", err)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getEnv("JWT_SECRET", "insecure-development-jwt-secret-key-minimum-32-bytes!")
	if jwtSecret == "insecure-development-jwt-secret-key-minimum-32-bytes!" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./medrates.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		JWTSecret: jwtSecret,

		DatasetSourceURL:    getEnv("DATASET_SOURCE_URL", ""),
		DatasetFetchTimeout: getEnvAsDuration("DATASET_FETCH_TIMEOUT", 2*time.Minute),

		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		ResultCacheExpiry:  getEnvAsDuration("RESULT_CACHE_EXPIRY", 15*time.Minute),
		ResultCacheCleanup: getEnvAsDuration("RESULT_CACHE_CLEANUP", 30*time.Minute),

		RateLimitInterval: getEnvAsDuration("RATE_LIMIT_INTERVAL", 100*time.Millisecond),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 30),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
