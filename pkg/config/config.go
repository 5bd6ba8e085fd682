package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	CORSAllowedOrigins []string

	// Durable store
	StorePath       string
	StoreQuotaBytes int64
	RedisURL        string

	// Mirror database
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Catalog seeding
	SeedCount int

	// Conversations
	ReplyDelay      time.Duration
	NotificationTTL time.Duration

	// Auth
	JWTSecret string

	// Generative collaborator
	GenAIEndpoint string
	GenAIKey      string
	GenAIModel    string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	quota, err := strconv.ParseInt(getEnv("STORE_QUOTA_BYTES", "5242880"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_QUOTA_BYTES: %w", err)
	}

	pgPort, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_PORT: %w", err)
	}

	seedCount, err := strconv.Atoi(getEnv("SEED_COUNT", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_COUNT: %w", err)
	}

	replyDelayMs, err := strconv.Atoi(getEnv("REPLY_DELAY_MS", "2500"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPLY_DELAY_MS: %w", err)
	}

	notificationTTLMs, err := strconv.Atoi(getEnv("NOTIFICATION_TTL_MS", "4000"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_TTL_MS: %w", err)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		StorePath:        getEnv("STORE_PATH", "./data"),
		StoreQuotaBytes:  quota,
		RedisURL:         getEnv("REDIS_URL", ""),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresUser:     getEnv("POSTGRES_USER", "fasterr"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "fasterr"),
		PostgresDB:       getEnv("POSTGRES_DB", "fasterr"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SeedCount:        seedCount,
		ReplyDelay:       time.Duration(replyDelayMs) * time.Millisecond,
		NotificationTTL:  time.Duration(notificationTTLMs) * time.Millisecond,
		JWTSecret:        getEnv("JWT_SECRET", ""),
		GenAIEndpoint:    getEnv("GENAI_ENDPOINT", ""),
		GenAIKey:         getEnv("GENAI_API_KEY", ""),
		GenAIModel:       getEnv("GENAI_MODEL", ""),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
