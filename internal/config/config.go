package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath  string
	AdminAPIToken string
	LogLevel      string
	Port          string
}

func Load() (Config, error) {
	// A missing .env is fine; env vars win either way.
	_ = godotenv.Load()

	config := Config{
		DatabasePath:  envOrDefault("DATABASE_PATH", "./data/temple-keepers.db"),
		AdminAPIToken: os.Getenv("ADMIN_API_TOKEN"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		Port:          envOrDefault("PORT", "8080"),
	}

	return config, nil
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
