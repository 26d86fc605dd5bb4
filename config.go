package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config is loaded once at startup and immutable for the process lifetime.
type Config struct {
	DatabasePath  string
	Port          string
	StoragePath   string
	ClientOrigins []string
	LogLevel      string
	Environment   string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	config := &Config{}

	config.DatabasePath = os.Getenv("SQLITE_DB")
	if config.DatabasePath == "" {
		return nil, fmt.Errorf("SQLITE_DB environment variable is required")
	}

	config.Port = getEnvWithDefault("PORT", "8000")
	config.StoragePath = getEnvWithDefault("STORAGE_PATH", "./storage")
	config.LogLevel = getEnvWithDefault("LOG_LEVEL", "INFO")
	config.Environment = getEnvWithDefault("ENVIRONMENT", "development")

	for _, origin := range strings.Split(getEnvWithDefault("CLIENT_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			config.ClientOrigins = append(config.ClientOrigins, origin)
		}
	}

	return config, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
