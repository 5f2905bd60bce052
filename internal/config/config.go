// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	DocDB   DocDBConfig
	Cache   CacheConfig
	Chatbot ChatbotConfig
	Log     LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host    string
	Port    int
	GinMode string
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DocDBConfig holds document database configuration.
type DocDBConfig struct {
	URI      string
	Database string
}

// CacheConfig holds cache-related configuration.
type CacheConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// ChatbotConfig holds response-engine tunables.
type ChatbotConfig struct {
	// HistoryLimit is how many recent turns feed the conversation context.
	HistoryLimit int64
	// FeedbackSampleRate shows the feedback prompt every Nth message when
	// no other rule forces it.
	FeedbackSampleRate int64
	// PlatformName is substituted for the {platform} placeholder.
	PlatformName string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvAsInt("SERVER_PORT", 8080),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		DocDB: DocDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "crewhub"),
		},
		Cache: CacheConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Chatbot: ChatbotConfig{
			HistoryLimit:       int64(getEnvAsInt("CHATBOT_HISTORY_LIMIT", 5)),
			FeedbackSampleRate: int64(getEnvAsInt("CHATBOT_FEEDBACK_SAMPLE_RATE", 5)),
			PlatformName:       getEnv("CHATBOT_PLATFORM_NAME", "CrewHub"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
