// Package config loads runtime settings from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds runtime configuration for the reporting service.
type Config struct {
	Environment    string
	LogLevel       string
	MongoURI       string
	MongoDatabase  string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CacheTTL       time.Duration
	StorageTimeout time.Duration
}

// Load constructs a Config from environment variables.
func Load() Config {
	return Config{
		Environment:    GetString("APP_ENV", "development"),
		LogLevel:       GetString("LOG_LEVEL", "info"),
		MongoURI:       GetString("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  GetString("MONGO_DATABASE", "irsolutions"),
		RedisAddr:      GetString("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  GetString("REDIS_PASSWORD", ""),
		RedisDB:        GetInt("REDIS_DB", 0),
		CacheTTL:       time.Duration(GetInt("CACHE_TTL_SECONDS", 600)) * time.Second,
		StorageTimeout: time.Duration(GetInt("STORAGE_TIMEOUT_SECONDS", 5)) * time.Second,
	}
}

// GetString retrieves an environment variable or returns a fallback when unset.
func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetInt retrieves an environment variable as integer or returns fallback.
func GetInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("invalid value for %s: %v", key, err)
			return fallback
		}
		return parsed
	}
	return fallback
}
