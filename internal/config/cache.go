package config

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// LRU Cache settings
	LRUSize int

	// DynamoDB Cache settings
	EnableDynamoCache bool
	DynamoTable       string
	DynamoEndpoint    string

	// JSON file cache, disabled when empty
	FilePath string
}

const (
	defaultLRUSize     = 256
	defaultDynamoTable = "tide-chart-predictions"
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		LRUSize:           getEnvInt("CACHE_LRU_SIZE", defaultLRUSize),
		EnableDynamoCache: getEnvBool("CACHE_ENABLE_DYNAMO", false),
		DynamoTable:       getEnvOrDefault("CACHE_DYNAMO_TABLE", defaultDynamoTable),
		DynamoEndpoint:    os.Getenv("DYNAMODB_ENDPOINT"),
		FilePath:          os.Getenv("CACHE_FILE_PATH"),
	}

	log.Debug().
		Int("LRUSize", config.LRUSize).
		Bool("EnableDynamoCache", config.EnableDynamoCache).
		Str("DynamoTable", config.DynamoTable).
		Str("FilePath", config.FilePath).
		Msg("Cache configuration loaded")

	return config
}

// Helper functions to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
