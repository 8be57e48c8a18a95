package config

import "os"

// SinkConfig selects where rendered charts are written
type SinkConfig struct {
	OutputDir string
	// S3 output is used instead of OutputDir when Bucket is set
	Bucket     string
	Prefix     string
	S3Endpoint string
}

// GetSinkConfig returns the sink configuration from environment variables or defaults
func GetSinkConfig() *SinkConfig {
	return &SinkConfig{
		OutputDir:  getEnvOrDefault("TIDE_OUTPUT_DIR", "."),
		Bucket:     os.Getenv("TIDE_S3_BUCKET"),
		Prefix:     os.Getenv("TIDE_S3_PREFIX"),
		S3Endpoint: os.Getenv("S3_ENDPOINT"),
	}
}
