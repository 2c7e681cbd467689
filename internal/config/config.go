package config

import (
	"os"
	"strconv"

	"pdf-webp-converter/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort         string
	SpoolPath          string
	MaxFileSize        int64
	LogLevel           string
	LargeFileThreshold int64
	MaxPagesPerRun     int
	PageEstimateFactor float64
	DefaultBatchSize   int
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:         getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		SpoolPath:          getEnvOrDefault("SPOOL_PATH", os.TempDir()),
		MaxFileSize:        getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LargeFileThreshold: getEnvInt64OrDefault("LARGE_FILE_THRESHOLD", 2*1024*1024), // 2MB: above this, one page at a time
		MaxPagesPerRun:     getEnvIntOrDefault("MAX_PAGES_PER_RUN", 50),
		PageEstimateFactor: getEnvFloatOrDefault("PAGE_ESTIMATE_FACTOR", 2.0),
		DefaultBatchSize:   getEnvIntOrDefault("DEFAULT_BATCH_SIZE", 3),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetSpoolPath returns the directory used for disk-spooled page buffers
func (c *AppConfig) GetSpoolPath() string {
	return c.SpoolPath
}

// GetMaxFileSize returns the maximum allowed upload size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetLargeFileThreshold returns the size above which a document is
// processed one page at a time and spooled to disk
func (c *AppConfig) GetLargeFileThreshold() int64 {
	return c.LargeFileThreshold
}

// GetMaxPagesPerRun returns the safety ceiling on pages per conversion run
func (c *AppConfig) GetMaxPagesPerRun() int {
	return c.MaxPagesPerRun
}

// GetPageEstimateFactor returns the pages-per-megabyte heuristic factor
func (c *AppConfig) GetPageEstimateFactor() float64 {
	return c.PageEstimateFactor
}

// GetDefaultBatchSize returns the default rasterization batch size
func (c *AppConfig) GetDefaultBatchSize() int {
	return c.DefaultBatchSize
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
