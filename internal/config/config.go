package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Sync    SyncConfig
	CORS    CORSConfig
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// StorageConfig holds the resolved storage locations. DataDir is the
// single authoritative storage root; it is validated once at startup
// rather than re-derived per call.
type StorageConfig struct {
	DataDir string
	LogDir  string
}

// SyncConfig holds tunables for the sync orchestrator.
type SyncConfig struct {
	FetchTimeout  time.Duration
	LookbackYears int
}

// CORSConfig holds CORS-specific configuration.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Storage: StorageConfig{
			DataDir: dataDir,
			LogDir:  getEnv("LOG_DIR", filepath.Join(dataDir, "logs")),
		},
		Sync: SyncConfig{
			FetchTimeout:  time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
			LookbackYears: getEnvInt("LOOKBACK_YEARS", 15),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
	}

	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a
// default value. Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
