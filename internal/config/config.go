package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port            string
	ServiceName     string
	Version         string
	ShutdownTimeout Duration
	// AdminToken guards the /admin routes; they are not mounted when empty.
	AdminToken string
	Log        LogConfig
	Inventory  InventoryConfig
	Notify     NotifyConfig
	Metrics    MetricsConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	metrics := loadMetrics()
	return Config{
		Port:            envOrDefault(envPort, defaultPort),
		ServiceName:     metrics.ServiceName,
		Version:         envOrDefault(envServiceVersion, defaultServiceVersion),
		ShutdownTimeout: durationEnvOrDefault(envShutdownTimeout, defaultShutdownTimeout),
		AdminToken:      envOrDefault(envAdminToken, ""),
		Log:             loadLog(),
		Inventory:       loadInventory(),
		Notify:          loadNotify(),
		Metrics:         metrics,
	}
}

// LoadDotEnv loads variables from the given .env files (or ./.env) without overriding the
// environment. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
