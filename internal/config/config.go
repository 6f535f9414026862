package config

import (
	"os"
	"strconv"
	"strings"

	"seodash/internal/errors"
)

// Mirror drivers
const (
	MirrorSQLite   = "sqlite"
	MirrorPostgres = "postgres"
	MirrorNone     = "none"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Mirror        MirrorConfig
	Upload        UploadConfig
	SearchConsole SearchConsoleConfig
	Notifications NotificationConfig
	LogLevel      string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// MirrorConfig selects the durable mirror behind the store
type MirrorConfig struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
}

// UploadConfig bounds accepted uploads
type UploadConfig struct {
	MaxBytes int64
}

// SearchConsoleConfig holds the Google OAuth client and report settings
type SearchConsoleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	RowLimit     int
}

// Enabled reports whether OAuth credentials are configured
func (c SearchConsoleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// NotificationConfig holds the notification feed settings
type NotificationConfig struct {
	History int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:        *loadServerConfig(),
		Upload:        *loadUploadConfig(),
		SearchConsole: *loadSearchConsoleConfig(),
		Notifications: NotificationConfig{History: getEnvIntOrDefault("NOTIFICATION_HISTORY", 50)},
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	mirrorConfig, err := loadMirrorConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load mirror configuration")
	}
	config.Mirror = *mirrorConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadMirrorConfig() (*MirrorConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("MIRROR_DRIVER", MirrorSQLite))

	config := &MirrorConfig{
		Driver:      driver,
		SQLitePath:  getEnvOrDefault("SQLITE_PATH", "seodash.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	switch driver {
	case MirrorSQLite, MirrorNone:
	case MirrorPostgres:
		if config.DatabaseURL == "" {
			return nil, errors.ConfigInvalid("DATABASE_URL is required when MIRROR_DRIVER is postgres")
		}
	default:
		return nil, errors.ConfigInvalid("unknown MIRROR_DRIVER " + strconv.Quote(driver))
	}
	return config, nil
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 50)) * 1024 * 1024,
	}
}

func loadSearchConsoleConfig() *SearchConsoleConfig {
	return &SearchConsoleConfig{
		ClientID:     getEnvOrDefault("GOOGLE_CLIENT_ID", ""),
		ClientSecret: getEnvOrDefault("GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:  getEnvOrDefault("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		RowLimit:     getEnvIntOrDefault("SEARCH_CONSOLE_ROW_LIMIT", 1000),
	}
}

func validateConfig(config *Config) error {
	if config.Upload.MaxBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.SearchConsole.RowLimit <= 0 || config.SearchConsole.RowLimit > 25000 {
		return errors.ConfigInvalid("SEARCH_CONSOLE_ROW_LIMIT must be between 1 and 25000")
	}
	if config.Notifications.History <= 0 {
		return errors.ConfigInvalid("NOTIFICATION_HISTORY must be positive")
	}
	if (config.SearchConsole.ClientID == "") != (config.SearchConsole.ClientSecret == "") {
		return errors.ConfigInvalid("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
