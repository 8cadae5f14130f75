package config

import (
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Record store
	StoreDriver    string `mapstructure:"STORE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"` // sqlite file path or postgres DSN
	RedisURL       string `mapstructure:"REDIS_URL"`
	RedisKeyPrefix string `mapstructure:"REDIS_KEY_PREFIX"`

	// Auth
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	SessionHours int    `mapstructure:"SESSION_HOURS"`

	// Business
	SettingsPath          string `mapstructure:"SETTINGS_PATH"`
	BackupDir             string `mapstructure:"BACKUP_DIR"`
	BackupIntervalMinutes int    `mapstructure:"BACKUP_INTERVAL_MINUTES"`
	BackupKeep            int    `mapstructure:"BACKUP_KEEP"`
	ReceiptStoragePath    string `mapstructure:"RECEIPT_STORAGE_PATH"`
}

// BackupInterval is BackupIntervalMinutes as a duration; zero disables
// the backup worker.
func (c *Config) BackupInterval() time.Duration {
	return time.Duration(c.BackupIntervalMinutes) * time.Minute
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("STORE_DRIVER", DriverSQLite)
	viper.SetDefault("DATABASE_URL", "./pharmacy.db")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("REDIS_KEY_PREFIX", "pharmacy")
	viper.SetDefault("JWT_SECRET", "dev-secret-change-me")
	viper.SetDefault("SESSION_HOURS", 24)
	viper.SetDefault("SETTINGS_PATH", "./pharmacy-settings.json")
	viper.SetDefault("BACKUP_DIR", "./backups")
	viper.SetDefault("BACKUP_INTERVAL_MINUTES", 60)
	viper.SetDefault("BACKUP_KEEP", 24)
	viper.SetDefault("RECEIPT_STORAGE_PATH", "/tmp/pharmapos/receipts")

	// Optional .env file for local development; does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
