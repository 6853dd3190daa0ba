// Package config provides unified configuration for the sellerdesk
// service.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (SELLERDESK_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the sellerdesk service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Upstream      UpstreamConfig      `yaml:"upstream"`
	Feed          FeedConfig          `yaml:"feed"`
	Drive         DriveConfig         `yaml:"drive"`
	Storage       StorageConfig       `yaml:"storage"`
	Sessions      SessionsConfig      `yaml:"sessions"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 1 MB
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
}

// UpstreamConfig holds marketplace API client settings.
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url"` // required
	Timeout time.Duration `yaml:"timeout"`  // default: 30s
}

// FeedConfig holds autoload feed host settings.
type FeedConfig struct {
	BaseURL string        `yaml:"base_url"` // empty disables the autoload menu actions
	Timeout time.Duration `yaml:"timeout"`  // default: 30s
}

// DriveConfig holds the drive folder the feed sources are pulled from.
type DriveConfig struct {
	AccessToken     string `yaml:"access_token"`
	AccessTokenFile string `yaml:"access_token_file"` // _file variant for access_token
	FolderID        string `yaml:"folder_id"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory", "sqlite", or "postgres", default: "memory"
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"` // default: "sellerdesk.db"
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"` // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

// SessionsConfig holds dialog session store settings.
type SessionsConfig struct {
	Type string        `yaml:"type"` // "memory" or "redis", default: "memory"
	URL  string        `yaml:"url"`  // redis URL, required for type=redis
	TTL  time.Duration `yaml:"ttl"`  // default: 40m
}

// AuthConfig holds authentication settings for the event endpoint.
type AuthConfig struct {
	Type    string         `yaml:"type"`     // "none" or "apikey", default: "none"
	APIKeys []APIKeyConfig `yaml:"api_keys"` // key entries for type=apikey
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key     string `yaml:"key"`
	KeyFile string `yaml:"key_file"` // _file variant for key
}

// ObservabilityConfig holds monitoring settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"` // default: true
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			MaxBodySize:     1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Upstream: UpstreamConfig{
			Timeout: 30 * time.Second,
		},
		Feed: FeedConfig{
			Timeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Type: "memory",
			SQLite: SQLiteConfig{
				Path: "sellerdesk.db",
			},
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Sessions: SessionsConfig{
			Type: "memory",
			TTL:  40 * time.Minute,
		},
		Auth: AuthConfig{
			Type: "none",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
			},
		},
	}
}
