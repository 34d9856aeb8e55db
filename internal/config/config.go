// Package config loads and validates application settings.
package config

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Request  RequestConfig  `mapstructure:"request"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the database settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// RequestConfig contains per-request pipeline settings.
type RequestConfig struct {
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" validate:"gte=0"`
}
