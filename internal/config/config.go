// Package config loads and validates service configuration from YAML
// files with ${ENV_VAR} interpolation.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Graph    GraphConfig    `mapstructure:"graph" yaml:"graph" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database" validate:"required"`
	Sync     SyncConfig     `mapstructure:"sync" yaml:"sync"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// GraphConfig holds the graph store connection settings.
type GraphConfig struct {
	URI                   string        `mapstructure:"uri" yaml:"uri" validate:"required"`
	Username              string        `mapstructure:"username" yaml:"username" validate:"required"`
	Password              string        `mapstructure:"password" yaml:"password"`
	Database              string        `mapstructure:"database" yaml:"database"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size" yaml:"max_connection_pool_size" validate:"gte=0"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout" yaml:"connection_timeout"`
}

// DatabaseConfig holds the relational store settings.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path" yaml:"path" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout" yaml:"busy_timeout"`
}

// SyncConfig tunes the synchronization engine.
type SyncConfig struct {
	// Workers bounds concurrent record writes within one entity type.
	Workers int `mapstructure:"workers" yaml:"workers" validate:"gte=0,lte=64"`

	// WriteTimeout bounds the graph writes for a single record.
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}
