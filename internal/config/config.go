// Package config provides configuration management for grocer.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	grocererrors "github.com/randalmurphal/grocer/internal/errors"
)

const (
	// ConfigFileName is the default config file name
	ConfigFileName = "config.yaml"
	// GrocerDir is the grocer configuration directory
	GrocerDir = ".grocer"
)

// StorageDriver selects the storage backend.
type StorageDriver string

const (
	// DriverJSON stores groceries.json and list.json in a directory (default)
	DriverJSON StorageDriver = "json"
	// DriverBolt stores both documents in a bbolt file
	DriverBolt StorageDriver = "bolt"
	// DriverSQLite uses a normalized SQLite database
	DriverSQLite StorageDriver = "sqlite"
	// DriverPostgres uses a normalized PostgreSQL database
	DriverPostgres StorageDriver = "postgres"
)

// ValidDrivers are the allowed values for storage.driver.
var ValidDrivers = []StorageDriver{DriverJSON, DriverBolt, DriverSQLite, DriverPostgres}

// IsDocument reports whether the driver is a whole-document store.
func (d StorageDriver) IsDocument() bool {
	return d == DriverJSON || d == DriverBolt
}

// Config represents the grocer configuration.
type Config struct {
	// Version is the config file version
	Version int `yaml:"version"`

	// Storage selects and configures the backend
	Storage StorageConfig `yaml:"storage"`
}

// StorageConfig defines where grocer keeps its data.
type StorageConfig struct {
	Driver   StorageDriver  `yaml:"driver"`
	JSON     JSONConfig     `yaml:"json"`
	Bolt     BoltConfig     `yaml:"bolt"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Pool     PoolConfig     `yaml:"pool"`
}

// JSONConfig defines the JSON document directory.
type JSONConfig struct {
	Dir string `yaml:"dir"`
}

// BoltConfig defines the bbolt document file.
type BoltConfig struct {
	Path string `yaml:"path"`
}

// SQLiteConfig defines the SQLite database file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig defines PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"` // Use env GROCER_DB_PASSWORD
	SSLMode  string `yaml:"ssl_mode"`
	PoolMax  int    `yaml:"pool_max"`
}

// PoolConfig bounds the relational connection pool.
type PoolConfig struct {
	// MaxOpenConns caps concurrent operations (SQLite always uses one)
	MaxOpenConns int `yaml:"max_open_conns"`
	// AcquireTimeout is how long an operation waits for a connection
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
}

// DSN builds a PostgreSQL connection URL.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:   "/" + p.Database,
	}
	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}
	if p.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {p.SSLMode}}.Encode()
	}
	return u.String()
}

// MaxOpenConns returns the pool size for the configured driver. For
// PostgreSQL a positive postgres.pool_max takes precedence.
func (s StorageConfig) MaxOpenConns() int {
	if s.Driver == DriverPostgres && s.Postgres.PoolMax > 0 {
		return s.Postgres.PoolMax
	}
	return s.Pool.MaxOpenConns
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	s := c.Storage
	if !slices.Contains(ValidDrivers, s.Driver) {
		return grocererrors.ErrConfigInvalid("storage.driver",
			fmt.Sprintf("unknown driver %q (valid: json, bolt, sqlite, postgres)", s.Driver))
	}
	if s.Pool.MaxOpenConns <= 0 {
		return grocererrors.ErrConfigInvalid("storage.pool.max_open_conns", "must be positive")
	}
	if s.Pool.AcquireTimeout < 0 {
		return grocererrors.ErrConfigInvalid("storage.pool.acquire_timeout", "must not be negative")
	}

	switch s.Driver {
	case DriverJSON:
		if s.JSON.Dir == "" {
			return grocererrors.ErrConfigMissing("storage.json.dir")
		}
	case DriverBolt:
		if s.Bolt.Path == "" {
			return grocererrors.ErrConfigMissing("storage.bolt.path")
		}
	case DriverSQLite:
		if s.SQLite.Path == "" {
			return grocererrors.ErrConfigMissing("storage.sqlite.path")
		}
	case DriverPostgres:
		if s.Postgres.Host == "" {
			return grocererrors.ErrConfigMissing("storage.postgres.host")
		}
		if s.Postgres.Database == "" {
			return grocererrors.ErrConfigMissing("storage.postgres.database")
		}
		if s.Postgres.PoolMax < 0 {
			return grocererrors.ErrConfigInvalid("storage.postgres.pool_max", "must not be negative")
		}
	}
	return nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
