package config

import (
	"os"
	"strconv"
	"time"
)

// EnvVarMapping defines the mapping between environment variables and config paths.
var EnvVarMapping = map[string]string{
	"GROCER_STORAGE_DRIVER": "storage.driver",
	"GROCER_JSON_DIR":       "storage.json.dir",
	"GROCER_BOLT_PATH":      "storage.bolt.path",
	"GROCER_SQLITE_PATH":    "storage.sqlite.path",
	// Database settings
	"GROCER_DB_HOST":     "storage.postgres.host",
	"GROCER_DB_PORT":     "storage.postgres.port",
	"GROCER_DB_NAME":     "storage.postgres.database",
	"GROCER_DB_USER":     "storage.postgres.user",
	"GROCER_DB_PASSWORD": "storage.postgres.password",
	"GROCER_DB_SSL_MODE": "storage.postgres.ssl_mode",
	"GROCER_DB_POOL_MAX": "storage.postgres.pool_max",
	// Pool settings
	"GROCER_POOL_MAX_OPEN_CONNS":  "storage.pool.max_open_conns",
	"GROCER_POOL_ACQUIRE_TIMEOUT": "storage.pool.acquire_timeout",
}

// ApplyEnvVars applies environment variable overrides to a TrackedConfig.
// Returns a list of paths that were overridden.
func ApplyEnvVars(tc *TrackedConfig) []string {
	var overridden []string

	for envVar, configPath := range EnvVarMapping {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if applyEnvVar(tc.Config, configPath, value) {
			tc.SetSource(configPath, SourceEnv)
			overridden = append(overridden, configPath)
		}
	}

	return overridden
}

// applyEnvVar applies a single environment variable to the config.
// Returns true if the value was applied.
func applyEnvVar(cfg *Config, path string, value string) bool {
	s := &cfg.Storage
	switch path {
	case "storage.driver":
		s.Driver = StorageDriver(value)
	case "storage.json.dir":
		s.JSON.Dir = value
	case "storage.bolt.path":
		s.Bolt.Path = value
	case "storage.sqlite.path":
		s.SQLite.Path = value
	// Database settings
	case "storage.postgres.host":
		s.Postgres.Host = value
	case "storage.postgres.port":
		v, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		s.Postgres.Port = v
	case "storage.postgres.database":
		s.Postgres.Database = value
	case "storage.postgres.user":
		s.Postgres.User = value
	case "storage.postgres.password":
		s.Postgres.Password = value
	case "storage.postgres.ssl_mode":
		s.Postgres.SSLMode = value
	case "storage.postgres.pool_max":
		v, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		s.Postgres.PoolMax = v
	// Pool settings
	case "storage.pool.max_open_conns":
		v, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		s.Pool.MaxOpenConns = v
	case "storage.pool.acquire_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return false
		}
		s.Pool.AcquireTimeout = d
	default:
		return false
	}
	return true
}
