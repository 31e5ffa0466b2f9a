package config

import "time"

// Default returns the default configuration: JSON documents in the
// working directory.
func Default() *Config {
	return &Config{
		Version: 1,
		Storage: StorageConfig{
			Driver: DriverJSON,
			JSON:   JSONConfig{Dir: "."},
			Bolt:   BoltConfig{Path: "grocer.bolt"},
			SQLite: SQLiteConfig{Path: "grocer.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "grocer",
				User:     "grocer",
				SSLMode:  "disable",
			},
			Pool: PoolConfig{
				MaxOpenConns:   4,
				AcquireTimeout: 5 * time.Second,
			},
		},
	}
}
