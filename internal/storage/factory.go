package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/randalmurphal/grocer/internal/config"
	"github.com/randalmurphal/grocer/internal/db"
	"github.com/randalmurphal/grocer/internal/db/driver"
	"github.com/randalmurphal/grocer/internal/document"
	grocererrors "github.com/randalmurphal/grocer/internal/errors"
)

// NewBackend creates a storage backend based on the configuration.
// The document drivers load the whole store up front; the relational
// drivers open a connection pool and apply the schema.
func NewBackend(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case config.DriverJSON, "":
		return NewDocumentBackend(ctx, document.NewFileSink(cfg.JSON.Dir, logger), logger)
	case config.DriverBolt:
		sink, err := document.OpenBoltSink(cfg.Bolt.Path, logger)
		if err != nil {
			return nil, grocererrors.StoreIO("open bolt store", err)
		}
		backend, err := NewDocumentBackend(ctx, sink, logger)
		if err != nil {
			_ = sink.Close()
			return nil, err
		}
		return backend, nil
	case config.DriverSQLite, config.DriverPostgres:
		gdb, err := OpenDatabase(cfg)
		if err != nil {
			return nil, err
		}
		logger.Debug("opened database backend", "dialect", gdb.Dialect(), "dsn", redactDSN(gdb.Path()))
		return NewDatabaseBackend(gdb, logger), nil
	default:
		return nil, grocererrors.ErrConfigInvalid("storage.driver", fmt.Sprintf("unknown storage driver %q", cfg.Driver))
	}
}

// OpenDatabase opens the relational store named by cfg.
func OpenDatabase(cfg *config.StorageConfig) (*db.GroceryDB, error) {
	pool := driver.Pool{
		MaxOpenConns:   cfg.MaxOpenConns(),
		AcquireTimeout: cfg.Pool.AcquireTimeout,
	}

	var (
		dsn     string
		dialect driver.Dialect
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		dsn, dialect = cfg.SQLite.Path, driver.DialectSQLite
	case config.DriverPostgres:
		dsn, dialect = cfg.Postgres.DSN(), driver.DialectPostgres
	default:
		return nil, grocererrors.ErrConfigInvalid("storage.driver", fmt.Sprintf("storage driver %q is not relational", cfg.Driver))
	}

	gdb, err := db.OpenGroceryWithDialect(dsn, dialect, pool)
	if err != nil {
		return nil, grocererrors.StoreIO("open database", fmt.Errorf("open %s database: %w", dialect, err))
	}
	return gdb, nil
}

// redactDSN hides the password of a connection URL for logging.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}
