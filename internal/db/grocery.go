package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/randalmurphal/grocer/internal/db/driver"
	grocererrors "github.com/randalmurphal/grocer/internal/errors"
)

// TxRunner provides a transactional execution interface.
// This allows operations to run within a transaction context,
// ensuring atomicity of multi-table operations.
type TxRunner interface {
	// RunInTx executes the given function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	RunInTx(ctx context.Context, fn func(tx *TxOps) error) error
}

// TxOps provides database operations within a transaction.
// The context is stored and used for all operations, enabling cancellation
// and timeout propagation through the entire transaction.
type TxOps struct {
	tx          driver.Tx
	dialect     driver.Dialect
	placeholder func(int) string
	ctx         context.Context
}

// Exec executes a query within the transaction.
func (t *TxOps) Exec(query string, args ...any) (sql.Result, error) {
	return t.tx.Exec(t.ctx, query, args...)
}

// Query executes a query that returns rows within the transaction.
func (t *TxOps) Query(query string, args ...any) (*sql.Rows, error) {
	return t.tx.Query(t.ctx, query, args...)
}

// QueryRow executes a query that returns at most one row within the transaction.
func (t *TxOps) QueryRow(query string, args ...any) *sql.Row {
	return t.tx.QueryRow(t.ctx, query, args...)
}

// Context returns the context associated with this transaction.
func (t *TxOps) Context() context.Context {
	return t.ctx
}

// Dialect returns the database dialect.
func (t *TxOps) Dialect() driver.Dialect {
	return t.dialect
}

// Placeholder returns the bind parameter marker for the 1-based index.
func (t *TxOps) Placeholder(index int) string {
	return t.placeholder(index)
}

// GroceryDB provides operations on the grocery database.
// Every copy of a GroceryDB shares the same underlying connection pool.
type GroceryDB struct {
	*DB
	acquireTimeout time.Duration
}

// OpenGrocery opens the grocery database at {dir}/grocer.db using SQLite.
func OpenGrocery(dir string) (*GroceryDB, error) {
	return OpenGroceryWithDialect(filepath.Join(dir, "grocer.db"), driver.DialectSQLite, driver.Pool{})
}

// OpenGroceryWithDialect opens the grocery database with a specific dialect.
// For SQLite, dsn is the file path. For PostgreSQL, dsn is the connection string.
func OpenGroceryWithDialect(dsn string, dialect driver.Dialect, pool driver.Pool) (*GroceryDB, error) {
	db, err := OpenWithDialect(dsn, dialect, pool)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate("grocery"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate grocery db: %w", err)
	}

	return &GroceryDB{DB: db, acquireTimeout: pool.AcquireTimeout}, nil
}

// OpenGroceryInMemory opens an in-memory grocery database.
func OpenGroceryInMemory() (*GroceryDB, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, err
	}

	if err := db.Migrate("grocery"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate grocery db: %w", err)
	}

	return &GroceryDB{DB: db}, nil
}

// RunInTx executes the given function within a database transaction.
// If fn returns an error, the transaction is rolled back.
// If fn returns nil, the transaction is committed.
// A transaction that cannot get a pooled connection in time fails with
// POOL_EXHAUSTED instead of blocking.
func (g *GroceryDB) RunInTx(ctx context.Context, fn func(tx *TxOps) error) error {
	tx, err := g.BeginTx(ctx, nil)
	if err != nil {
		if errors.Is(err, driver.ErrPoolExhausted) {
			return grocererrors.ErrPoolExhaustedAfter(g.acquireTimeout.String(), err)
		}
		return fmt.Errorf("begin transaction: %w", err)
	}

	txOps := &TxOps{
		tx:          tx,
		dialect:     g.Dialect(),
		placeholder: g.Placeholder,
		ctx:         ctx,
	}

	if err := fn(txOps); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Ensure GroceryDB implements TxRunner
var _ TxRunner = (*GroceryDB)(nil)
