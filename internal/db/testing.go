// Package db provides test utilities for database operations.
//
// This file contains test helpers that should be used by all tests
// requiring database access. Using these helpers ensures:
// - In-memory databases for speed
// - Proper cleanup via t.Cleanup()
// - Consistent patterns across the codebase
package db

import (
	"testing"
)

// NewTestGroceryDB creates an in-memory grocery database for testing.
// The database is automatically closed when the test completes.
// Schema migrations are applied automatically.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    gdb := db.NewTestGroceryDB(t)
//	    // use gdb...
//	}
func NewTestGroceryDB(t testing.TB) *GroceryDB {
	t.Helper()

	gdb, err := OpenGroceryInMemory()
	if err != nil {
		t.Fatalf("create test grocery db: %v", err)
	}

	t.Cleanup(func() {
		_ = gdb.Close()
	})

	return gdb
}

// RowCounts returns the row count of every grocery table.
func RowCounts(t testing.TB, gdb *GroceryDB) map[Table]int {
	t.Helper()

	counts := make(map[Table]int)
	err := gdb.RunInTx(t.Context(), func(tx *TxOps) error {
		for _, table := range AllTables {
			n, err := tx.Count(table)
			if err != nil {
				return err
			}
			counts[table] = n
		}
		return nil
	})
	if err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return counts
}
