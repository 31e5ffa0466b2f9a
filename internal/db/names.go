package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// Table names a grocery table. Only the entity tables (items, recipes,
// sections) carry a name column.
type Table string

const (
	TableItems    Table = "items"
	TableRecipes  Table = "recipes"
	TableSections Table = "sections"

	TableChecklist     Table = "checklist"
	TableList          Table = "list"
	TableListRecipes   Table = "list_recipes"
	TableItemsRecipes  Table = "items_recipes"
	TableItemsSections Table = "items_sections"
)

// AllTables lists every grocery table.
var AllTables = []Table{
	TableItems, TableRecipes, TableSections,
	TableChecklist, TableList, TableListRecipes,
	TableItemsRecipes, TableItemsSections,
}

// InsertName inserts name into table, ignoring a duplicate.
func (t *TxOps) InsertName(table Table, name string) error {
	query := fmt.Sprintf(`INSERT INTO %s (name) VALUES (%s) ON CONFLICT DO NOTHING`, table, t.Placeholder(1))
	if _, err := t.Exec(query, name); err != nil {
		return fmt.Errorf("insert %s %q: %w", table, name, err)
	}
	return nil
}

// GetOrInsertID inserts name if missing and returns its id.
func (t *TxOps) GetOrInsertID(table Table, name string) (int64, error) {
	if err := t.InsertName(table, name); err != nil {
		return 0, err
	}
	id, ok, err := t.LookupID(table, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s %q missing after insert", table, name)
	}
	return id, nil
}

// LookupID returns the id of name in table.
func (t *TxOps) LookupID(table Table, name string) (int64, bool, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE name = %s`, table, t.Placeholder(1))
	var id int64
	err := t.QueryRow(query, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup %s %q: %w", table, name, err)
	}
	return id, true, nil
}

// LookupIDs returns every id whose row is named name. Callers that need to
// assert uniqueness inspect the length.
func (t *TxOps) LookupIDs(table Table, name string) ([]int64, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE name = %s`, table, t.Placeholder(1))
	rows, err := t.Query(query, name)
	if err != nil {
		return nil, fmt.Errorf("lookup %s %q: %w", table, name, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", table, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Names returns all names in table in insertion order.
func (t *TxOps) Names(table Table) ([]string, error) {
	rows, err := t.Query(fmt.Sprintf(`SELECT name FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return scanStrings(rows)
}

// DeleteName removes the row named name from table.
func (t *TxOps) DeleteName(table Table, name string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE name = %s`, table, t.Placeholder(1))
	if _, err := t.Exec(query, name); err != nil {
		return fmt.Errorf("delete %s %q: %w", table, name, err)
	}
	return nil
}

// Count returns the number of rows in table.
func (t *TxOps) Count(table Table) (int, error) {
	var n int
	if err := t.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer func() { _ = rows.Close() }()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
