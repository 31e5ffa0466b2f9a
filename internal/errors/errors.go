// Package errors provides structured error types for grocer.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for grocer.
const (
	// Lookup errors
	CodeItemNotFound   Code = "ITEM_NOT_FOUND"
	CodeRecipeNotFound Code = "RECIPE_NOT_FOUND"

	// Constraint errors
	CodeRecipeIngredientsNotFound Code = "RECIPE_INGREDIENTS_NOT_FOUND"

	// Store errors
	CodeStoreIO       Code = "STORE_IO"
	CodePoolExhausted Code = "POOL_EXHAUSTED"

	// Migration errors
	CodeMigrationAssertion Code = "MIGRATION_ASSERTION"

	// Config errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
	CodeConfigMissing Code = "CONFIG_MISSING"
)

// Kind groups error codes into the failure classes callers act on.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConstraintViolation
	KindStoreIO
	KindMigrationAssertion
	KindConfig
)

// String returns the kind name used in logs and JSON output.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConstraintViolation:
		return "constraint_violation"
	case KindStoreIO:
		return "store_io"
	case KindMigrationAssertion:
		return "migration_assertion"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// codeKinds maps error codes to their kinds.
var codeKinds = map[Code]Kind{
	CodeItemNotFound:              KindNotFound,
	CodeRecipeNotFound:            KindNotFound,
	CodeRecipeIngredientsNotFound: KindConstraintViolation,
	CodeStoreIO:                   KindStoreIO,
	CodePoolExhausted:             KindStoreIO,
	CodeMigrationAssertion:        KindMigrationAssertion,
	CodeConfigInvalid:             KindConfig,
	CodeConfigMissing:             KindConfig,
}

// Sentinels for errors.Is comparisons. Matching is by code only.
var (
	ErrItemNotFound              = &GrocerError{Code: CodeItemNotFound}
	ErrRecipeNotFound            = &GrocerError{Code: CodeRecipeNotFound}
	ErrRecipeIngredientsNotFound = &GrocerError{Code: CodeRecipeIngredientsNotFound}
	ErrStoreIO                   = &GrocerError{Code: CodeStoreIO}
	ErrPoolExhausted             = &GrocerError{Code: CodePoolExhausted}
	ErrMigrationAssertion        = &GrocerError{Code: CodeMigrationAssertion}
)

// GrocerError is the structured error type for grocer.
type GrocerError struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Fix   string `json:"fix,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *GrocerError) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *GrocerError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly message for CLI output.
func (e *GrocerError) UserMessage() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString("\n\nWhy: ")
		b.WriteString(e.Why)
	}
	if e.Fix != "" {
		b.WriteString("\n\nFix: ")
		b.WriteString(e.Fix)
	}
	return b.String()
}

// Kind returns the failure class of the error.
func (e *GrocerError) Kind() Kind {
	if k, ok := codeKinds[e.Code]; ok {
		return k
	}
	return KindUnknown
}

// MarshalJSON implements json.Marshaler.
func (e *GrocerError) MarshalJSON() ([]byte, error) {
	type alias GrocerError
	aux := struct {
		*alias
		Kind     string `json:"kind"`
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
		Kind:  e.Kind().String(),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// Is reports whether target is a GrocerError with the same code.
func (e *GrocerError) Is(target error) bool {
	t, ok := target.(*GrocerError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *GrocerError) WithCause(err error) *GrocerError {
	return &GrocerError{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Fix:   e.Fix,
		Cause: err,
	}
}

// --- Error constructors ---

// ErrItemNotFoundNamed returns an error when an item doesn't exist.
func ErrItemNotFoundNamed(name string) *GrocerError {
	return &GrocerError{
		Code: CodeItemNotFound,
		What: fmt.Sprintf("item %q not found", name),
		Why:  "No item with this name exists in the catalog",
		Fix:  "Run 'grocer show items' to list known items",
	}
}

// ErrRecipeNotFoundNamed returns an error when a recipe doesn't exist.
func ErrRecipeNotFoundNamed(name string) *GrocerError {
	return &GrocerError{
		Code: CodeRecipeNotFound,
		What: fmt.Sprintf("recipe %q not found", name),
		Why:  "No recipe with this name exists",
		Fix:  "Run 'grocer show recipes' to list known recipes",
	}
}

// ErrRecipeIngredients returns an error when a recipe is put on the list
// without any recorded ingredients.
func ErrRecipeIngredients(recipe string) *GrocerError {
	return &GrocerError{
		Code: CodeRecipeIngredientsNotFound,
		What: fmt.Sprintf("no ingredients recorded for recipe %q", recipe),
		Why:  "A recipe can only be added to the list once its ingredients are known",
		Fix:  fmt.Sprintf("Add it first with 'grocer add recipe %q INGREDIENT...'", recipe),
	}
}

// StoreIO wraps a backend failure. A nil cause returns nil.
func StoreIO(op string, cause error) error {
	if cause == nil {
		return nil
	}
	if ge := AsGrocerError(cause); ge != nil {
		return ge
	}
	return &GrocerError{
		Code:  CodeStoreIO,
		What:  op,
		Cause: cause,
	}
}

// ErrPoolExhaustedAfter returns an error when no pooled connection became
// available within the wait budget.
func ErrPoolExhaustedAfter(wait string, cause error) *GrocerError {
	return &GrocerError{
		Code:  CodePoolExhausted,
		What:  "no database connection available",
		Why:   fmt.Sprintf("Every pooled connection stayed busy for %s", wait),
		Fix:   "Raise storage.pool.max_open_conns or storage.pool.acquire_timeout",
		Cause: cause,
	}
}

// ErrMigrationAssertionFailed returns an error when a lookup by a unique name
// did not return exactly one row.
func ErrMigrationAssertionFailed(table, name string, rows int) *GrocerError {
	return &GrocerError{
		Code: CodeMigrationAssertion,
		What: fmt.Sprintf("expected exactly one %s row named %q, found %d", table, name, rows),
		Why:  "Names are unique per table; the target schema is inconsistent",
		Fix:  "Check the UNIQUE constraints on the target database before re-running",
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(field, reason string) *GrocerError {
	return &GrocerError{
		Code: CodeConfigInvalid,
		What: fmt.Sprintf("invalid configuration: %s", field),
		Why:  reason,
		Fix:  "Check .grocer/config.yaml and fix the invalid field",
	}
}

// ErrConfigMissing returns an error for missing configuration.
func ErrConfigMissing(field string) *GrocerError {
	return &GrocerError{
		Code: CodeConfigMissing,
		What: fmt.Sprintf("missing required configuration: %s", field),
		Why:  "This field is required but not set in configuration",
		Fix:  fmt.Sprintf("Add '%s' to .grocer/config.yaml", field),
	}
}

// AsGrocerError attempts to convert an error to a GrocerError.
// Returns nil if the error is not a GrocerError.
func AsGrocerError(err error) *GrocerError {
	var ge *GrocerError
	if stderrors.As(err, &ge) {
		return ge
	}
	return nil
}

// KindOf returns the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	if ge := AsGrocerError(err); ge != nil {
		return ge.Kind()
	}
	return KindUnknown
}
