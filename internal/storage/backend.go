// Package storage provides the storage backend abstraction for grocer.
// It supports two structurally different backends behind one contract:
// a relational database (SQLite or PostgreSQL) and a whole-document store
// (JSON files or a bbolt file).
package storage

import (
	"context"

	"github.com/randalmurphal/grocer/internal/model"
)

// Backend defines the storage operations for grocer.
// Every mutating operation is atomic: it is either fully applied or leaves
// the store unchanged. Duplicate names are never an error.
type Backend interface {
	// Catalog operations
	AddItem(ctx context.Context, name string) error
	SetItemSection(ctx context.Context, item, section string) error
	AddRecipe(ctx context.Context, recipe string, ingredients model.Ingredients) error
	// RecipeIngredients reports ok=false when no recipe has that name.
	RecipeIngredients(ctx context.Context, recipe string) (model.Ingredients, bool, error)
	DeleteRecipe(ctx context.Context, recipe string) error

	// List operations
	AddListItem(ctx context.Context, name string) error
	AddListRecipe(ctx context.Context, recipe string) error
	DeleteListItem(ctx context.Context, name string) error
	RefreshList(ctx context.Context) error

	// Checklist operations
	AddChecklistItem(ctx context.Context, name string) error
	DeleteChecklistItem(ctx context.Context, name string) error
	ClearChecklist(ctx context.Context) error

	// Reads
	Items(ctx context.Context) (model.Items, error)
	Recipes(ctx context.Context) ([]model.Recipe, error)
	Sections(ctx context.Context) ([]model.Section, error)
	Checklist(ctx context.Context) (model.Items, error)
	ListRecipes(ctx context.Context) ([]model.Recipe, error)
	List(ctx context.Context) (model.List, error)

	// Lifecycle
	Close() error
}
