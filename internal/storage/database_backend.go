package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/grocer/internal/db"
	grocererrors "github.com/randalmurphal/grocer/internal/errors"
	"github.com/randalmurphal/grocer/internal/model"
)

// DatabaseBackend uses SQLite/PostgreSQL as the source of truth.
// Each operation runs in exactly one transaction on a pooled connection.
// Copies of the backend share the connection pool; its lifetime is the pool's.
type DatabaseBackend struct {
	db     *db.GroceryDB
	logger *slog.Logger
}

// NewDatabaseBackend wraps an open grocery database.
func NewDatabaseBackend(gdb *db.GroceryDB, logger *slog.Logger) *DatabaseBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatabaseBackend{db: gdb, logger: logger}
}

// NewInMemoryBackend creates a database backend on an in-memory SQLite
// database.
func NewInMemoryBackend() (*DatabaseBackend, error) {
	gdb, err := db.OpenGroceryInMemory()
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	return NewDatabaseBackend(gdb, nil), nil
}

// DB returns the underlying database for direct access.
func (d *DatabaseBackend) DB() *db.GroceryDB {
	return d.db
}

func (d *DatabaseBackend) AddItem(ctx context.Context, name string) error {
	return grocererrors.StoreIO("add item", d.db.AddItem(ctx, name))
}

func (d *DatabaseBackend) SetItemSection(ctx context.Context, item, section string) error {
	return grocererrors.StoreIO("set item section", d.db.SetItemSection(ctx, item, section))
}

func (d *DatabaseBackend) AddRecipe(ctx context.Context, recipe string, ingredients model.Ingredients) error {
	return grocererrors.StoreIO("add recipe", d.db.AddRecipe(ctx, recipe, ingredients))
}

func (d *DatabaseBackend) RecipeIngredients(ctx context.Context, recipe string) (model.Ingredients, bool, error) {
	ingredients, ok, err := d.db.RecipeIngredients(ctx, recipe)
	if err != nil {
		return nil, false, grocererrors.StoreIO("recipe ingredients", err)
	}
	return ingredients, ok, nil
}

func (d *DatabaseBackend) DeleteRecipe(ctx context.Context, recipe string) error {
	return grocererrors.StoreIO("delete recipe", d.db.DeleteRecipe(ctx, recipe))
}

func (d *DatabaseBackend) AddListItem(ctx context.Context, name string) error {
	return grocererrors.StoreIO("add list item", d.db.AddListItem(ctx, name))
}

func (d *DatabaseBackend) AddListRecipe(ctx context.Context, recipe string) error {
	return grocererrors.StoreIO("add list recipe", d.db.AddListRecipe(ctx, recipe))
}

func (d *DatabaseBackend) DeleteListItem(ctx context.Context, name string) error {
	return grocererrors.StoreIO("delete list item", d.db.DeleteListItem(ctx, name))
}

func (d *DatabaseBackend) RefreshList(ctx context.Context) error {
	return grocererrors.StoreIO("refresh list", d.db.RefreshList(ctx))
}

func (d *DatabaseBackend) AddChecklistItem(ctx context.Context, name string) error {
	return grocererrors.StoreIO("add checklist item", d.db.AddChecklistItem(ctx, name))
}

func (d *DatabaseBackend) DeleteChecklistItem(ctx context.Context, name string) error {
	return grocererrors.StoreIO("delete checklist item", d.db.DeleteChecklistItem(ctx, name))
}

func (d *DatabaseBackend) ClearChecklist(ctx context.Context) error {
	return grocererrors.StoreIO("clear checklist", d.db.ClearChecklist(ctx))
}

func (d *DatabaseBackend) Items(ctx context.Context) (model.Items, error) {
	items, err := d.db.Items(ctx)
	if err != nil {
		return nil, grocererrors.StoreIO("read items", err)
	}
	return items, nil
}

func (d *DatabaseBackend) Recipes(ctx context.Context) ([]model.Recipe, error) {
	recipes, err := d.db.Recipes(ctx)
	if err != nil {
		return nil, grocererrors.StoreIO("read recipes", err)
	}
	return recipes, nil
}

func (d *DatabaseBackend) Sections(ctx context.Context) ([]model.Section, error) {
	sections, err := d.db.Sections(ctx)
	if err != nil {
		return nil, grocererrors.StoreIO("read sections", err)
	}
	return sections, nil
}

func (d *DatabaseBackend) Checklist(ctx context.Context) (model.Items, error) {
	items, err := d.db.Checklist(ctx)
	if err != nil {
		return nil, grocererrors.StoreIO("read checklist", err)
	}
	return items, nil
}

func (d *DatabaseBackend) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	recipes, err := d.db.ListRecipes(ctx)
	if err != nil {
		return nil, grocererrors.StoreIO("read list recipes", err)
	}
	return recipes, nil
}

func (d *DatabaseBackend) List(ctx context.Context) (model.List, error) {
	list, err := d.db.List(ctx)
	if err != nil {
		return model.List{}, grocererrors.StoreIO("read list", err)
	}
	return list, nil
}

// Close closes the connection pool shared by every copy of the backend.
func (d *DatabaseBackend) Close() error {
	d.logger.Debug("closing database backend", "dsn", redactDSN(d.db.Path()), "dialect", d.db.Dialect())
	return d.db.Close()
}

// Ensure DatabaseBackend implements Backend
var _ Backend = (*DatabaseBackend)(nil)
