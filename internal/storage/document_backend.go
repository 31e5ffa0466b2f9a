package storage

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/randalmurphal/grocer/internal/document"
	grocererrors "github.com/randalmurphal/grocer/internal/errors"
	"github.com/randalmurphal/grocer/internal/model"
)

// DocumentBackend keeps the whole store in memory and replaces the
// persisted document on every change. Mutations run on a copy that is only
// swapped in after a successful save, so a failed save changes nothing.
// Other processes writing the same document are not detected; the last
// save wins.
type DocumentBackend struct {
	sink   document.Sink
	snap   *document.Snapshot
	mu     sync.Mutex
	logger *slog.Logger
}

// NewDocumentBackend loads the snapshot from sink.
func NewDocumentBackend(ctx context.Context, sink document.Sink, logger *slog.Logger) (*DocumentBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	snap, err := sink.Load(ctx)
	if err != nil {
		return nil, grocererrors.StoreIO("load documents", err)
	}
	return &DocumentBackend{sink: sink, snap: snap, logger: logger}, nil
}

// mutate applies fn to a copy of the snapshot, saves it, then swaps it in.
func (b *DocumentBackend) mutate(ctx context.Context, op string, fn func(*document.Snapshot) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.snap.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := b.sink.Save(ctx, next); err != nil {
		return grocererrors.StoreIO(op, err)
	}
	b.snap = next
	return nil
}

// read runs fn against the current snapshot under the lock.
func (b *DocumentBackend) read(fn func(*document.Snapshot)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.snap)
}

func (b *DocumentBackend) AddItem(ctx context.Context, name string) error {
	return b.mutate(ctx, "add item", func(s *document.Snapshot) error {
		ensureItem(s, name)
		return nil
	})
}

func (b *DocumentBackend) SetItemSection(ctx context.Context, item, section string) error {
	return b.mutate(ctx, "set item section", func(s *document.Snapshot) error {
		i := ensureItem(s, item)
		s.Groceries.Collection[i].Section = section
		if !slices.Contains(s.Groceries.Sections, section) {
			s.Groceries.Sections = append(s.Groceries.Sections, section)
		}
		return nil
	})
}

func (b *DocumentBackend) AddRecipe(ctx context.Context, recipe string, ingredients model.Ingredients) error {
	return b.mutate(ctx, "add recipe", func(s *document.Snapshot) error {
		if !slices.Contains(s.Groceries.Recipes, recipe) {
			s.Groceries.Recipes = append(s.Groceries.Recipes, recipe)
		}
		for _, name := range model.NewIngredients(ingredients...) {
			i := ensureItem(s, name)
			if !s.Groceries.Collection[i].HasRecipe(recipe) {
				s.Groceries.Collection[i].Recipes = append(s.Groceries.Collection[i].Recipes, recipe)
			}
		}
		return nil
	})
}

func (b *DocumentBackend) RecipeIngredients(_ context.Context, recipe string) (ingredients model.Ingredients, ok bool, err error) {
	b.read(func(s *document.Snapshot) {
		ingredients, ok = recipeIngredients(s, recipe)
	})
	return ingredients, ok, nil
}

func (b *DocumentBackend) DeleteRecipe(ctx context.Context, recipe string) error {
	return b.mutate(ctx, "delete recipe", func(s *document.Snapshot) error {
		if _, ok := recipeIngredients(s, recipe); !ok {
			return grocererrors.ErrRecipeNotFoundNamed(recipe)
		}
		for i := range s.Groceries.Collection {
			s.Groceries.Collection[i].Recipes = slices.DeleteFunc(s.Groceries.Collection[i].Recipes,
				func(r string) bool { return r == recipe })
		}
		s.Groceries.Recipes = slices.DeleteFunc(s.Groceries.Recipes, func(r string) bool { return r == recipe })
		s.List.Recipes = slices.DeleteFunc(s.List.Recipes, func(r model.Recipe) bool { return string(r) == recipe })
		return nil
	})
}

func (b *DocumentBackend) AddListItem(ctx context.Context, name string) error {
	return b.mutate(ctx, "add list item", func(s *document.Snapshot) error {
		ensureItem(s, name)
		s.List.Items = appendName(s.List.Items, name)
		return nil
	})
}

func (b *DocumentBackend) AddListRecipe(ctx context.Context, recipe string) error {
	return b.mutate(ctx, "add list recipe", func(s *document.Snapshot) error {
		ingredients, _ := recipeIngredients(s, recipe)
		if len(ingredients) == 0 {
			return grocererrors.ErrRecipeIngredients(recipe)
		}
		if !s.List.HasRecipe(model.Recipe(recipe)) {
			s.List.Recipes = append(s.List.Recipes, model.Recipe(recipe))
		}
		for _, name := range ingredients {
			s.List.Items = appendName(s.List.Items, name)
		}
		return nil
	})
}

func (b *DocumentBackend) DeleteListItem(ctx context.Context, name string) error {
	return b.mutate(ctx, "delete list item", func(s *document.Snapshot) error {
		s.List.Items = removeName(s.List.Items, name)
		return nil
	})
}

func (b *DocumentBackend) RefreshList(ctx context.Context) error {
	return b.mutate(ctx, "refresh list", func(s *document.Snapshot) error {
		s.List.Items = model.Items{}
		s.List.Recipes = []model.Recipe{}
		return nil
	})
}

func (b *DocumentBackend) AddChecklistItem(ctx context.Context, name string) error {
	return b.mutate(ctx, "add checklist item", func(s *document.Snapshot) error {
		ensureItem(s, name)
		s.List.Checklist = appendName(s.List.Checklist, name)
		return nil
	})
}

func (b *DocumentBackend) DeleteChecklistItem(ctx context.Context, name string) error {
	return b.mutate(ctx, "delete checklist item", func(s *document.Snapshot) error {
		s.List.Checklist = removeName(s.List.Checklist, name)
		return nil
	})
}

func (b *DocumentBackend) ClearChecklist(ctx context.Context) error {
	return b.mutate(ctx, "clear checklist", func(s *document.Snapshot) error {
		s.List.Checklist = model.Items{}
		return nil
	})
}

func (b *DocumentBackend) Items(_ context.Context) (items model.Items, err error) {
	b.read(func(s *document.Snapshot) {
		items = s.Clone().Groceries.Collection
	})
	return items, nil
}

// Recipes returns the recorded recipes followed by any recipe only
// referenced from an item.
func (b *DocumentBackend) Recipes(_ context.Context) (recipes []model.Recipe, err error) {
	b.read(func(s *document.Snapshot) {
		names := slices.Clone(s.Groceries.Recipes)
		for _, it := range s.Groceries.Collection {
			for _, r := range it.Recipes {
				if !slices.Contains(names, r) {
					names = append(names, r)
				}
			}
		}
		recipes = make([]model.Recipe, len(names))
		for i, n := range names {
			recipes[i] = model.Recipe(n)
		}
	})
	return recipes, nil
}

// Sections returns the recorded sections followed by any section only
// referenced from an item.
func (b *DocumentBackend) Sections(_ context.Context) (sections []model.Section, err error) {
	b.read(func(s *document.Snapshot) {
		names := slices.Clone(s.Groceries.Sections)
		for _, it := range s.Groceries.Collection {
			if it.Section != "" && !slices.Contains(names, it.Section) {
				names = append(names, it.Section)
			}
		}
		sections = make([]model.Section, len(names))
		for i, n := range names {
			sections[i] = model.Section(n)
		}
	})
	return sections, nil
}

func (b *DocumentBackend) Checklist(_ context.Context) (items model.Items, err error) {
	b.read(func(s *document.Snapshot) {
		items = s.Clone().List.Checklist
	})
	return items, nil
}

func (b *DocumentBackend) ListRecipes(_ context.Context) (recipes []model.Recipe, err error) {
	b.read(func(s *document.Snapshot) {
		recipes = slices.Clone(s.List.Recipes)
	})
	return recipes, nil
}

func (b *DocumentBackend) List(_ context.Context) (list model.List, err error) {
	b.read(func(s *document.Snapshot) {
		list = s.Clone().List
	})
	return list, nil
}

// Close releases the sink. Every change has already been saved.
func (b *DocumentBackend) Close() error {
	if err := b.sink.Close(); err != nil {
		return fmt.Errorf("close document sink: %w", err)
	}
	return nil
}

// ensureItem returns the catalog index of name, appending it if missing.
func ensureItem(s *document.Snapshot, name string) int {
	for i, it := range s.Groceries.Collection {
		if it.Name == name {
			return i
		}
	}
	s.Groceries.Collection = append(s.Groceries.Collection, model.NewItem(name))
	return len(s.Groceries.Collection) - 1
}

// recipeIngredients returns the catalog items that use recipe. ok is false
// when the recipe is neither recorded nor referenced by any item.
func recipeIngredients(s *document.Snapshot, recipe string) (model.Ingredients, bool) {
	var names []string
	for _, it := range s.Groceries.Collection {
		if it.HasRecipe(recipe) {
			names = append(names, it.Name)
		}
	}
	ok := len(names) > 0 || slices.Contains(s.Groceries.Recipes, recipe)
	if !ok {
		return nil, false
	}
	return model.NewIngredients(names...), true
}

func appendName(items model.Items, name string) model.Items {
	if items.Contains(name) {
		return items
	}
	return append(items, model.NewItem(name))
}

func removeName(items model.Items, name string) model.Items {
	return slices.DeleteFunc(items, func(it model.Item) bool { return it.Name == name })
}

// Ensure DocumentBackend implements Backend
var _ Backend = (*DocumentBackend)(nil)
