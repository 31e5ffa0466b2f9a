// Package document holds the denormalized grocery document: a catalog file
// with every item and its section and recipes, and a list file with the
// current shopping list and checklist. Sinks load and replace both
// documents as a whole.
package document

import (
	"context"
	"slices"

	"github.com/randalmurphal/grocer/internal/model"
)

// Groceries is the catalog document.
type Groceries struct {
	Collection model.Items `json:"collection"`
	Sections   []string    `json:"sections"`
	Recipes    []string    `json:"recipes"`
}

// NewGroceries returns an empty catalog.
func NewGroceries() Groceries {
	return Groceries{
		Collection: model.Items{},
		Sections:   []string{},
		Recipes:    []string{},
	}
}

// Snapshot is the full persisted state.
type Snapshot struct {
	Groceries Groceries
	List      model.List
}

// NewSnapshot returns the state of a store that has never been saved.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Groceries: NewGroceries(),
		List:      NewList(),
	}
}

// NewList returns an empty shopping list.
func NewList() model.List {
	return model.List{
		Checklist: model.Items{},
		Recipes:   []model.Recipe{},
		Items:     model.Items{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{
		Groceries: Groceries{
			Collection: cloneItems(s.Groceries.Collection),
			Sections:   cloneStrings(s.Groceries.Sections),
			Recipes:    cloneStrings(s.Groceries.Recipes),
		},
		List: model.List{
			Checklist: cloneItems(s.List.Checklist),
			Recipes:   cloneRecipes(s.List.Recipes),
			Items:     cloneItems(s.List.Items),
		},
	}
}

// normalize replaces nil collections so documents always serialize arrays.
func (s *Snapshot) normalize() {
	if s.Groceries.Collection == nil {
		s.Groceries.Collection = model.Items{}
	}
	if s.Groceries.Sections == nil {
		s.Groceries.Sections = []string{}
	}
	if s.Groceries.Recipes == nil {
		s.Groceries.Recipes = []string{}
	}
	if s.List.Checklist == nil {
		s.List.Checklist = model.Items{}
	}
	if s.List.Recipes == nil {
		s.List.Recipes = []model.Recipe{}
	}
	if s.List.Items == nil {
		s.List.Items = model.Items{}
	}
}

func cloneItems(in model.Items) model.Items {
	out := make(model.Items, len(in))
	for i, it := range in {
		out[i] = it.Clone()
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}

func cloneRecipes(in []model.Recipe) []model.Recipe {
	if in == nil {
		return []model.Recipe{}
	}
	return slices.Clone(in)
}

// Sink loads and replaces a whole snapshot.
type Sink interface {
	// Load returns the stored snapshot, or an empty one when nothing has
	// been saved yet.
	Load(ctx context.Context) (*Snapshot, error)
	// Save replaces the stored snapshot. A failed save leaves the previous
	// snapshot in place.
	Save(ctx context.Context, snap *Snapshot) error
	// Close releases the sink.
	Close() error
}
