// Package model defines the grocery catalog, recipe and list types shared by
// every storage backend.
package model

import (
	"slices"
	"strings"
)

// Item is a named grocery product. Identity is by Name, which is
// case-sensitive.
type Item struct {
	Name    string   `json:"name" yaml:"name"`
	Section string   `json:"section,omitempty" yaml:"section,omitempty"`
	Recipes []string `json:"recipes,omitempty" yaml:"recipes,omitempty"`
}

// NewItem returns an item with only its name set.
func NewItem(name string) Item {
	return Item{Name: name}
}

// HasRecipe reports whether recipe is recorded on the item.
func (i Item) HasRecipe(recipe string) bool {
	return slices.Contains(i.Recipes, recipe)
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	out := i
	if i.Recipes != nil {
		out.Recipes = slices.Clone(i.Recipes)
	}
	return out
}

func (i Item) String() string {
	return i.Name
}

// Recipe is a recipe name. Ingredients are derived from the item-recipe
// relation and never stored on the recipe itself.
type Recipe string

func (r Recipe) String() string { return string(r) }

// Section is a grocery-store category such as "produce".
type Section string

func (s Section) String() string { return string(s) }

// Ingredients is a sorted set of item names.
type Ingredients []string

// NewIngredients builds a sorted, de-duplicated ingredient set. Blank names
// are dropped.
func NewIngredients(names ...string) Ingredients {
	out := make(Ingredients, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		out = append(out, n)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Contains reports whether name is in the set.
func (in Ingredients) Contains(name string) bool {
	_, found := slices.BinarySearch(in, name)
	return found
}

// Equal reports whether both sets hold the same names.
func (in Ingredients) Equal(other Ingredients) bool {
	return slices.Equal(in, other)
}

// Items is the catalog collection.
type Items []Item

// Names returns the item names in collection order.
func (is Items) Names() []string {
	names := make([]string, len(is))
	for i, it := range is {
		names[i] = it.Name
	}
	return names
}

// Find returns the item with the given name.
func (is Items) Find(name string) (Item, bool) {
	for _, it := range is {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// Contains reports whether an item with name exists in the collection.
func (is Items) Contains(name string) bool {
	_, ok := is.Find(name)
	return ok
}

// List is the current shopping list: items and recipes marked on the list,
// plus the checklist.
type List struct {
	Checklist Items    `json:"checklist"`
	Recipes   []Recipe `json:"recipes"`
	Items     Items    `json:"items"`
}

// HasRecipe reports whether recipe is on the list.
func (l List) HasRecipe(recipe Recipe) bool {
	return slices.Contains(l.Recipes, recipe)
}
