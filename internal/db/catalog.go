package db

import (
	"context"

	grocererrors "github.com/randalmurphal/grocer/internal/errors"
	"github.com/randalmurphal/grocer/internal/model"
)

// AddItem inserts item into the catalog. Existing names are left alone.
func (g *GroceryDB) AddItem(ctx context.Context, name string) error {
	return g.RunInTx(ctx, func(tx *TxOps) error {
		return tx.InsertName(TableItems, name)
	})
}

// SetItemSection assigns item to section, replacing any previous section.
// Both are created if missing.
func (g *GroceryDB) SetItemSection(ctx context.Context, item, section string) error {
	return g.RunInTx(ctx, func(tx *TxOps) error {
		itemID, err := tx.GetOrInsertID(TableItems, item)
		if err != nil {
			return err
		}
		sectionID, err := tx.GetOrInsertID(TableSections, section)
		if err != nil {
			return err
		}
		if err := tx.UnlinkItemSections(itemID); err != nil {
			return err
		}
		return tx.LinkItemSection(itemID, sectionID)
	})
}

// AddRecipe inserts recipe and links every ingredient to it, creating
// ingredient items as needed.
func (g *GroceryDB) AddRecipe(ctx context.Context, recipe string, ingredients model.Ingredients) error {
	return g.RunInTx(ctx, func(tx *TxOps) error {
		recipeID, err := tx.GetOrInsertID(TableRecipes, recipe)
		if err != nil {
			return err
		}
		for _, name := range model.NewIngredients(ingredients...) {
			itemID, err := tx.GetOrInsertID(TableItems, name)
			if err != nil {
				return err
			}
			if err := tx.LinkItemRecipe(itemID, recipeID); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecipeIngredients returns the ingredients of recipe. ok is false when no
// recipe has that name; a known recipe without ingredients returns an empty
// set and ok true.
func (g *GroceryDB) RecipeIngredients(ctx context.Context, recipe string) (ingredients model.Ingredients, ok bool, err error) {
	err = g.RunInTx(ctx, func(tx *TxOps) error {
		recipeID, found, err := tx.LookupID(TableRecipes, recipe)
		if err != nil || !found {
			return err
		}
		ok = true
		ingredients, err = tx.IngredientNames(recipeID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return ingredients, ok, nil
}

// DeleteRecipe removes recipe, its ingredient links and its list mark.
// Ingredient items stay in the catalog.
func (g *GroceryDB) DeleteRecipe(ctx context.Context, recipe string) error {
	return g.RunInTx(ctx, func(tx *TxOps) error {
		recipeID, found, err := tx.LookupID(TableRecipes, recipe)
		if err != nil {
			return err
		}
		if !found {
			return grocererrors.ErrRecipeNotFoundNamed(recipe)
		}
		if err := tx.DeleteRecipeRefs(recipeID); err != nil {
			return err
		}
		return tx.DeleteName(TableRecipes, recipe)
	})
}

// Items returns the catalog with sections and recipes.
func (g *GroceryDB) Items(ctx context.Context) (items model.Items, err error) {
	err = g.RunInTx(ctx, func(tx *TxOps) error {
		items, err = tx.CatalogItems()
		return err
	})
	return items, err
}

// Recipes returns every recipe name.
func (g *GroceryDB) Recipes(ctx context.Context) ([]model.Recipe, error) {
	var names []string
	err := g.RunInTx(ctx, func(tx *TxOps) (err error) {
		names, err = tx.Names(TableRecipes)
		return err
	})
	if err != nil {
		return nil, err
	}
	recipes := make([]model.Recipe, len(names))
	for i, n := range names {
		recipes[i] = model.Recipe(n)
	}
	return recipes, nil
}

// Sections returns every section name.
func (g *GroceryDB) Sections(ctx context.Context) ([]model.Section, error) {
	var names []string
	err := g.RunInTx(ctx, func(tx *TxOps) (err error) {
		names, err = tx.Names(TableSections)
		return err
	})
	if err != nil {
		return nil, err
	}
	sections := make([]model.Section, len(names))
	for i, n := range names {
		sections[i] = model.Section(n)
	}
	return sections, nil
}
