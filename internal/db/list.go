package db

import (
	"context"

	grocererrors "github.com/randalmurphal/grocer/internal/errors"
	"github.com/randalmurphal/grocer/internal/model"
)

// AddChecklistItem inserts item if needed and marks it on the checklist.
func (g *GroceryDB) AddChecklistItem(ctx context.Context, name string) error {
	return g.markItem(ctx, TableChecklist, name)
}

// AddListItem inserts item if needed and marks it on the list.
func (g *GroceryDB) AddListItem(ctx context.Context, name string) error {
	return g.markItem(ctx, TableList, name)
}

func (g *GroceryDB) markItem(ctx context.Context, marks Table, name string) error {
	return g.RunInTx(ctx, func(tx *TxOps) error {
		itemID, err := tx.GetOrInsertID(TableItems, name)
		if err != nil {
			return err
		}
		return tx.MarkItem(marks, itemID)
	})
}

// AddListRecipe marks recipe and every one of its ingredients on the list.
// A recipe with no recorded ingredients fails with
// RECIPE_INGREDIENTS_NOT_FOUND and leaves the list unchanged.
func (g *GroceryDB) AddListRecipe(ctx context.Context, recipe string) error {
	return g.RunInTx(ctx, func(tx *TxOps) error {
		recipeID, found, err := tx.LookupID(TableRecipes, recipe)
		if err != nil {
			return err
		}
		if !found {
			return grocererrors.ErrRecipeIngredients(recipe)
		}
		itemIDs, err := tx.IngredientIDs(recipeID)
		if err != nil {
			return err
		}
		if len(itemIDs) == 0 {
			return grocererrors.ErrRecipeIngredients(recipe)
		}
		if err := tx.MarkListRecipe(recipeID); err != nil {
			return err
		}
		for _, id := range itemIDs {
			if err := tx.MarkItem(TableList, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteChecklistItem takes item off the checklist. The catalog entry stays.
func (g *GroceryDB) DeleteChecklistItem(ctx context.Context, name string) error {
	return g.RunInTx(ctx, func(tx *TxOps) error {
		return tx.UnmarkItem(TableChecklist, name)
	})
}

// DeleteListItem takes item off the list. The catalog entry stays.
func (g *GroceryDB) DeleteListItem(ctx context.Context, name string) error {
	return g.RunInTx(ctx, func(tx *TxOps) error {
		return tx.UnmarkItem(TableList, name)
	})
}

// ClearChecklist removes every checklist mark.
func (g *GroceryDB) ClearChecklist(ctx context.Context) error {
	return g.RunInTx(ctx, func(tx *TxOps) error {
		return tx.Clear(TableChecklist)
	})
}

// RefreshList removes every list item and list recipe mark.
func (g *GroceryDB) RefreshList(ctx context.Context) error {
	return g.RunInTx(ctx, func(tx *TxOps) error {
		if err := tx.Clear(TableList); err != nil {
			return err
		}
		return tx.Clear(TableListRecipes)
	})
}

// Checklist returns the items on the checklist.
func (g *GroceryDB) Checklist(ctx context.Context) (items model.Items, err error) {
	err = g.RunInTx(ctx, func(tx *TxOps) error {
		items, err = tx.MarkedItems(TableChecklist)
		return err
	})
	return items, err
}

// ListRecipes returns the recipes on the list.
func (g *GroceryDB) ListRecipes(ctx context.Context) (recipes []model.Recipe, err error) {
	err = g.RunInTx(ctx, func(tx *TxOps) error {
		recipes, err = tx.ListRecipeNames()
		return err
	})
	return recipes, err
}

// List returns the list items, list recipes and checklist as read in one
// transaction.
func (g *GroceryDB) List(ctx context.Context) (list model.List, err error) {
	err = g.RunInTx(ctx, func(tx *TxOps) error {
		if list.Items, err = tx.MarkedItems(TableList); err != nil {
			return err
		}
		if list.Recipes, err = tx.ListRecipeNames(); err != nil {
			return err
		}
		list.Checklist, err = tx.MarkedItems(TableChecklist)
		return err
	})
	return list, err
}
