package db

import (
	"fmt"

	"github.com/randalmurphal/grocer/internal/model"
)

// LinkItemRecipe records item as an ingredient of recipe.
func (t *TxOps) LinkItemRecipe(itemID, recipeID int64) error {
	query := fmt.Sprintf(`INSERT INTO items_recipes (item_id, recipe_id) VALUES (%s, %s) ON CONFLICT DO NOTHING`,
		t.Placeholder(1), t.Placeholder(2))
	if _, err := t.Exec(query, itemID, recipeID); err != nil {
		return fmt.Errorf("link item %d to recipe %d: %w", itemID, recipeID, err)
	}
	return nil
}

// LinkItemSection records item as belonging to section.
func (t *TxOps) LinkItemSection(itemID, sectionID int64) error {
	query := fmt.Sprintf(`INSERT INTO items_sections (item_id, section_id) VALUES (%s, %s) ON CONFLICT DO NOTHING`,
		t.Placeholder(1), t.Placeholder(2))
	if _, err := t.Exec(query, itemID, sectionID); err != nil {
		return fmt.Errorf("link item %d to section %d: %w", itemID, sectionID, err)
	}
	return nil
}

// UnlinkItemSections removes every section link of item.
func (t *TxOps) UnlinkItemSections(itemID int64) error {
	query := fmt.Sprintf(`DELETE FROM items_sections WHERE item_id = %s`, t.Placeholder(1))
	if _, err := t.Exec(query, itemID); err != nil {
		return fmt.Errorf("unlink sections of item %d: %w", itemID, err)
	}
	return nil
}

// MarkItem puts item on the list or the checklist.
func (t *TxOps) MarkItem(marks Table, itemID int64) error {
	query := fmt.Sprintf(`INSERT INTO %s (item_id) VALUES (%s) ON CONFLICT DO NOTHING`, marks, t.Placeholder(1))
	if _, err := t.Exec(query, itemID); err != nil {
		return fmt.Errorf("mark item %d on %s: %w", itemID, marks, err)
	}
	return nil
}

// UnmarkItem takes the item named name off the list or the checklist.
// Unknown names are ignored.
func (t *TxOps) UnmarkItem(marks Table, name string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE item_id IN (SELECT id FROM items WHERE name = %s)`,
		marks, t.Placeholder(1))
	if _, err := t.Exec(query, name); err != nil {
		return fmt.Errorf("unmark item %q on %s: %w", name, marks, err)
	}
	return nil
}

// MarkListRecipe puts recipe on the list.
func (t *TxOps) MarkListRecipe(recipeID int64) error {
	query := fmt.Sprintf(`INSERT INTO list_recipes (id) VALUES (%s) ON CONFLICT DO NOTHING`, t.Placeholder(1))
	if _, err := t.Exec(query, recipeID); err != nil {
		return fmt.Errorf("mark recipe %d on list: %w", recipeID, err)
	}
	return nil
}

// Clear deletes every row of a mark table.
func (t *TxOps) Clear(marks Table) error {
	if _, err := t.Exec(fmt.Sprintf(`DELETE FROM %s`, marks)); err != nil {
		return fmt.Errorf("clear %s: %w", marks, err)
	}
	return nil
}

// DeleteRecipeRefs removes the junction rows and list mark that reference
// recipe, leaving the recipe row itself.
func (t *TxOps) DeleteRecipeRefs(recipeID int64) error {
	ph := t.Placeholder(1)
	if _, err := t.Exec(fmt.Sprintf(`DELETE FROM items_recipes WHERE recipe_id = %s`, ph), recipeID); err != nil {
		return fmt.Errorf("delete ingredients of recipe %d: %w", recipeID, err)
	}
	if _, err := t.Exec(fmt.Sprintf(`DELETE FROM list_recipes WHERE id = %s`, ph), recipeID); err != nil {
		return fmt.Errorf("delete list mark of recipe %d: %w", recipeID, err)
	}
	return nil
}

// IngredientNames returns the names of the items linked to recipe.
func (t *TxOps) IngredientNames(recipeID int64) (model.Ingredients, error) {
	query := fmt.Sprintf(`
		SELECT i.name FROM items i
		JOIN items_recipes ir ON ir.item_id = i.id
		WHERE ir.recipe_id = %s`, t.Placeholder(1))
	rows, err := t.Query(query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("ingredients of recipe %d: %w", recipeID, err)
	}
	names, err := scanStrings(rows)
	if err != nil {
		return nil, err
	}
	return model.NewIngredients(names...), nil
}

// IngredientIDs returns the ids of the items linked to recipe.
func (t *TxOps) IngredientIDs(recipeID int64) ([]int64, error) {
	query := fmt.Sprintf(`SELECT item_id FROM items_recipes WHERE recipe_id = %s ORDER BY item_id`, t.Placeholder(1))
	rows, err := t.Query(query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("ingredient ids of recipe %d: %w", recipeID, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkedItems returns the items on the list or the checklist, in catalog order.
func (t *TxOps) MarkedItems(marks Table) (model.Items, error) {
	rows, err := t.Query(fmt.Sprintf(`
		SELECT i.name FROM items i
		JOIN %s m ON m.item_id = i.id
		ORDER BY i.id`, marks))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", marks, err)
	}
	names, err := scanStrings(rows)
	if err != nil {
		return nil, err
	}
	items := make(model.Items, len(names))
	for i, n := range names {
		items[i] = model.NewItem(n)
	}
	return items, nil
}

// ListRecipeNames returns the recipes on the list, in catalog order.
func (t *TxOps) ListRecipeNames() ([]model.Recipe, error) {
	rows, err := t.Query(`
		SELECT r.name FROM recipes r
		JOIN list_recipes lr ON lr.id = r.id
		ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("read list recipes: %w", err)
	}
	names, err := scanStrings(rows)
	if err != nil {
		return nil, err
	}
	recipes := make([]model.Recipe, len(names))
	for i, n := range names {
		recipes[i] = model.Recipe(n)
	}
	return recipes, nil
}

// CatalogItems returns every item with its section and recipes.
// When an item has several section links the earliest section wins.
func (t *TxOps) CatalogItems() (model.Items, error) {
	rows, err := t.Query(`
		SELECT i.name, COALESCE(s.name, '') FROM items i
		LEFT JOIN items_sections isec ON isec.item_id = i.id
		LEFT JOIN sections s ON s.id = isec.section_id
		ORDER BY i.id, s.id`)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	items := model.Items{}
	index := make(map[string]int)
	for rows.Next() {
		var name, section string
		if err := rows.Scan(&name, &section); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if _, seen := index[name]; seen {
			continue
		}
		index[name] = len(items)
		items = append(items, model.Item{Name: name, Section: section})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	_ = rows.Close()

	rows, err = t.Query(`
		SELECT i.name, r.name FROM items_recipes ir
		JOIN items i ON i.id = ir.item_id
		JOIN recipes r ON r.id = ir.recipe_id
		ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("read item recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item, recipe string
		if err := rows.Scan(&item, &recipe); err != nil {
			return nil, fmt.Errorf("scan item recipe: %w", err)
		}
		if i, ok := index[item]; ok {
			items[i].Recipes = append(items[i].Recipes, recipe)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item recipes: %w", err)
	}
	return items, nil
}
