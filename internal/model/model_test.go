package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIngredients_SortsAndDeduplicates(t *testing.T) {
	got := NewIngredients("onion", "carrot", "onion", "", "  ", "beef")

	assert.Equal(t, Ingredients{"beef", "carrot", "onion"}, got)
	assert.True(t, got.Contains("carrot"))
	assert.False(t, got.Contains("leek"))
}

func TestIngredients_EqualIgnoresInputOrder(t *testing.T) {
	a := NewIngredients("carrot", "onion")
	b := NewIngredients("onion", "carrot")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(NewIngredients("carrot")))
}

func TestItems_FindAndNames(t *testing.T) {
	items := Items{
		{Name: "milk", Section: "dairy"},
		{Name: "eggs"},
	}

	got, ok := items.Find("milk")
	assert.True(t, ok)
	assert.Equal(t, "dairy", got.Section)

	_, ok = items.Find("Milk")
	assert.False(t, ok, "names are case-sensitive")

	assert.Equal(t, []string{"milk", "eggs"}, items.Names())
}

func TestItem_CloneIsDeep(t *testing.T) {
	orig := Item{Name: "carrot", Recipes: []string{"soup"}}
	cp := orig.Clone()
	cp.Recipes[0] = "stew"

	assert.Equal(t, "soup", orig.Recipes[0])
	assert.True(t, orig.HasRecipe("soup"))
}
