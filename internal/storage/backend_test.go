package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grocererrors "github.com/randalmurphal/grocer/internal/errors"
	"github.com/randalmurphal/grocer/internal/model"
)

// eachBackend runs fn as a parallel subtest against a fresh backend of
// every kind.
func eachBackend(t *testing.T, fn func(t *testing.T, ctx context.Context, b Backend)) {
	t.Helper()
	for name, factory := range TestBackendFactories {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fn(t, t.Context(), factory(t))
		})
	}
}

func TestBackend_AddItemIdempotent(t *testing.T) {
	t.Parallel()
	eachBackend(t, func(t *testing.T, ctx context.Context, b Backend) {
		require.NoError(t, b.AddItem(ctx, "milk"))
		require.NoError(t, b.AddItem(ctx, "milk"))

		items, err := b.Items(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"milk"}, items.Names())
	})
}

func TestBackend_RoundTripNames(t *testing.T) {
	t.Parallel()
	names := []string{"Zucchini", "apple", "crème fraîche", "apple ", "Apple"}
	eachBackend(t, func(t *testing.T, ctx context.Context, b Backend) {
		for _, n := range names {
			require.NoError(t, b.AddItem(ctx, n))
		}
		items, err := b.Items(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, names, items.Names())
	})
}

func TestBackend_UpsertOrderIndependence(t *testing.T) {
	t.Parallel()
	eachBackend(t, func(t *testing.T, ctx context.Context, b Backend) {
		require.NoError(t, b.AddRecipe(ctx, "soup", model.Ingredients{"carrot", "onion"}))
		require.NoError(t, b.AddItem(ctx, "carrot"))

		items, err := b.Items(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"carrot", "onion"}, items.Names())

		ingredients, ok, err := b.RecipeIngredients(ctx, "soup")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, model.NewIngredients("carrot", "onion"), ingredients)

		recipes, err := b.Recipes(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.Recipe{"soup"}, recipes)
	})
}

func TestBackend_RecipeIngredientsNotFound(t *testing.T) {
	t.Parallel()
	eachBackend(t, func(t *testing.T, ctx context.Context, b Backend) {
		_, ok, err := b.RecipeIngredients(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, b.AddRecipe(ctx, "water", nil))
		ingredients, ok, err := b.RecipeIngredients(ctx, "water")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, ingredients)
	})
}

func TestBackend_ListRecipePrecondition(t *testing.T) {
	t.Parallel()
	eachBackend(t, func(t *testing.T, ctx context.Context, b Backend) {
		require.NoError(t, b.AddListItem(ctx, "bread"))
		require.NoError(t, b.AddRecipe(ctx, "water", nil))

		for _, recipe := range []string{"unknown recipe", "water"} {
			err := b.AddListRecipe(ctx, recipe)
			require.Error(t, err)
			assert.True(t, errors.Is(err, grocererrors.ErrRecipeIngredientsNotFound), "got %v", err)
			assert.Equal(t, grocererrors.KindConstraintViolation, grocererrors.KindOf(err))
		}

		list, err := b.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"bread"}, list.Items.Names())
		assert.Empty(t, list.Recipes)
	})
}

func TestBackend_AddListRecipe(t *testing.T) {
	t.Parallel()
	eachBackend(t, func(t *testing.T, ctx context.Context, b Backend) {
		require.NoError(t, b.AddRecipe(ctx, "pancakes", model.Ingredients{"flour", "eggs", "milk"}))
		require.NoError(t, b.AddListItem(ctx, "milk"))
		require.NoError(t, b.AddListRecipe(ctx, "pancakes"))
		require.NoError(t, b.AddListRecipe(ctx, "pancakes"))

		list, err := b.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.Recipe{"pancakes"}, list.Recipes)
		assert.ElementsMatch(t, []string{"flour", "eggs", "milk"}, list.Items.Names())

		recipes, err := b.ListRecipes(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.Recipe{"pancakes"}, recipes)
	})
}

func TestBackend_RefreshClearsListOnly(t *testing.T) {
	t.Parallel()
	eachBackend(t, func(t *testing.T, ctx context.Context, b Backend) {
		require.NoError(t, b.AddListItem(ctx, "eggs"))
		require.NoError(t, b.AddChecklistItem(ctx, "eggs"))
		require.NoError(t, b.AddRecipe(ctx, "omelette", model.Ingredients{"eggs"}))
		require.NoError(t, b.AddListRecipe(ctx, "omelette"))

		require.NoError(t, b.RefreshList(ctx))

		list, err := b.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list.Items)
		assert.Empty(t, list.Recipes)

		checklist, err := b.Checklist(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"eggs"}, checklist.Names())

		items, err := b.Items(ctx)
		require.NoError(t, err)
		assert.True(t, items.Contains("eggs"))

		_, ok, err := b.RecipeIngredients(ctx, "omelette")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestBackend_DeleteRecipeCascades(t *testing.T) {
	t.Parallel()
	eachBackend(t, func(t *testing.T, ctx context.Context, b Backend) {
		require.NoError(t, b.AddRecipe(ctx, "stew", model.Ingredients{"beef"}))
		require.NoError(t, b.AddListRecipe(ctx, "stew"))
		require.NoError(t, b.DeleteRecipe(ctx, "stew"))

		_, ok, err := b.RecipeIngredients(ctx, "stew")
		require.NoError(t, err)
		assert.False(t, ok)

		items, err := b.Items(ctx)
		require.NoError(t, err)
		beef, found := items.Find("beef")
		require.True(t, found)
		assert.Empty(t, beef.Recipes)

		recipes, err := b.ListRecipes(ctx)
		require.NoError(t, err)
		assert.Empty(t, recipes)

		err = b.DeleteRecipe(ctx, "stew")
		assert.True(t, errors.Is(err, grocererrors.ErrRecipeNotFound))
		assert.Equal(t, grocererrors.KindNotFound, grocererrors.KindOf(err))
	})
}

func TestBackend_ChecklistOrthogonalToList(t *testing.T) {
	t.Parallel()
	eachBackend(t, func(t *testing.T, ctx context.Context, b Backend) {
		require.NoError(t, b.AddChecklistItem(ctx, "salt"))
		require.NoError(t, b.AddChecklistItem(ctx, "salt"))
		require.NoError(t, b.AddListItem(ctx, "salt"))

		require.NoError(t, b.DeleteChecklistItem(ctx, "salt"))
		require.NoError(t, b.DeleteChecklistItem(ctx, "never-added"))

		list, err := b.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list.Checklist)
		assert.Equal(t, []string{"salt"}, list.Items.Names())

		require.NoError(t, b.DeleteListItem(ctx, "salt"))
		require.NoError(t, b.AddChecklistItem(ctx, "pepper"))
		require.NoError(t, b.AddChecklistItem(ctx, "cumin"))
		require.NoError(t, b.ClearChecklist(ctx))

		list, err = b.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list.Items)
		assert.Empty(t, list.Checklist)

		items, err := b.Items(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"salt", "pepper", "cumin"}, items.Names())
	})
}

func TestBackend_SetItemSection(t *testing.T) {
	t.Parallel()
	eachBackend(t, func(t *testing.T, ctx context.Context, b Backend) {
		require.NoError(t, b.SetItemSection(ctx, "milk", "fresh"))
		require.NoError(t, b.SetItemSection(ctx, "milk", "dairy"))
		require.NoError(t, b.SetItemSection(ctx, "yogurt", "dairy"))

		items, err := b.Items(ctx)
		require.NoError(t, err)
		milk, ok := items.Find("milk")
		require.True(t, ok)
		assert.Equal(t, "dairy", milk.Section)

		sections, err := b.Sections(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.Section{"fresh", "dairy"}, sections)
	})
}
