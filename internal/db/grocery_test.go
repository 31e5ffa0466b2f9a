package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/grocer/internal/db/driver"
	grocererrors "github.com/randalmurphal/grocer/internal/errors"
	"github.com/randalmurphal/grocer/internal/model"
)

func TestAddItem_Idempotent(t *testing.T) {
	t.Parallel()
	gdb := NewTestGroceryDB(t)
	ctx := t.Context()

	require.NoError(t, gdb.AddItem(ctx, "milk"))
	require.NoError(t, gdb.AddItem(ctx, "milk"))

	items, err := gdb.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"milk"}, items.Names())
}

func TestAddItem_CaseSensitive(t *testing.T) {
	t.Parallel()
	gdb := NewTestGroceryDB(t)
	ctx := t.Context()

	require.NoError(t, gdb.AddItem(ctx, "Milk"))
	require.NoError(t, gdb.AddItem(ctx, "milk"))

	items, err := gdb.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Milk", "milk"}, items.Names())
}

func TestAddRecipe_UpsertOrderIndependent(t *testing.T) {
	t.Parallel()
	gdb := NewTestGroceryDB(t)
	ctx := t.Context()

	require.NoError(t, gdb.AddRecipe(ctx, "soup", model.Ingredients{"onion", "carrot"}))
	require.NoError(t, gdb.AddItem(ctx, "carrot"))

	items, err := gdb.Items(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"carrot", "onion"}, items.Names())

	ingredients, ok, err := gdb.RecipeIngredients(ctx, "soup")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.NewIngredients("carrot", "onion"), ingredients)

	carrot, _ := items.Find("carrot")
	assert.Equal(t, []string{"soup"}, carrot.Recipes)
}

func TestRecipeIngredients_NotFoundVersusEmpty(t *testing.T) {
	t.Parallel()
	gdb := NewTestGroceryDB(t)
	ctx := t.Context()

	_, ok, err := gdb.RecipeIngredients(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, gdb.AddRecipe(ctx, "toast", nil))
	ingredients, ok, err := gdb.RecipeIngredients(ctx, "toast")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, ingredients)
}

func TestAddListRecipe(t *testing.T) {
	t.Parallel()
	gdb := NewTestGroceryDB(t)
	ctx := t.Context()

	require.NoError(t, gdb.AddRecipe(ctx, "pancakes", model.Ingredients{"flour", "eggs", "milk"}))
	require.NoError(t, gdb.AddListRecipe(ctx, "pancakes"))

	list, err := gdb.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Recipe{"pancakes"}, list.Recipes)
	assert.ElementsMatch(t, []string{"flour", "eggs", "milk"}, list.Items.Names())
	assert.Empty(t, list.Checklist)
}

func TestAddListRecipe_MissingIngredientsLeavesListUnchanged(t *testing.T) {
	t.Parallel()
	gdb := NewTestGroceryDB(t)
	ctx := t.Context()

	require.NoError(t, gdb.AddListItem(ctx, "bread"))
	before := RowCounts(t, gdb)

	err := gdb.AddListRecipe(ctx, "unknown recipe")
	require.Error(t, err)
	assert.True(t, errors.Is(err, grocererrors.ErrRecipeIngredientsNotFound))
	assert.Equal(t, grocererrors.KindConstraintViolation, grocererrors.KindOf(err))

	require.NoError(t, gdb.AddRecipe(ctx, "air", nil))
	err = gdb.AddListRecipe(ctx, "air")
	assert.True(t, errors.Is(err, grocererrors.ErrRecipeIngredientsNotFound))

	after := RowCounts(t, gdb)
	assert.Equal(t, before[TableList], after[TableList])
	assert.Equal(t, before[TableListRecipes], after[TableListRecipes])
}

func TestRefreshList_KeepsChecklistAndCatalog(t *testing.T) {
	t.Parallel()
	gdb := NewTestGroceryDB(t)
	ctx := t.Context()

	require.NoError(t, gdb.AddListItem(ctx, "eggs"))
	require.NoError(t, gdb.AddChecklistItem(ctx, "eggs"))
	require.NoError(t, gdb.AddRecipe(ctx, "omelette", model.Ingredients{"eggs"}))
	require.NoError(t, gdb.AddListRecipe(ctx, "omelette"))

	require.NoError(t, gdb.RefreshList(ctx))

	list, err := gdb.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Empty(t, list.Recipes)
	assert.Equal(t, []string{"eggs"}, list.Checklist.Names())

	items, err := gdb.Items(ctx)
	require.NoError(t, err)
	assert.True(t, items.Contains("eggs"))
}

func TestDeleteRecipe_CascadesJunctions(t *testing.T) {
	t.Parallel()
	gdb := NewTestGroceryDB(t)
	ctx := t.Context()

	require.NoError(t, gdb.AddRecipe(ctx, "stew", model.Ingredients{"beef"}))
	require.NoError(t, gdb.AddListRecipe(ctx, "stew"))
	require.NoError(t, gdb.DeleteRecipe(ctx, "stew"))

	_, ok, err := gdb.RecipeIngredients(ctx, "stew")
	require.NoError(t, err)
	assert.False(t, ok)

	counts := RowCounts(t, gdb)
	assert.Zero(t, counts[TableItemsRecipes])
	assert.Zero(t, counts[TableListRecipes])
	assert.Zero(t, counts[TableRecipes])

	items, err := gdb.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beef"}, items.Names())
}

func TestDeleteRecipe_Unknown(t *testing.T) {
	t.Parallel()
	gdb := NewTestGroceryDB(t)

	err := gdb.DeleteRecipe(t.Context(), "ghost")
	assert.True(t, errors.Is(err, grocererrors.ErrRecipeNotFound))
	assert.Equal(t, grocererrors.KindNotFound, grocererrors.KindOf(err))
}

func TestChecklistAndListAreOrthogonal(t *testing.T) {
	t.Parallel()
	gdb := NewTestGroceryDB(t)
	ctx := t.Context()

	require.NoError(t, gdb.AddChecklistItem(ctx, "salt"))
	require.NoError(t, gdb.AddListItem(ctx, "salt"))
	require.NoError(t, gdb.DeleteChecklistItem(ctx, "salt"))

	list, err := gdb.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list.Checklist)
	assert.Equal(t, []string{"salt"}, list.Items.Names())

	require.NoError(t, gdb.AddChecklistItem(ctx, "pepper"))
	require.NoError(t, gdb.DeleteListItem(ctx, "salt"))
	require.NoError(t, gdb.DeleteListItem(ctx, "never-added"))

	list, err = gdb.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Equal(t, []string{"pepper"}, list.Checklist.Names())

	require.NoError(t, gdb.ClearChecklist(ctx))
	checklist, err := gdb.Checklist(ctx)
	require.NoError(t, err)
	assert.Empty(t, checklist)
}

func TestSetItemSection_Replaces(t *testing.T) {
	t.Parallel()
	gdb := NewTestGroceryDB(t)
	ctx := t.Context()

	require.NoError(t, gdb.SetItemSection(ctx, "milk", "fresh"))
	require.NoError(t, gdb.SetItemSection(ctx, "milk", "dairy"))

	items, err := gdb.Items(ctx)
	require.NoError(t, err)
	milk, ok := items.Find("milk")
	require.True(t, ok)
	assert.Equal(t, "dairy", milk.Section)

	sections, err := gdb.Sections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Section{"fresh", "dairy"}, sections)
	assert.Equal(t, 1, RowCounts(t, gdb)[TableItemsSections])
}

func TestLookupIDs_UniqueNames(t *testing.T) {
	t.Parallel()
	gdb := NewTestGroceryDB(t)

	err := gdb.RunInTx(t.Context(), func(tx *TxOps) error {
		first, err := tx.GetOrInsertID(TableSections, "pantry")
		if err != nil {
			return err
		}
		second, err := tx.GetOrInsertID(TableSections, "pantry")
		if err != nil {
			return err
		}
		assert.Equal(t, first, second)

		ids, err := tx.LookupIDs(TableSections, "pantry")
		if err != nil {
			return err
		}
		assert.Equal(t, []int64{first}, ids)

		ids, err = tx.LookupIDs(TableSections, "nowhere")
		assert.Empty(t, ids)
		return err
	})
	require.NoError(t, err)
}

func TestRunInTx_RollsBack(t *testing.T) {
	t.Parallel()
	gdb := NewTestGroceryDB(t)
	boom := errors.New("boom")

	err := gdb.RunInTx(t.Context(), func(tx *TxOps) error {
		if err := tx.InsertName(TableItems, "ghost"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	items, err := gdb.Items(t.Context())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRunInTx_PoolExhausted(t *testing.T) {
	t.Parallel()

	gdb, err := OpenGroceryWithDialect(":memory:", driver.DialectSQLite, driver.Pool{AcquireTimeout: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = gdb.Close() })

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- gdb.RunInTx(context.Background(), func(tx *TxOps) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err = gdb.AddItem(t.Context(), "milk")
	close(release)
	require.NoError(t, <-done)

	require.Error(t, err)
	assert.True(t, errors.Is(err, grocererrors.ErrPoolExhausted))
	assert.Equal(t, grocererrors.KindStoreIO, grocererrors.KindOf(err))

	require.NoError(t, gdb.AddItem(t.Context(), "milk"))
}
