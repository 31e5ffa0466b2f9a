package migrate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/grocer/internal/db"
	"github.com/randalmurphal/grocer/internal/document"
	grocererrors "github.com/randalmurphal/grocer/internal/errors"
	"github.com/randalmurphal/grocer/internal/model"
)

const groceriesJSON = `{
  "collection": [
    {"name": "milk", "section": "dairy", "recipes": ["pancakes"]},
    {"name": "eggs", "section": "dairy", "recipes": ["pancakes", "omelette"]},
    {"name": "flour", "section": "pantry", "recipes": ["pancakes"]},
    {"name": "beef", "section": "protein"},
    {"name": "salt"}
  ],
  "sections": ["fresh", "pantry", "dairy", "protein", "freezer"],
  "recipes": ["pancakes", "omelette", "toast"]
}`

const listJSON = `{
  "checklist": [{"name": "salt"}, {"name": "paper towels"}],
  "recipes": ["pancakes", "cake"],
  "items": [{"name": "milk"}, {"name": "bananas"}]
}`

func writeSource(t *testing.T) document.Sink {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, document.GroceriesFile), []byte(groceriesJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, document.ListFile), []byte(listJSON), 0o644))
	return document.NewFileSink(dir, nil)
}

func TestRun_MigratesDocument(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	gdb := db.NewTestGroceryDB(t)

	report, err := Run(ctx, writeSource(t), gdb, Options{})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 5, report.Sections)
	assert.Equal(t, 4, report.Recipes) // pancakes, omelette, toast, cake
	assert.Equal(t, 7, report.Items)
	assert.Equal(t, 4, report.ItemRecipes)
	assert.Equal(t, 4, report.ItemSections)
	assert.Equal(t, 2, report.ListItems)
	assert.Equal(t, 1, report.ListRecipes)
	assert.Equal(t, 2, report.Checklist)
	assert.Equal(t, []string{"cake"}, report.SkippedListRecipes)

	counts := db.RowCounts(t, gdb)
	assert.Equal(t, 5, counts[db.TableSections])
	assert.Equal(t, 4, counts[db.TableRecipes])
	assert.Equal(t, 7, counts[db.TableItems])
	assert.Equal(t, 4, counts[db.TableItemsRecipes])
	assert.Equal(t, 4, counts[db.TableItemsSections])
	assert.Equal(t, 2, counts[db.TableList])
	assert.Equal(t, 1, counts[db.TableListRecipes])
	assert.Equal(t, 2, counts[db.TableChecklist])

	ingredients, ok, err := gdb.RecipeIngredients(ctx, "pancakes")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.NewIngredients("eggs", "flour", "milk"), ingredients)

	_, ok, err = gdb.RecipeIngredients(ctx, "toast")
	require.NoError(t, err)
	assert.True(t, ok, "catalog recipes without ingredients are still migrated")

	items, err := gdb.Items(ctx)
	require.NoError(t, err)
	eggs, found := items.Find("eggs")
	require.True(t, found)
	assert.Equal(t, "dairy", eggs.Section)
	assert.ElementsMatch(t, []string{"pancakes", "omelette"}, eggs.Recipes)
}

func TestRun_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	gdb := db.NewTestGroceryDB(t)
	src := writeSource(t)

	_, err := Run(ctx, src, gdb, Options{})
	require.NoError(t, err)
	first := db.RowCounts(t, gdb)
	firstItems, err := gdb.Items(ctx)
	require.NoError(t, err)

	_, err = Run(ctx, src, gdb, Options{})
	require.NoError(t, err)
	second := db.RowCounts(t, gdb)
	secondItems, err := gdb.Items(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstItems, secondItems)
}

func TestRun_MergesWithExistingRows(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	gdb := db.NewTestGroceryDB(t)

	require.NoError(t, gdb.AddRecipe(ctx, "pancakes", model.Ingredients{"butter", "milk"}))

	_, err := Run(ctx, writeSource(t), gdb, Options{})
	require.NoError(t, err)

	ingredients, _, err := gdb.RecipeIngredients(ctx, "pancakes")
	require.NoError(t, err)
	assert.Equal(t, model.NewIngredients("butter", "eggs", "flour", "milk"), ingredients)
	assert.Equal(t, 1, countNamed(t, gdb, db.TableRecipes, "pancakes"))
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	t.Parallel()
	gdb := db.NewTestGroceryDB(t)

	report, err := Run(t.Context(), writeSource(t), gdb, Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 7, report.Items)
	assert.Contains(t, report.String(), "would migrate")

	for table, n := range db.RowCounts(t, gdb) {
		assert.Zero(t, n, "table %s", table)
	}
}

func TestRun_DryRunWithoutTarget(t *testing.T) {
	t.Parallel()

	report, err := Run(t.Context(), writeSource(t), nil, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 7, report.Items)

	_, err = Run(t.Context(), writeSource(t), nil, Options{})
	assert.Error(t, err)
}

func TestRun_EmptySource(t *testing.T) {
	t.Parallel()
	gdb := db.NewTestGroceryDB(t)

	report, err := Run(t.Context(), document.NewFileSink(t.TempDir(), nil), gdb, Options{})
	require.NoError(t, err)
	assert.Zero(t, report.Items)
	assert.Zero(t, db.RowCounts(t, gdb)[db.TableItems])
}

func TestRun_FromBoltSink(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	sink, err := document.OpenBoltSink(filepath.Join(t.TempDir(), "grocer.bolt"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })

	snap := document.NewSnapshot()
	snap.Groceries.Collection = model.Items{{Name: "beef", Section: "protein", Recipes: []string{"stew"}}}
	snap.List.Recipes = []model.Recipe{"stew"}
	require.NoError(t, sink.Save(ctx, snap))

	gdb := db.NewTestGroceryDB(t)
	_, err = Run(ctx, sink, gdb, Options{})
	require.NoError(t, err)

	list, err := gdb.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Recipe{"stew"}, list.Recipes)
}

func TestRun_CorruptSource(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, document.GroceriesFile), []byte("{"), 0o644))

	_, err := Run(t.Context(), document.NewFileSink(dir, nil), db.NewTestGroceryDB(t), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, grocererrors.ErrStoreIO))
}

func TestExpectOne(t *testing.T) {
	t.Parallel()

	id, err := expectOne(db.TableSections, "dairy", []int64{7})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	for _, ids := range [][]int64{nil, {1, 2}} {
		_, err := expectOne(db.TableSections, "dairy", ids)
		require.Error(t, err)
		assert.True(t, errors.Is(err, grocererrors.ErrMigrationAssertion))
		assert.Equal(t, grocererrors.KindMigrationAssertion, grocererrors.KindOf(err))
		assert.Contains(t, err.Error(), "sections")
	}
}

func TestBuildPlan_Unions(t *testing.T) {
	t.Parallel()
	snap := document.NewSnapshot()
	snap.Groceries.Sections = []string{"pantry"}
	snap.Groceries.Collection = model.Items{
		{Name: "rice", Section: "pantry", Recipes: []string{"risotto", "risotto"}},
		{Name: "rice", Section: "grains", Recipes: []string{"pilaf"}},
		{Name: "ice", Section: "freezer"},
	}
	snap.List.Recipes = []model.Recipe{"risotto", "risotto"}

	p := buildPlan(snap)
	assert.Equal(t, []string{"pantry", "grains", "freezer"}, p.sections)
	assert.Equal(t, []string{"risotto", "pilaf"}, p.recipes)
	require.Len(t, p.items, 2)
	assert.Equal(t, planItem{name: "rice", section: "pantry", recipes: []string{"risotto", "pilaf"}}, p.items[0])
	assert.Equal(t, []string{"risotto"}, p.listRecipes)
}

func countNamed(t *testing.T, gdb *db.GroceryDB, table db.Table, name string) int {
	t.Helper()
	var n int
	err := gdb.RunInTx(t.Context(), func(tx *db.TxOps) error {
		ids, err := tx.LookupIDs(table, name)
		n = len(ids)
		return err
	})
	require.NoError(t, err)
	return n
}
