// Package migrate copies a grocery document store into the relational
// schema. The migration replays the document through the same
// get-or-insert primitives the database backend uses, so re-running it
// against an already migrated database changes nothing.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/randalmurphal/grocer/internal/db"
	"github.com/randalmurphal/grocer/internal/document"
	grocererrors "github.com/randalmurphal/grocer/internal/errors"
)

// Options controls a migration run.
type Options struct {
	// DryRun computes the report without writing to the database.
	DryRun bool
	// Logger receives progress; nil uses slog.Default().
	Logger *slog.Logger
}

// Report counts what a run wrote, or would write on a dry run. Counts are
// of distinct source entries; rows that already existed are included.
type Report struct {
	RunID        string `json:"run_id"`
	DryRun       bool   `json:"dry_run"`
	Sections     int    `json:"sections"`
	Recipes      int    `json:"recipes"`
	Items        int    `json:"items"`
	ItemRecipes  int    `json:"item_recipes"`
	ItemSections int    `json:"item_sections"`
	ListItems    int    `json:"list_items"`
	ListRecipes  int    `json:"list_recipes"`
	Checklist    int    `json:"checklist"`
	// SkippedListRecipes are list recipes left off the list because no
	// item names them as an ingredient.
	SkippedListRecipes []string `json:"skipped_list_recipes,omitempty"`
}

// plan is the normalized view of a snapshot.
type plan struct {
	sections    []string
	recipes     []string
	items       []planItem
	listItems   []string
	listRecipes []string
	checklist   []string
	skipped     []string
}

type planItem struct {
	name    string
	section string
	recipes []string
}

// Run loads the whole document from src and writes it into dst in one
// transaction. dst is not touched on a dry run and may be nil.
func Run(ctx context.Context, src document.Sink, dst *db.GroceryDB, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	report := &Report{RunID: uuid.NewString(), DryRun: opts.DryRun}
	logger = logger.With("run_id", report.RunID)

	snap, err := src.Load(ctx)
	if err != nil {
		return nil, grocererrors.StoreIO("load source documents", err)
	}

	p := buildPlan(snap)
	p.fill(report)
	logger.Info("migration planned",
		"dry_run", opts.DryRun,
		"sections", report.Sections,
		"recipes", report.Recipes,
		"items", report.Items)
	for _, r := range p.skipped {
		logger.Warn("list recipe has no ingredients, not marking it on the list", "recipe", r)
	}

	if opts.DryRun {
		return report, nil
	}
	if dst == nil {
		return nil, fmt.Errorf("migrate: no target database")
	}

	err = dst.RunInTx(ctx, func(tx *db.TxOps) error {
		return p.apply(tx, logger)
	})
	if err != nil {
		return nil, grocererrors.StoreIO("migrate documents", err)
	}

	logger.Info("migration complete",
		"item_recipes", report.ItemRecipes,
		"item_sections", report.ItemSections,
		"list_items", report.ListItems,
		"checklist", report.Checklist)
	return report, nil
}

// buildPlan collects the section and recipe unions and the per-item links.
func buildPlan(snap *document.Snapshot) *plan {
	p := &plan{}

	for _, s := range snap.Groceries.Sections {
		p.sections = appendUnique(p.sections, s)
	}
	for _, it := range snap.Groceries.Collection {
		p.sections = appendUnique(p.sections, it.Section)
	}

	for _, it := range snap.Groceries.Collection {
		for _, r := range it.Recipes {
			p.recipes = appendUnique(p.recipes, r)
		}
	}
	for _, r := range snap.Groceries.Recipes {
		p.recipes = appendUnique(p.recipes, r)
	}
	for _, r := range snap.List.Recipes {
		p.recipes = appendUnique(p.recipes, string(r))
	}

	seen := make(map[string]int)
	used := make(map[string]bool)
	for _, it := range snap.Groceries.Collection {
		if it.Name == "" {
			continue
		}
		i, ok := seen[it.Name]
		if !ok {
			i = len(p.items)
			seen[it.Name] = i
			p.items = append(p.items, planItem{name: it.Name})
		}
		if it.Section != "" && p.items[i].section == "" {
			p.items[i].section = it.Section
		}
		for _, r := range it.Recipes {
			if r == "" {
				continue
			}
			p.items[i].recipes = appendUnique(p.items[i].recipes, r)
			used[r] = true
		}
	}

	for _, it := range snap.List.Items {
		p.listItems = appendUnique(p.listItems, it.Name)
	}
	for _, it := range snap.List.Checklist {
		p.checklist = appendUnique(p.checklist, it.Name)
	}
	for _, r := range snap.List.Recipes {
		name := string(r)
		if name == "" || slices.Contains(p.listRecipes, name) || slices.Contains(p.skipped, name) {
			continue
		}
		if used[name] {
			p.listRecipes = append(p.listRecipes, name)
		} else {
			p.skipped = append(p.skipped, name)
		}
	}

	return p
}

func (p *plan) fill(r *Report) {
	r.Sections = len(p.sections)
	r.Recipes = len(p.recipes)
	r.ListItems = len(p.listItems)
	r.ListRecipes = len(p.listRecipes)
	r.Checklist = len(p.checklist)
	r.SkippedListRecipes = p.skipped

	items := make(map[string]bool)
	for _, it := range p.items {
		items[it.name] = true
		r.ItemRecipes += len(it.recipes)
		if it.section != "" {
			r.ItemSections++
		}
	}
	for _, n := range p.listItems {
		items[n] = true
	}
	for _, n := range p.checklist {
		items[n] = true
	}
	r.Items = len(items)
}

// apply writes the plan: sections, then recipes, then items with their
// links, then the list and checklist marks.
func (p *plan) apply(tx *db.TxOps, logger *slog.Logger) error {
	for _, s := range p.sections {
		if err := tx.InsertName(db.TableSections, s); err != nil {
			return err
		}
	}
	logger.Debug("sections migrated", "count", len(p.sections))

	for _, r := range p.recipes {
		if err := tx.InsertName(db.TableRecipes, r); err != nil {
			return err
		}
	}
	logger.Debug("recipes migrated", "count", len(p.recipes))

	for _, it := range p.items {
		itemID, err := tx.GetOrInsertID(db.TableItems, it.name)
		if err != nil {
			return err
		}
		for _, r := range it.recipes {
			recipeID, err := lookupOne(tx, db.TableRecipes, r)
			if err != nil {
				return err
			}
			if err := tx.LinkItemRecipe(itemID, recipeID); err != nil {
				return err
			}
		}
		if it.section != "" {
			sectionID, err := lookupOne(tx, db.TableSections, it.section)
			if err != nil {
				return err
			}
			if err := tx.LinkItemSection(itemID, sectionID); err != nil {
				return err
			}
		}
	}
	logger.Debug("items migrated", "count", len(p.items))

	if err := markItems(tx, db.TableList, p.listItems); err != nil {
		return err
	}
	if err := markItems(tx, db.TableChecklist, p.checklist); err != nil {
		return err
	}
	for _, r := range p.listRecipes {
		recipeID, err := lookupOne(tx, db.TableRecipes, r)
		if err != nil {
			return err
		}
		if err := tx.MarkListRecipe(recipeID); err != nil {
			return err
		}
	}
	logger.Debug("list migrated",
		"list_items", len(p.listItems),
		"list_recipes", len(p.listRecipes),
		"checklist", len(p.checklist))
	return nil
}

func markItems(tx *db.TxOps, marks db.Table, names []string) error {
	for _, n := range names {
		itemID, err := tx.GetOrInsertID(db.TableItems, n)
		if err != nil {
			return err
		}
		if err := tx.MarkItem(marks, itemID); err != nil {
			return err
		}
	}
	return nil
}

// lookupOne resolves name to its id and fails unless exactly one row
// matches.
func lookupOne(tx *db.TxOps, table db.Table, name string) (int64, error) {
	ids, err := tx.LookupIDs(table, name)
	if err != nil {
		return 0, err
	}
	return expectOne(table, name, ids)
}

func expectOne(table db.Table, name string, ids []int64) (int64, error) {
	if len(ids) != 1 {
		return 0, grocererrors.ErrMigrationAssertionFailed(string(table), name, len(ids))
	}
	return ids[0], nil
}

func appendUnique(list []string, s string) []string {
	if s == "" || slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}

// String summarizes the report on one line.
func (r *Report) String() string {
	verb := "migrated"
	if r.DryRun {
		verb = "would migrate"
	}
	return fmt.Sprintf("%s %d sections, %d recipes, %d items (%d recipe links, %d section links), list: %d items, %d recipes, checklist: %d items",
		verb, r.Sections, r.Recipes, r.Items, r.ItemRecipes, r.ItemSections, r.ListItems, r.ListRecipes, r.Checklist)
}
