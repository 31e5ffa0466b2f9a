package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	grocererrors "github.com/randalmurphal/grocer/internal/errors"
	"github.com/randalmurphal/grocer/internal/model"
	"github.com/randalmurphal/grocer/internal/storage"
)

// newShowCmd creates the show command and its subcommands.
func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the catalog, recipes or list",
		Long: `Show what is stored.

Examples:
  grocer show items              # catalog with sections and recipes
  grocer show item milk          # one item
  grocer show recipe pancakes    # ingredients of one recipe
  grocer show list               # shopping list and checklist
  grocer show list --json        # same, as JSON`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "items",
		Short: "Show the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b storage.Backend) error {
				items, err := b.Items(ctx)
				if err != nil {
					return err
				}
				return printItems(cmd.OutOrStdout(), items)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "item <name>",
		Short: "Show one item with its section and recipes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b storage.Backend) error {
				items, err := b.Items(ctx)
				if err != nil {
					return err
				}
				item, ok := items.Find(args[0])
				if !ok {
					return grocererrors.ErrItemNotFoundNamed(args[0])
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), item)
				}
				return printItems(cmd.OutOrStdout(), model.Items{item})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "recipes",
		Short: "Show recipe names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b storage.Backend) error {
				recipes, err := b.Recipes(ctx)
				if err != nil {
					return err
				}
				return printNames(cmd.OutOrStdout(), "Recipes", recipes)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "sections",
		Short: "Show store sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b storage.Backend) error {
				sections, err := b.Sections(ctx)
				if err != nil {
					return err
				}
				return printNames(cmd.OutOrStdout(), "Sections", sections)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "recipe <name>",
		Short: "Show the ingredients of a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b storage.Backend) error {
				ingredients, ok, err := b.RecipeIngredients(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return grocererrors.ErrRecipeNotFoundNamed(args[0])
				}
				return printNames(cmd.OutOrStdout(), args[0], []string(ingredients))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "checklist",
		Short: "Show the checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b storage.Backend) error {
				items, err := b.Checklist(ctx)
				if err != nil {
					return err
				}
				return printNames(cmd.OutOrStdout(), "Checklist", items.Names())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the shopping list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b storage.Backend) error {
				list, err := b.List(ctx)
				if err != nil {
					return err
				}
				return printList(cmd.OutOrStdout(), list)
			})
		},
	})

	return cmd
}

// printItems writes one row per item: name, section, recipes.
func printItems(out io.Writer, items model.Items) error {
	if jsonOut {
		if items == nil {
			items = model.Items{}
		}
		return printJSON(out, items)
	}

	tw := newTable(out)
	if isTerminal() {
		fmt.Fprintln(tw, "ITEM\tSECTION\tRECIPES")
	}
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.Name, it.Section, strings.Join(it.Recipes, ", "))
	}
	return tw.Flush()
}

// printList writes the list items, list recipes and checklist as three
// blocks.
func printList(out io.Writer, list model.List) error {
	if jsonOut {
		return printJSON(out, list)
	}

	blocks := []struct {
		title string
		names []string
	}{
		{"Items", list.Items.Names()},
		{"Recipes", recipeNames(list.Recipes)},
		{"Checklist", list.Checklist.Names()},
	}
	for i, blk := range blocks {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s:\n", blk.title)
		for _, n := range blk.names {
			fmt.Fprintf(out, "  %s\n", n)
		}
	}
	return nil
}

func recipeNames(recipes []model.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = string(r)
	}
	return out
}
