package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/grocer/internal/model"
	"github.com/randalmurphal/grocer/internal/storage"
)

// newAddCmd creates the add command and its subcommands.
func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add items, recipes and list entries",
		Long: `Add things to the catalog, the shopping list or the checklist.

Adding something that already exists is not an error.

Examples:
  grocer add item milk bread
  grocer add section milk dairy
  grocer add recipe pancakes flour milk eggs
  grocer add list-item bread
  grocer add list-recipe pancakes
  grocer add checklist "paper towels"`,
	}

	cmd.AddCommand(newNamesCmd("item <name>...", "Add items to the catalog",
		"added %d item(s) to the catalog", storage.Backend.AddItem))
	cmd.AddCommand(newNamesCmd("list-item <name>...", "Put items on the shopping list",
		"added %d item(s) to the list", storage.Backend.AddListItem))
	cmd.AddCommand(newNamesCmd("list-recipe <recipe>...", "Put recipes and their ingredients on the shopping list",
		"added %d recipe(s) to the list", storage.Backend.AddListRecipe))
	cmd.AddCommand(newNamesCmd("checklist <name>...", "Add items to the checklist",
		"added %d item(s) to the checklist", storage.Backend.AddChecklistItem))
	cmd.AddCommand(newAddRecipeCmd())
	cmd.AddCommand(newAddSectionCmd())

	return cmd
}

// newNamesCmd builds a subcommand that applies op to every argument in
// order, stopping at the first failure.
func newNamesCmd(use, short, doneFmt string, op func(storage.Backend, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b storage.Backend) error {
				for _, name := range args {
					if err := op(b, ctx, name); err != nil {
						return err
					}
				}
				done(cmd.OutOrStdout(), doneFmt, len(args))
				return nil
			})
		},
	}
}

func newAddRecipeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recipe <name> <ingredient>...",
		Short: "Add a recipe with its ingredients",
		Long: `Add a recipe. Each ingredient is added to the catalog if missing and
linked to the recipe. Re-adding a recipe adds any new ingredients.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe := args[0]
			ingredients := model.NewIngredients(args[1:]...)
			return withBackend(cmd, func(ctx context.Context, b storage.Backend) error {
				if err := b.AddRecipe(ctx, recipe, ingredients); err != nil {
					return err
				}
				done(cmd.OutOrStdout(), "added recipe %s (%s)", recipe, strings.Join(ingredients, ", "))
				return nil
			})
		},
	}
}

func newAddSectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "section <item> <section>",
		Short: "Set the store section of an item",
		Long:  `Set the store section of an item, adding the item and the section if missing.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, section := args[0], args[1]
			return withBackend(cmd, func(ctx context.Context, b storage.Backend) error {
				if err := b.SetItemSection(ctx, item, section); err != nil {
					return err
				}
				done(cmd.OutOrStdout(), "%s is in %s", item, section)
				return nil
			})
		},
	}
}
