package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/grocer/internal/storage"
)

// newDeleteCmd creates the delete command and its subcommands.
func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove recipes and list entries",
		Long: `Remove things from the catalog, the shopping list or the checklist.

Removing a list or checklist entry that is not there is not an error.
Deleting an unknown recipe fails.

Examples:
  grocer delete list-item bread
  grocer delete checklist-item "paper towels"
  grocer delete recipe pancakes
  grocer delete checklist         # clear the whole checklist`,
	}

	cmd.AddCommand(newNamesCmd("list-item <name>...", "Take items off the shopping list",
		"removed %d item(s) from the list", storage.Backend.DeleteListItem))
	cmd.AddCommand(newNamesCmd("checklist-item <name>...", "Take items off the checklist",
		"removed %d item(s) from the checklist", storage.Backend.DeleteChecklistItem))
	cmd.AddCommand(newNamesCmd("recipe <name>...", "Delete recipes and their ingredient links",
		"deleted %d recipe(s)", storage.Backend.DeleteRecipe))

	cmd.AddCommand(&cobra.Command{
		Use:   "checklist",
		Short: "Clear the checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b storage.Backend) error {
				if err := b.ClearChecklist(ctx); err != nil {
					return err
				}
				done(cmd.OutOrStdout(), "checklist cleared")
				return nil
			})
		},
	})

	return cmd
}

// newRefreshListCmd creates the refresh-list command.
func newRefreshListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-list",
		Short: "Empty the shopping list",
		Long: `Remove every item and recipe from the shopping list. The catalog and the
checklist are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b storage.Backend) error {
				if err := b.RefreshList(ctx); err != nil {
					return err
				}
				done(cmd.OutOrStdout(), "list refreshed")
				return nil
			})
		},
	}
}
