package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/grocer/internal/config"
	"github.com/randalmurphal/grocer/internal/db"
	"github.com/randalmurphal/grocer/internal/document"
	"github.com/randalmurphal/grocer/internal/migrate"
	"github.com/randalmurphal/grocer/internal/storage"
)

// newMigrateCmd creates the migrate command
func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate data between storage formats",
		Long: `Migrate data from the document store into the relational store.

Commands:
  json-to-db    Copy the JSON (or bbolt) documents into the database`,
	}

	cmd.AddCommand(newMigrateJSONToDBCmd())

	return cmd
}

// newMigrateJSONToDBCmd creates the json-to-db subcommand
func newMigrateJSONToDBCmd() *cobra.Command {
	var (
		dryRun   bool
		fromDir  string
		fromBolt string
	)

	cmd := &cobra.Command{
		Use:   "json-to-db",
		Short: "Migrate the document store to the database",
		Long: `Copy groceries.json and list.json into the relational store.

The target is the configured database. When storage.driver names a document
store, the SQLite file at storage.sqlite.path is used. Re-running the
migration changes nothing; rows already present are kept.

Examples:
  grocer migrate json-to-db                      # migrate ./groceries.json and ./list.json
  grocer migrate json-to-db --dry-run            # report what would be written
  grocer migrate json-to-db --from ~/groceries   # read documents from another directory
  grocer migrate json-to-db --from-bolt grocer.bolt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := loadConfig()
			if err != nil {
				return err
			}
			cfg := tc.Config.Storage
			logger := slog.Default()

			var src document.Sink
			switch {
			case fromBolt != "":
				sink, err := document.OpenBoltSink(fromBolt, logger)
				if err != nil {
					return err
				}
				src = sink
			case fromDir != "":
				src = document.NewFileSink(fromDir, logger)
			default:
				src = document.NewFileSink(cfg.JSON.Dir, logger)
			}
			defer func() { _ = src.Close() }()

			// A dry run only plans, so the target is never opened or created.
			var dst *db.GroceryDB
			if !dryRun {
				if cfg.Driver.IsDocument() {
					logger.Debug("document driver configured, migrating into sqlite", "path", cfg.SQLite.Path)
					cfg.Driver = config.DriverSQLite
				}
				dst, err = storage.OpenDatabase(&cfg)
				if err != nil {
					return err
				}
				defer func() { _ = dst.Close() }()
			}

			report, err := migrate.Run(cmd.Context(), src, dst, migrate.Options{
				DryRun: dryRun,
				Logger: logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, report)
			}
			fmt.Fprintln(out, report)
			for _, r := range report.SkippedListRecipes {
				fmt.Fprintf(out, "skipped list recipe %s: no ingredients\n", r)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be migrated without writing")
	cmd.Flags().StringVar(&fromDir, "from", "", "directory holding groceries.json and list.json (default storage.json.dir)")
	cmd.Flags().StringVar(&fromBolt, "from-bolt", "", "read the documents from a bbolt file instead")
	cmd.MarkFlagsMutuallyExclusive("from", "from-bolt")

	return cmd
}
