// Package cli implements the grocer command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	verbose     bool
	quiet       bool
	jsonOut     bool
	metricsFile string
)

// newRootCmd builds the command tree. Flags bind to the package-level
// option variables, so each call resets them to their defaults.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "grocer",
		Short: "Grocery catalog, recipes and shopping list",
		Long: `grocer keeps a grocery catalog, a recipe book and a shopping list.

The store is either a pair of JSON documents (or a bbolt file) or a
relational database (SQLite or PostgreSQL). Pick one with storage.driver
in .grocer/config.yaml or GROCER_STORAGE_DRIVER.

Quick start:
  grocer add recipe pancakes flour milk eggs
  grocer add list-recipe pancakes
  grocer show list
  grocer refresh-list
  grocer migrate json-to-db       Copy the JSON store into SQLite`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig()
			setupLogging()
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .grocer/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write storage metrics in Prometheus text format to this file")

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newRefreshListCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the grocer command tree against os.Args.
func Execute() error {
	ctx, cancel := SetupSignalHandler()
	defer cancel()
	return newRootCmd().ExecuteContext(ctx)
}

// initConfig locates the config file. The storage layer reads the file
// itself; viper only does the discovery.
func initConfig() {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".grocer")
		v.AddConfigPath("$HOME/.grocer")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err == nil {
		configPath = v.ConfigFileUsed()
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", configPath)
		}
		return
	}
	configPath = cfgFile
}

// configPath is the config file found by initConfig, empty when none.
var configPath string

func setupLogging() {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
