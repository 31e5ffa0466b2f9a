package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/grocer/internal/config"
)

// newConfigCmd creates the config command with subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and create configuration",
		Long: `View and create grocer configuration.

Configuration is loaded from these sources, later ones winning:
  1. Built-in defaults
  2. .grocer/config.yaml (or $HOME/.grocer/config.yaml, or --config)
  3. Environment variables (GROCER_*)

Examples:
  grocer config show              # merged config as YAML
  grocer config show --source     # each value with where it came from
  grocer config init --driver sqlite`,
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

// newConfigShowCmd creates the 'config show' subcommand.
func newConfigShowCmd() *cobra.Command {
	var showSource bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show merged configuration",
		Long: `Show the merged configuration from all sources.

By default, outputs valid YAML. Use --source to see where each value comes from.
The PostgreSQL password is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := loadConfig()
			if err != nil {
				return err
			}

			masked := *tc.Config
			if masked.Storage.Postgres.Password != "" {
				masked.Storage.Postgres.Password = "****"
			}

			out := cmd.OutOrStdout()
			if showSource {
				return printConfigWithSources(out, tc, &masked)
			}
			if jsonOut {
				return printJSON(out, masked)
			}
			data, err := yaml.Marshal(&masked)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&showSource, "source", false, "show the source of each value")

	return cmd
}

// newConfigInitCmd creates the 'config init' subcommand.
func newConfigInitCmd() *cobra.Command {
	var (
		driver string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .grocer/config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ProjectConfigPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			cfg.Storage.Driver = config.StorageDriver(driver)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "wrote %s", filepath.ToSlash(path))
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", string(config.DriverJSON), "storage driver: json, bolt, sqlite or postgres")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

// printConfigWithSources prints every leaf setting as "path = value (source)".
func printConfigWithSources(out io.Writer, tc *config.TrackedConfig, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flatten config: %w", err)
	}

	values := make(map[string]any)
	flatten(raw, "", values)

	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		_, _ = fmt.Fprintf(out, "%s = %v (%s)\n", path, values[path], tc.GetSource(path))
	}
	return nil
}

func flatten(raw map[string]any, prefix string, out map[string]any) {
	for k, v := range raw {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(nested, path, out)
			continue
		}
		out[path] = v
	}
}
