package cli

// This file contains shared helpers used across commands.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/grocer/internal/config"
	"github.com/randalmurphal/grocer/internal/storage"
)

// loadConfig loads the merged configuration for the current invocation.
func loadConfig() (*config.TrackedConfig, error) {
	return config.LoadWithSources(configPath)
}

// withBackend opens the configured backend, runs fn against it and closes
// it. Storage calls are counted on a private registry that is written to
// --metrics-file after fn returns.
func withBackend(cmd *cobra.Command, fn func(ctx context.Context, b storage.Backend) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	tc, err := loadConfig()
	if err != nil {
		return err
	}

	logger := slog.Default()
	backend, err := storage.NewBackend(ctx, &tc.Config.Storage, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	instrumented, err := storage.NewInstrumented(backend, reg)
	if err != nil {
		_ = backend.Close()
		return fmt.Errorf("register storage metrics: %w", err)
	}
	defer func() {
		if cerr := instrumented.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close storage: %w", cerr)
		}
	}()

	err = fn(ctx, instrumented)

	if metricsFile != "" {
		if werr := prometheus.WriteToTextfile(metricsFile, reg); werr != nil {
			logger.Warn("failed to write metrics file", "path", metricsFile, "error", werr)
		}
	}
	return err
}

// isTerminal reports whether stdout is an interactive terminal.
func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// printJSON writes v as indented JSON.
func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printNames writes one name per line. On a terminal the names get a
// header; piped output stays bare so it composes with other tools.
func printNames[S ~string](out io.Writer, header string, names []S) error {
	if jsonOut {
		if names == nil {
			names = []S{}
		}
		return printJSON(out, names)
	}
	if isTerminal() && header != "" {
		fmt.Fprintf(out, "%s (%d)\n", header, len(names))
	}
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}

// newTable returns a tab-aligned writer for multi-column output.
func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

// done prints a confirmation unless --quiet or --json is set.
func done(out io.Writer, format string, args ...any) {
	if quiet || jsonOut {
		return
	}
	fmt.Fprintf(out, format+"\n", args...)
}
