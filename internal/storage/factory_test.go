package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/grocer/internal/config"
	"github.com/randalmurphal/grocer/internal/document"
	grocererrors "github.com/randalmurphal/grocer/internal/errors"
)

func TestNewBackend_Drivers(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tests := []struct {
		driver config.StorageDriver
		want   any
		file   string
	}{
		{config.DriverJSON, &DocumentBackend{}, document.GroceriesFile},
		{config.DriverBolt, &DocumentBackend{}, "grocer.bolt"},
		{config.DriverSQLite, &DatabaseBackend{}, "grocer.db"},
	}

	for _, tt := range tests {
		t.Run(string(tt.driver), func(t *testing.T) {
			t.Parallel()
			sub := filepath.Join(dir, string(tt.driver))
			cfg := config.Default().Storage
			cfg.Driver = tt.driver
			cfg.JSON.Dir = sub
			cfg.Bolt.Path = filepath.Join(sub, "grocer.bolt")
			cfg.SQLite.Path = filepath.Join(sub, "grocer.db")

			b, err := NewBackend(t.Context(), &cfg, nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })
			assert.IsType(t, tt.want, b)

			require.NoError(t, b.AddItem(t.Context(), "milk"))
			_, err = os.Stat(filepath.Join(sub, tt.file))
			assert.NoError(t, err)
		})
	}
}

func TestNewBackend_UnknownDriver(t *testing.T) {
	t.Parallel()
	cfg := config.Default().Storage
	cfg.Driver = "mongo"

	_, err := NewBackend(t.Context(), &cfg, nil)
	require.Error(t, err)
	assert.Equal(t, grocererrors.KindConfig, grocererrors.KindOf(err))

	cfg.Driver = config.DriverJSON
	_, err = OpenDatabase(&cfg)
	assert.Equal(t, grocererrors.KindConfig, grocererrors.KindOf(err))
}

func TestNewBackend_OpenFailuresAreStoreIO(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	tests := []struct {
		driver config.StorageDriver
	}{
		{config.DriverSQLite},
		{config.DriverBolt},
	}

	for _, tt := range tests {
		t.Run(string(tt.driver), func(t *testing.T) {
			t.Parallel()
			cfg := config.Default().Storage
			cfg.Driver = tt.driver
			cfg.SQLite.Path = filepath.Join(blocker, "grocer.db")
			cfg.Bolt.Path = filepath.Join(blocker, "grocer.bolt")

			_, err := NewBackend(t.Context(), &cfg, nil)
			require.Error(t, err)
			assert.Equal(t, grocererrors.KindStoreIO, grocererrors.KindOf(err))
			assert.True(t, errors.Is(err, grocererrors.ErrStoreIO))
		})
	}
}

func TestRedactDSN(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "postgres://app:xxxxx@db:5432/grocer", redactDSN("postgres://app:secret@db:5432/grocer"))
	assert.Equal(t, "/tmp/grocer.db", redactDSN("/tmp/grocer.db"))
}
