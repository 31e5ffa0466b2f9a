// Package storage provides test utilities for storage backends.
//
// This file contains test helpers that should be used by all tests
// requiring storage backends. Using these helpers ensures:
// - In-memory databases for speed
// - Proper cleanup via t.Cleanup()
// - Consistent patterns across the codebase
package storage

import (
	"path/filepath"
	"testing"

	"github.com/randalmurphal/grocer/internal/document"
)

// NewTestBackend creates an in-memory database backend for testing.
// The backend is automatically closed when the test completes.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    backend := storage.NewTestBackend(t)
//	    // use backend...
//	}
func NewTestBackend(t testing.TB) *DatabaseBackend {
	t.Helper()

	backend, err := NewInMemoryBackend()
	if err != nil {
		t.Fatalf("create test backend: %v", err)
	}

	t.Cleanup(func() {
		_ = backend.Close()
	})

	return backend
}

// NewTestDocumentBackend creates a document backend over JSON files in a
// temp directory.
func NewTestDocumentBackend(t testing.TB) *DocumentBackend {
	t.Helper()

	backend, err := NewDocumentBackend(t.Context(), document.NewFileSink(t.TempDir(), nil), nil)
	if err != nil {
		t.Fatalf("create test document backend: %v", err)
	}

	t.Cleanup(func() {
		_ = backend.Close()
	})

	return backend
}

// NewTestBoltBackend creates a document backend over a bbolt file in a
// temp directory.
func NewTestBoltBackend(t testing.TB) *DocumentBackend {
	t.Helper()

	sink, err := document.OpenBoltSink(filepath.Join(t.TempDir(), "grocer.bolt"), nil)
	if err != nil {
		t.Fatalf("open test bolt sink: %v", err)
	}
	backend, err := NewDocumentBackend(t.Context(), sink, nil)
	if err != nil {
		_ = sink.Close()
		t.Fatalf("create test bolt backend: %v", err)
	}

	t.Cleanup(func() {
		_ = backend.Close()
	})

	return backend
}

// TestBackendFactories builds a fresh backend of every kind, keyed by name.
var TestBackendFactories = map[string]func(testing.TB) Backend{
	"database": func(t testing.TB) Backend { return NewTestBackend(t) },
	"json":     func(t testing.TB) Backend { return NewTestDocumentBackend(t) },
	"bolt":     func(t testing.TB) Backend { return NewTestBoltBackend(t) },
}
