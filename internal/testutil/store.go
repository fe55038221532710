package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rsrepair/internal/fixture"
	"github.com/roach88/rsrepair/internal/store"
)

// OpenStore opens an empty store in a temp directory, closed at cleanup.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// SeedStore opens a store and seeds it from the fixture file at path.
func SeedStore(t *testing.T, path string) *store.Store {
	t.Helper()
	s := OpenStore(t)
	f, err := fixture.Load(path)
	require.NoError(t, err)
	_, err = fixture.Seed(context.Background(), s, f)
	require.NoError(t, err)
	return s
}
