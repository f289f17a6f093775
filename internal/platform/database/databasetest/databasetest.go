// Package databasetest provides migrated in-memory stores for package tests.
package databasetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/orderdesk/internal/platform/database"
)

// New returns an in-memory sqlite store with every migration applied.
// The store is closed when the test finishes.
func New(t testing.TB) *database.SQLStore {
	t.Helper()

	store, err := database.Open(context.Background(), database.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, database.MigrateUp(store))
	return store
}
