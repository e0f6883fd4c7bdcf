package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nhle/widgetfeed/internal/store"
)

// NewTestStore opens a migrated in-memory SQLite KV store that is closed
// when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	return openSQLite(t, ":memory:")
}

// NewFileStore opens a SQLite KV store backed by a file in a per-test
// directory and returns it with its path, so tests can reopen it.
func NewFileStore(t *testing.T) (*store.SQLiteStore, string) {
	t.Helper()
	path := store.DefaultDBPath(t.TempDir())
	return openSQLite(t, path), path
}

func openSQLite(t *testing.T, path string) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err, "opening test store")

	t.Cleanup(func() {
		// Tests may close the store themselves to simulate a restart.
		_ = s.Close()
	})

	return s
}
