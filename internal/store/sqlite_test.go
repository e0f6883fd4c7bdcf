package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/widgetfeed/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_SetAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	require.NoError(t, Set(ctx, s, "greeting", "hello"))

	got, err := s.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_SetManyOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	require.NoError(t, s.SetMany(ctx, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, s.SetMany(ctx, map[string]string{"a": "3", "b": "4"}))

	a, err := s.Get(ctx, "a")
	require.NoError(t, err)
	b, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "3", a)
	assert.Equal(t, "4", b)
}

func TestSQLiteStore_SetManyEmpty(t *testing.T) {
	s := newTestSQLiteStore(t)
	assert.NoError(t, s.SetMany(context.Background(), nil))
}

func TestSQLiteStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	require.NoError(t, s.SetMany(ctx, map[string]string{"a": "1", "b": "2", "c": "3"}))
	require.NoError(t, s.Delete(ctx, "a", "b"))

	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := s.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "3", c)
}

func TestSQLiteStore_DeleteMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	assert.NoError(t, s.Delete(ctx, "nope"))
	assert.NoError(t, s.Delete(ctx))
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "widget.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, Set(ctx, s, "k", "v"))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestOpen_SQLiteDefaultsToDataDir(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(model.StoreConfig{Backend: model.BackendSQLite}, dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.FileExists(t, DefaultDBPath(dir))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(model.StoreConfig{Backend: "etcd"}, t.TempDir())
	assert.ErrorContains(t, err, "unknown store backend")
}
