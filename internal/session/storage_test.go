package session

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func openTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, db, err := OpenStorage(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return s
}

func TestOpenStorage_CreatesFileAndRunsMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	_, db, err := OpenStorage(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	require.True(t, tableExists(t, db, "goose_db_version"))
	require.True(t, tableExists(t, db, "metadata"))

	// Migrating again is a no-op.
	require.NoError(t, RunMigrations(ctx, db))
}

func TestSQLiteStorage_SetGetOverwrite(t *testing.T) {
	r := openTestStorage(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestSQLiteStorage_MissingKeyIsNilNil(t *testing.T) {
	v, err := openTestStorage(t).Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSQLiteStorage_DeleteAndClear(t *testing.T) {
	r := openTestStorage(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}))
	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"))

	v, err := r.Get(ctx, "a")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Clear(ctx))
	v, err = r.Get(ctx, "b")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSQLiteStorage_ClosedDBErrors(t *testing.T) {
	s, db, err := OpenStorage(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = s.Get(context.Background(), "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")
	require.ErrorContains(t, s.Set(context.Background(), "k", nil), "failed to set metadata[k]")
}
