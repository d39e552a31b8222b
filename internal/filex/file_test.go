package filex

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesNestedDirectory(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "a", "b", "session.db")

	require.NoError(t, EnsureParentDir(target))

	fi, err := os.Stat(filepath.Join(tmp, "a", "b"))
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureParentDir_BareNameIsNoop(t *testing.T) {
	require.NoError(t, EnsureParentDir("session.db"))
}

func TestEnsureParentDir_FailsWhenFileBlocksPath(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	require.Error(t, EnsureParentDir(filepath.Join(blocker, "session.db")))
}

func TestCopyFile_PreservesContentModeAndTime(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "sw.js")
	dst := filepath.Join(tmp, "sw.js.bak")

	require.NoError(t, os.WriteFile(src, []byte("const A = 1;"), 0o640))
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	require.NoError(t, CopyFile(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "const A = 1;", string(got))

	fi, err := os.Stat(dst)
	require.NoError(t, err)
	require.True(t, fi.ModTime().Equal(mtime))
}

func TestCopyFile_MissingSource(t *testing.T) {
	tmp := t.TempDir()
	require.Error(t, CopyFile(filepath.Join(tmp, "nope"), filepath.Join(tmp, "out")))
}

func TestExists(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "f")
	require.False(t, Exists(p))
	require.NoError(t, os.WriteFile(p, nil, 0o600))
	require.True(t, Exists(p))
}
