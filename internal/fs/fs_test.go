package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blob.snap")

	require.NoError(t, WriteAtomic(Default, path, []byte("first")))
	require.NoError(t, WriteAtomic(Default, path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not survive")
}

func TestWriteAtomic_WriteFault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.snap")
	require.NoError(t, WriteAtomic(Default, path, []byte("old")))

	ffs := NewFaultyFS(nil)
	ffs.AddRule("blob.snap", Fault{FailAfterBytes: 2})

	err := WriteAtomic(ffs, path, []byte("new content"))
	require.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, int64(0), ffs.Written())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomic_SyncAndRenameFaults(t *testing.T) {
	dir := t.TempDir()

	ffs := NewFaultyFS(nil)
	ffs.AddRule("sync.snap", Fault{FailAfterBytes: -1, FailOnSync: true})
	ffs.AddRule("rename.snap", Fault{FailAfterBytes: -1, FailOnRename: true, Err: os.ErrPermission})

	err := WriteAtomic(ffs, filepath.Join(dir, "sync.snap"), []byte("x"))
	assert.ErrorIs(t, err, ErrInjected)

	err = WriteAtomic(ffs, filepath.Join(dir, "rename.snap"), []byte("y"))
	assert.ErrorIs(t, err, os.ErrPermission)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, WriteAtomic(ffs, filepath.Join(dir, "fine.snap"), []byte("ok")))
	assert.Equal(t, int64(len("x")+len("y")+len("ok")), ffs.Written())
}
