package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	data, err := ReadFile(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = ReadFile(nil, filepath.Join(dir, "missing.txt"))
	assert.True(t, errors.Is(err, merr.ErrNotFound))

	_, err = ReadFile(nil, dir)
	assert.True(t, errors.Is(err, merr.ErrIOFailure))
}

func TestAtomicWriteReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, AtomicWrite(nil, path, []byte("first")))
	require.NoError(t, AtomicWrite(nil, path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPerm, st.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestAtomicWriteMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "out.txt")
	err := AtomicWrite(nil, path, []byte("x"))
	assert.True(t, errors.Is(err, merr.ErrIOFailure))
	assert.False(t, Exists(nil, path))
}

func TestAtomicWriteReadOnlyFs(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/data/out.txt", []byte("old"), 0o644))

	ro := afero.NewReadOnlyFs(base)
	err := AtomicWrite(ro, "/data/out.txt", []byte("new"))
	assert.True(t, errors.Is(err, merr.ErrIOFailure))

	data, err := ReadFile(base, "/data/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "old", string(data), "prior content must survive a failed write")
}

func TestMemFs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/x", 0o755))
	require.NoError(t, AtomicWrite(fsys, "/x/a.bin", []byte{1, 2, 3}))
	assert.True(t, Exists(fsys, "/x/a.bin"))

	data, err := ReadFile(fsys, "/x/a.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = ReadFile(fsys, "/x/b.bin")
	assert.True(t, errors.Is(err, merr.ErrNotFound))
}

func TestEmptyName(t *testing.T) {
	err := AtomicWrite(afero.NewMemMapFs(), "/x/", nil)
	assert.True(t, errors.Is(err, merr.ErrIOFailure))
}
