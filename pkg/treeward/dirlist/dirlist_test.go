package dirlist

import (
	"net"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jamesainslie/treeward/pkg/treeward/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reserved = ".treeward"

func TestListEmptyDirectory(t *testing.T) {
	entries, err := List(t.TempDir(), reserved)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListClassifiesKinds(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("content"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
	require.NoError(t, os.Symlink("../target", filepath.Join(dir, "link")))

	entries, err := List(dir, reserved)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	file := entries["file.txt"]
	assert.Equal(t, File, file.Kind)
	assert.Equal(t, int64(7), file.Size)
	assert.NotZero(t, file.MtimeNanos)

	assert.Equal(t, Dir, entries["subdir"].Kind)

	link := entries["link"]
	assert.Equal(t, Symlink, link.Kind)
	assert.Equal(t, "../target", link.SymlinkTarget)
}

func TestListExcludesReservedName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, reserved), []byte("[metadata]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kept"), []byte("x"), 0o644))

	entries, err := List(dir, reserved)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	_, ok := entries["kept"]
	assert.True(t, ok)
}

func TestListDoesNotFollowSymlinks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "real"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real", "inner"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink("real", filepath.Join(dir, "alias")))

	entries, err := List(dir, reserved)
	require.NoError(t, err)

	// The symlink to a directory is a Symlink, never a Dir.
	assert.Equal(t, Symlink, entries["alias"].Kind)
	assert.Equal(t, "real", entries["alias"].SymlinkTarget)
}

func TestListBrokenSymlinkIsStillSymlink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Symlink("does-not-exist", filepath.Join(dir, "dangling")))

	entries, err := List(dir, reserved)
	require.NoError(t, err)
	assert.Equal(t, Symlink, entries["dangling"].Kind)
	assert.Equal(t, "does-not-exist", entries["dangling"].SymlinkTarget)
}

func TestListRejectsSpecialFiles(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix sockets not applicable")
	}
	dir := t.TempDir()
	sockPath := filepath.Join(dir, "sock")
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Skipf("cannot create unix socket: %v", err)
	}
	defer ln.Close()

	_, err = List(dir, reserved)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidChild))
}

func TestListMissingDirectoryIsIo(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "absent"), reserved)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Io))
}
