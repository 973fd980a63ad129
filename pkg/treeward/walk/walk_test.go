package walk

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesainslie/treeward/pkg/treeward/diff"
	"github.com/jamesainslie/treeward/pkg/treeward/hashfile"
	"github.com/jamesainslie/treeward/pkg/treeward/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f1"), []byte("hello\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "f2"), []byte("world\n"), 0o644))
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "g"), []byte("x"), 0o644))
	return root
}

func initTree(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	m := manifest.New()
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		if e.IsDir() {
			initTree(t, path)
			m.Entries[e.Name()] = manifest.Entry{Kind: manifest.Dir}
			continue
		}
		result, err := hashfile.Hash(path)
		require.NoError(t, err)
		m.Entries[e.Name()] = manifest.Entry{
			Kind:       manifest.File,
			Digest:     result.SHA256,
			MtimeNanos: result.MtimeNanos,
			Size:       result.Size,
		}
	}
	require.NoError(t, manifest.Save(root, m))
}

func TestStatusEmptyAfterInit(t *testing.T) {
	root := buildTree(t)
	initTree(t, root)

	result, err := Status(root, diff.Always)
	require.NoError(t, err)
	assert.Empty(t, result.Changes)
	assert.Equal(t, EmptyFingerprint(), result.Fingerprint)
}

func TestStatusAddRemoveMetadataDrift(t *testing.T) {
	root := buildTree(t)
	initTree(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "f3"), []byte("new"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(root, "f2")))
	future := time.Now().Add(2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "sub", "g"), future, future))

	result, err := Status(root, diff.Never)
	require.NoError(t, err)

	var paths []string
	for _, c := range result.Changes {
		paths = append(paths, c.Path+":"+c.Kind.String())
	}
	assert.Contains(t, paths, "f3:Added")
	assert.Contains(t, paths, "f2:Removed")
	assert.Contains(t, paths, "sub/g:PossiblyModified")
}

func TestStatusPurity(t *testing.T) {
	root := buildTree(t)
	initTree(t, root)

	r1, err := Status(root, diff.WhenPossiblyModified)
	require.NoError(t, err)
	r2, err := Status(root, diff.WhenPossiblyModified)
	require.NoError(t, err)

	assert.Equal(t, r1.Changes, r2.Changes)
	assert.Equal(t, r1.Fingerprint, r2.Fingerprint)
}

func TestStatusUntrackedDirectoryYieldsAllAdded(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b"), []byte("2"), 0o644))

	result, err := Status(root, diff.Never)
	require.NoError(t, err)
	require.Len(t, result.Changes, 2)
	for _, c := range result.Changes {
		assert.Equal(t, diff.Added, c.Kind)
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	changes := []Change{{Path: "a", Kind: diff.Added}, {Path: "b", Kind: diff.Removed}}
	assert.Equal(t, Fingerprint(changes), Fingerprint(changes))

	reordered := []Change{{Path: "b", Kind: diff.Removed}, {Path: "a", Kind: diff.Added}}
	assert.NotEqual(t, Fingerprint(changes), Fingerprint(reordered), "fingerprint depends on order; callers must sort first")
}
