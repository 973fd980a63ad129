package plan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesainslie/treeward/pkg/treeward/diff"
	"github.com/jamesainslie/treeward/pkg/treeward/errs"
	"github.com/jamesainslie/treeward/pkg/treeward/manifest"
	"github.com/jamesainslie/treeward/pkg/treeward/walk"
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
	canonical, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	return canonical
}

func manifestBytes(t *testing.T, dir string) []byte {
	t.Helper()
	data, err := os.ReadFile(manifest.Path(dir))
	require.NoError(t, err)
	return data
}

func TestInitCreatesManifestsRecursively(t *testing.T) {
	root := buildTree(t)

	result, err := Run(root, Options{InitAllowed: true})
	require.NoError(t, err)

	assert.FileExists(t, manifest.Path(root))
	assert.FileExists(t, manifest.Path(filepath.Join(root, "sub")))
	assert.Equal(t, Written, result.Directories[root])
	assert.Equal(t, Written, result.Directories[filepath.Join(root, "sub")])

	status, err := walk.Status(root, diff.Always)
	require.NoError(t, err)
	assert.Empty(t, status.Changes)
	assert.Equal(t, walk.EmptyFingerprint(), status.Fingerprint)
}

func TestParentManifestListsInitializedSubdir(t *testing.T) {
	root := buildTree(t)

	_, err := Run(root, Options{InitAllowed: true})
	require.NoError(t, err)

	m, err := manifest.Load(root)
	require.NoError(t, err)
	entry, ok := m.Entries["sub"]
	require.True(t, ok)
	assert.Equal(t, manifest.Dir, entry.Kind)
}

func TestUpdateWithoutInitFailsNotInitialized(t *testing.T) {
	root := buildTree(t)

	_, err := Run(root, Options{InitAllowed: false})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.NotInitialized))
	assert.NoFileExists(t, manifest.Path(root))
}

func TestSecondPlanWritesNothing(t *testing.T) {
	root := buildTree(t)

	_, err := Run(root, Options{InitAllowed: true})
	require.NoError(t, err)

	second, err := Run(root, Options{})
	require.NoError(t, err)
	for dir, outcome := range second.Directories {
		assert.Equal(t, Unchanged, outcome, "unexpected write in %s", dir)
	}
}

func TestPlanReflectsAddAndRemove(t *testing.T) {
	root := buildTree(t)
	_, err := Run(root, Options{InitAllowed: true})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "f3"), []byte("new"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(root, "f2")))

	result, err := Run(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, Written, result.Directories[root])
	assert.Equal(t, Unchanged, result.Directories[filepath.Join(root, "sub")])

	m, err := manifest.Load(root)
	require.NoError(t, err)
	_, hasF3 := m.Entries["f3"]
	_, hasF2 := m.Entries["f2"]
	assert.True(t, hasF3)
	assert.False(t, hasF2)
}

func TestMetadataDriftAloneDoesNotRewrite(t *testing.T) {
	root := buildTree(t)
	_, err := Run(root, Options{InitAllowed: true})
	require.NoError(t, err)

	subManifest := manifestBytes(t, filepath.Join(root, "sub"))

	// Touch g's mtime without changing content.
	gPath := filepath.Join(root, "sub", "g")
	future := time.Now().Add(2 * time.Hour)
	require.NoError(t, os.Chtimes(gPath, future, future))

	result, err := Run(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, Unchanged, result.Directories[filepath.Join(root, "sub")])
	assert.Equal(t, subManifest, manifestBytes(t, filepath.Join(root, "sub")))
}

func TestFingerprintGateRejectsStaleFingerprint(t *testing.T) {
	root := buildTree(t)
	_, err := Run(root, Options{InitAllowed: true})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "f3"), []byte("new"), 0o644))
	status, err := walk.Status(root, diff.WhenPossiblyModified)
	require.NoError(t, err)

	rootManifest := manifestBytes(t, root)

	// A fourth file arrives after the fingerprint was captured.
	require.NoError(t, os.WriteFile(filepath.Join(root, "f4"), []byte("later"), 0o644))

	_, err = Run(root, Options{ExpectedFingerprint: status.Fingerprint})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.FingerprintMismatch))
	assert.Equal(t, rootManifest, manifestBytes(t, root), "rejected plan must not modify any manifest")
}

func TestFingerprintGateAcceptsFreshFingerprint(t *testing.T) {
	root := buildTree(t)
	_, err := Run(root, Options{InitAllowed: true})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "f3"), []byte("new"), 0o644))
	status, err := walk.Status(root, diff.WhenPossiblyModified)
	require.NoError(t, err)

	result, err := Run(root, Options{ExpectedFingerprint: status.Fingerprint})
	require.NoError(t, err)
	assert.Equal(t, Written, result.Directories[root])
}

func TestDryRunWritesNothing(t *testing.T) {
	root := buildTree(t)

	result, err := Run(root, Options{InitAllowed: true, DryRun: true})
	require.NoError(t, err)

	assert.NoFileExists(t, manifest.Path(root))
	assert.NoFileExists(t, manifest.Path(filepath.Join(root, "sub")))
	assert.Equal(t, SkippedDryRun, result.Directories[root])
	assert.Equal(t, SkippedDryRun, result.Directories[filepath.Join(root, "sub")])
}

func TestPlanReplacesKindChange(t *testing.T) {
	root := buildTree(t)
	_, err := Run(root, Options{InitAllowed: true})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "f1")))
	require.NoError(t, os.Symlink("f2", filepath.Join(root, "f1")))

	_, err = Run(root, Options{})
	require.NoError(t, err)

	m, err := manifest.Load(root)
	require.NoError(t, err)
	entry := m.Entries["f1"]
	assert.Equal(t, manifest.Symlink, entry.Kind)
	assert.Equal(t, "f2", entry.SymlinkTarget)
	assert.Empty(t, entry.Digest)
}

func TestPlanReusesStoredDigestWhenMetadataUnchanged(t *testing.T) {
	root := buildTree(t)
	_, err := Run(root, Options{InitAllowed: true})
	require.NoError(t, err)

	before, err := manifest.Load(root)
	require.NoError(t, err)

	_, err = Run(root, Options{})
	require.NoError(t, err)

	after, err := manifest.Load(root)
	require.NoError(t, err)
	assert.Equal(t, before.Entries["f1"], after.Entries["f1"])
}

func TestPlanResultCarriesPreflightChanges(t *testing.T) {
	root := buildTree(t)
	_, err := Run(root, Options{InitAllowed: true})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "f3"), []byte("new"), 0o644))

	result, err := Run(root, Options{})
	require.NoError(t, err)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "f3", result.Changes[0].Path)
	assert.Equal(t, diff.Added, result.Changes[0].Kind)
}
