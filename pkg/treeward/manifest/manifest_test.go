package manifest

import (
	"path/filepath"
	"testing"

	"github.com/jamesainslie/treeward/pkg/treeward/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := New()
	m.Entries["b.txt"] = Entry{Kind: File, Digest: "deadbeef", MtimeNanos: 42, Size: 7}
	m.Entries["a"] = Entry{Kind: Dir}
	m.Entries["c.lnk"] = Entry{Kind: Symlink, SymlinkTarget: "../elsewhere"}

	encoded := Encode(m)

	decoded, err := Decode("manifest", encoded)
	require.NoError(t, err)
	assert.Equal(t, m.Version, decoded.Version)
	assert.Equal(t, m.Entries, decoded.Entries)

	again := Encode(decoded)
	assert.Equal(t, encoded, again, "encode(decode(bytes)) must equal bytes")
}

func TestEncodeSortsEntriesByName(t *testing.T) {
	m := New()
	m.Entries["zebra"] = Entry{Kind: Dir}
	m.Entries["apple"] = Entry{Kind: Dir}
	m.Entries["mango"] = Entry{Kind: Dir}

	encoded := string(Encode(m))

	iApple := indexOf(t, encoded, `[entries."apple"]`)
	iMango := indexOf(t, encoded, `[entries."mango"]`)
	iZebra := indexOf(t, encoded, `[entries."zebra"]`)
	assert.True(t, iApple < iMango)
	assert.True(t, iMango < iZebra)
}

func TestEncodeQuotesArbitraryNames(t *testing.T) {
	m := New()
	m.Entries[`weird "name" with spaces`] = Entry{Kind: Dir}

	encoded := string(Encode(m))
	decoded, err := Decode("manifest", []byte(encoded))
	require.NoError(t, err)
	_, ok := decoded.Entries[`weird "name" with spaces`]
	assert.True(t, ok)
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	data := []byte("[metadata]\nversion = 99\n")
	_, err := Decode("manifest", data)
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownTopLevelSection(t *testing.T) {
	data := []byte("[metadata]\nversion = 1\n\n[bogus]\nx = 1\n")
	_, err := Decode("manifest", data)
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownEntryField(t *testing.T) {
	data := []byte(`[metadata]
version = 1

[entries."f"]
type = "Dir"
extra = "nope"
`)
	_, err := Decode("manifest", data)
	assert.Error(t, err)
}

func TestDecodeRejectsMissingFileFields(t *testing.T) {
	data := []byte(`[metadata]
version = 1

[entries."f"]
type = "File"
sha256 = "abc"
`)
	_, err := Decode("manifest", data)
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownEntryType(t *testing.T) {
	data := []byte(`[metadata]
version = 1

[entries."f"]
type = "Socket"
`)
	_, err := Decode("manifest", data)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := New()
	m.Entries["x.txt"] = Entry{Kind: File, Digest: "abc123", MtimeNanos: 1, Size: 3}

	require.NoError(t, Save(dir, m))
	assert.True(t, Exists(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, m.Entries, loaded.Entries)

	assert.FileExists(t, filepath.Join(dir, ReservedFilename))
}

func TestLoadMissingManifestIsNotInitialized(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.NotInitialized))
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := -1
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			idx = i
			break
		}
	}
	require.NotEqual(t, -1, idx, "expected to find %q", needle)
	return idx
}
