package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	return &Result{
		Command:     "status",
		Root:        "/tmp/tree",
		Policy:      "when_possibly_modified",
		Changes:     []ChangeView{{Path: "a.txt", Kind: "Added"}, {Path: "b.txt", Kind: "Removed"}},
		Fingerprint: "deadbeef",
	}
}

func TestRegistryGetUnknownFormat(t *testing.T) {
	_, err := Get("no-such-format")
	assert.Error(t, err)
}

func TestRegistryAvailableIncludesBuiltins(t *testing.T) {
	available := Available()
	assert.Contains(t, available, "plain")
	assert.Contains(t, available, "json")
	assert.Contains(t, available, "yaml")
	assert.Contains(t, available, "pretty")
}

func TestPlainFormatterListsEveryChange(t *testing.T) {
	formatter, err := Get("plain")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, formatter.Format(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "b.txt")
	assert.Contains(t, out, "deadbeef")
}

func TestJSONFormatterRoundTripsFields(t *testing.T) {
	formatter, err := Get("json")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, formatter.Format(&buf, sampleResult()))
	assert.Contains(t, buf.String(), `"fingerprint": "deadbeef"`)
}

func TestYAMLFormatterRoundTripsFields(t *testing.T) {
	formatter, err := Get("yaml")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, formatter.Format(&buf, sampleResult()))
	assert.Contains(t, buf.String(), "fingerprint: deadbeef")
}

func TestPrettyFormatterNoChanges(t *testing.T) {
	formatter, err := Get("pretty")
	require.NoError(t, err)

	r := sampleResult()
	r.Changes = nil

	var buf bytes.Buffer
	require.NoError(t, formatter.Format(&buf, r))
	assert.Contains(t, buf.String(), "no changes")
}

func TestKindCodeMapping(t *testing.T) {
	assert.Equal(t, "A", kindCode("Added"))
	assert.Equal(t, "R", kindCode("Removed"))
	assert.Equal(t, "M?", kindCode("PossiblyModified"))
	assert.Equal(t, "M", kindCode("Modified"))
}
