package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/treeward/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBeforeInitIsSilent(t *testing.T) {
	l := logging.Get("pretest-component")
	require.NotNil(t, l)
	l.Info("should not panic or write anywhere")
}

func TestInitWritesToConfiguredPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "treeward.log")

	require.NoError(t, logging.Init(logging.Config{
		Level: "debug",
		Path:  path,
	}))
	defer logging.Close()

	logger := logging.Get("walker")
	logger.Info("status computed", "changes", 3)

	require.NoError(t, logging.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "status computed")
	assert.Contains(t, string(data), "walker")
}

func TestComponentLevelOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "treeward.log")

	require.NoError(t, logging.Init(logging.Config{
		Level:      "error",
		Path:       path,
		Components: map[string]string{"planner": "debug"},
	}))
	defer logging.Close()

	logging.Get("planner").Debug("verbose planner detail")
	logging.Get("walker").Debug("verbose walker detail")
	require.NoError(t, logging.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.Contains(content, "verbose planner detail"))
	assert.False(t, strings.Contains(content, "verbose walker detail"))
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	_, err := logging.ParseLevel("chatty")
	assert.Error(t, err)
}
