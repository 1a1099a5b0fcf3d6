package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdltools/wdl/config"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestFindWalksUpToParent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, ".wdlconfig.yaml", "defaultVersion: \"1.1\"\n")

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := config.Find(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".wdlconfig.yaml"), found)
}

func TestFindReturnsNotFound(t *testing.T) {
	t.Parallel()

	_, err := config.Find(t.TempDir())
	require.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestLoadDecodesFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, ".wdlconfig.yaml", `
defaultVersion: "1.2"
versions:
  "legacy/*.wdl": "1.0"
suppressedRules:
  - version/deprecated-placeholder-option
importRoots:
  - vendor/wdl
`)

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "1.2", cfg.DefaultVersion)
	assert.Equal(t, "1.0", cfg.VersionFor("legacy/old.wdl"))
	assert.Empty(t, cfg.VersionFor("current/new.wdl"))
	assert.True(t, cfg.Suppresses("version/deprecated-placeholder-option"))
	assert.False(t, cfg.Suppresses("unknown-rule"))
	assert.Equal(t, []string{"vendor/wdl"}, cfg.ImportRoots)
}
