package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docpublish.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "mainpagetitle: Demo\n"))
	require.NoError(t, err)

	assert.Equal(t, "./out", cfg.Destination)
	assert.Equal(t, "utf-8", cfg.Encoding)
	assert.Equal(t, "Demo", cfg.MainPageTitle)
	assert.True(t, cfg.ShowInherited(), "inherited nav entries default on")
	assert.True(t, cfg.SourceFiles(), "source listings default on")
	assert.False(t, cfg.ShowTypedefsInNav)
	assert.False(t, cfg.UseLongnameInNav.Enabled)
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
destination: ./site
encoding: shift_jis
readme: ./README.md
menu:
  - title: Home
    link: https://example.com
    target: _blank
repository:
  link: https://example.com/repo.git
  branch: main
  type: git
showInheritedInNav: false
showTypedefsInNav: true
outputSourceFiles: false
staticFiles:
  paths: [./extra]
  exclude: ["*.scss"]
prismTheme: prism-okaidia
`))
	require.NoError(t, err)

	assert.Equal(t, "./site", cfg.Destination)
	assert.Equal(t, "shift_jis", cfg.Encoding)
	require.Len(t, cfg.Menu, 1)
	assert.Equal(t, "_blank", cfg.Menu[0].Target)
	assert.Equal(t, "main", cfg.Repository.Branch)
	assert.False(t, cfg.ShowInherited())
	assert.True(t, cfg.ShowTypedefsInNav)
	assert.False(t, cfg.SourceFiles())
	assert.Equal(t, []string{"*.scss"}, cfg.StaticFiles.Exclude)
	assert.Equal(t, "prism-okaidia", cfg.PrismTheme)
}

func TestNavNameModeBoolean(t *testing.T) {
	cfg, err := Load(writeConfig(t, "useLongnameInNav: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.UseLongnameInNav.Enabled)
	assert.Zero(t, cfg.UseLongnameInNav.Truncate)
}

func TestNavNameModeTruncationCount(t *testing.T) {
	cfg, err := Load(writeConfig(t, "useLongnameInNav: 2\n"))
	require.NoError(t, err)
	assert.True(t, cfg.UseLongnameInNav.Enabled)
	assert.Equal(t, 2, cfg.UseLongnameInNav.Truncate)
}

func TestNavNameModeRejectsGarbage(t *testing.T) {
	_, err := Load(writeConfig(t, "useLongnameInNav: [1,2]\n"))
	require.Error(t, err)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("DOC_DEST", "/tmp/docs-out")
	cfg, err := Load(writeConfig(t, "destination: ${DOC_DEST}\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/docs-out", cfg.Destination)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docpublish.yaml")
	require.NoError(t, Init(path, false))

	// Refuses to overwrite without force.
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./out", cfg.Destination)
}
