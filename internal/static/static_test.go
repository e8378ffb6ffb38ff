package static

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/render"
)

func TestCopyDefaults(t *testing.T) {
	dir := t.TempDir()
	count, err := CopyDefaults(&render.DiskWriter{Root: dir})
	require.NoError(t, err)
	assert.Greater(t, count, 0)
	assert.FileExists(t, filepath.Join(dir, "styles", "docpublish.css"))
	assert.FileExists(t, filepath.Join(dir, "styles", "prism-default.css"))
	assert.FileExists(t, filepath.Join(dir, "scripts", "docpublish.js"))
}

func TestCopyUserFilesDirectory(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "img", "logo.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("notes"), 0o644))

	out := t.TempDir()
	count, err := CopyUserFiles(&render.DiskWriter{Root: out}, []string{src}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.FileExists(t, filepath.Join(out, "img", "logo.png"))
	assert.FileExists(t, filepath.Join(out, "notes.txt"))
}

func TestCopyUserFilesSingleFile(t *testing.T) {
	src := t.TempDir()
	file := filepath.Join(src, "favicon.ico")
	require.NoError(t, os.WriteFile(file, []byte("icon"), 0o644))

	out := t.TempDir()
	count, err := CopyUserFiles(&render.DiskWriter{Root: out}, []string{file}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.FileExists(t, filepath.Join(out, "favicon.ico"))
}

func TestCopyUserFilesExcludePatterns(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "drafts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "drafts", "wip.md"), []byte("wip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "keep.css"), []byte("css"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "skip.tmp"), []byte("tmp"), 0o644))

	out := t.TempDir()
	count, err := CopyUserFiles(&render.DiskWriter{Root: out}, []string{src}, []string{"*.tmp", "drafts/"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.FileExists(t, filepath.Join(out, "keep.css"))
	assert.NoFileExists(t, filepath.Join(out, "skip.tmp"))
	assert.NoFileExists(t, filepath.Join(out, "drafts", "wip.md"))
}

func TestCopyUserFilesMissingPath(t *testing.T) {
	out := t.TempDir()
	_, err := CopyUserFiles(&render.DiskWriter{Root: out}, []string{filepath.Join(out, "nope")}, nil)
	require.Error(t, err)
}
