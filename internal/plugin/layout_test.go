package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLayout(t *testing.T) Layout {
	t.Helper()
	root := t.TempDir()
	return Layout{
		PluginDir: filepath.Join(root, "game", "plugins"),
		CacheDir:  filepath.Join(root, "cache"),
	}
}

func TestLayout_Paths(t *testing.T) {
	l := Layout{PluginDir: "/game/plugins", CacheDir: "/cache"}

	assert.Equal(t, filepath.Join("/game/plugins", "[ESPIM] Deep Sky"), l.InstallPath("Deep Sky"))
	assert.Equal(t, filepath.Join("/cache", "plugins.yml"), l.IndexPath())
	assert.Equal(t, filepath.Join("/cache", "plugins"), l.ReposDir())
}

func TestLayout_RepoPathCreatesParent(t *testing.T) {
	l := newTestLayout(t)

	path, err := l.RepoPath("Deep Sky")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(l.ReposDir(), "Deep Sky"), path)

	info, err := os.Stat(l.ReposDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "the checkout itself must not be created")
}

func TestLayout_RepoPathRejectsEscapes(t *testing.T) {
	l := newTestLayout(t)
	for _, name := range []string{"", ".", "..", "../x", "a/b", `a\b`} {
		_, err := l.RepoPath(name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestLayout_IsInstalled(t *testing.T) {
	requireSymlinks(t)
	l := newTestLayout(t)
	name := "Deep Sky"

	repo, err := l.RepoPath(name)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(l.PluginDir, 0o755))

	assert.False(t, l.IsInstalled(name), "nothing exists")

	require.NoError(t, os.MkdirAll(repo, 0o755))
	assert.False(t, l.IsInstalled(name), "checkout only")

	require.NoError(t, os.Symlink(repo, l.InstallPath(name)))
	assert.True(t, l.IsInstalled(name), "link and checkout")

	require.NoError(t, os.RemoveAll(repo))
	assert.False(t, l.IsInstalled(name), "dangling link only")

	require.NoError(t, os.MkdirAll(repo, 0o755))
	require.NoError(t, os.Remove(l.InstallPath(name)))
	assert.False(t, l.IsInstalled(name), "link removed")
}
