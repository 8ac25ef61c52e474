package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/whiskeyjimb/espim/internal/meta"
)

const (
	indexFileName = "plugins.yml"
	reposDirName  = "plugins"
)

// Layout derives every on-disk location from the game's plugin directory and
// the application cache directory.
type Layout struct {
	PluginDir string
	CacheDir  string
}

// InstallPath is the link exposing name inside the game's plugin directory.
func (l Layout) InstallPath(name string) string {
	return filepath.Join(l.PluginDir, meta.LinkPrefix+name)
}

// ReposDir holds one checkout per plugin.
func (l Layout) ReposDir() string {
	return filepath.Join(l.CacheDir, reposDirName)
}

// RepoPath is the checkout location for name. It creates ReposDir on first use.
func (l Layout) RepoPath(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.ReposDir(), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", l.ReposDir(), err)
	}
	return filepath.Join(l.ReposDir(), name), nil
}

// IndexPath is the cached copy of the remote index.
func (l Layout) IndexPath() string {
	return filepath.Join(l.CacheDir, indexFileName)
}

// IsInstalled reports whether both the install link and the checkout exist.
func (l Layout) IsInstalled(name string) bool {
	if checkName(name) != nil {
		return false
	}
	return l.linkExists(name) && dirExists(filepath.Join(l.ReposDir(), name))
}

// linkExists checks the link itself, so a dangling link still counts.
func (l Layout) linkExists(name string) bool {
	_, err := os.Lstat(l.InstallPath(name))
	return err == nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// checkName rejects names that would escape the plugin or cache directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("invalid plugin name %q", name)
	}
	return nil
}
