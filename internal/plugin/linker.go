package plugin

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Linker creates and removes install links and prepares checkouts for removal.
type Linker interface {
	// Link creates a directory link at link pointing to target.
	Link(ctx context.Context, target, link string) error
	// Unlink removes the link without touching its target.
	Unlink(link string) error
	// PrepareRemoval makes dir removable by os.RemoveAll.
	PrepareRemoval(dir string) error
}

// NewLinker returns the Linker for the given GOOS.
func NewLinker(goos string, logger zerolog.Logger) Linker {
	if goos == "windows" {
		return &mklinkLinker{run: runCommand, log: logger}
	}
	return &symlinkLinker{log: logger}
}

// symlinkLinker uses native symlinks.
type symlinkLinker struct {
	log zerolog.Logger
}

func (l *symlinkLinker) Link(_ context.Context, target, link string) error {
	l.log.Debug().Str("target", target).Str("link", link).Msg("Creating symlink")
	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("creating symlink: %w", err)
	}
	return nil
}

func (l *symlinkLinker) Unlink(link string) error {
	l.log.Debug().Str("link", link).Msg("Removing symlink")
	if err := os.Remove(link); err != nil {
		return fmt.Errorf("removing symlink: %w", err)
	}
	return nil
}

func (l *symlinkLinker) PrepareRemoval(string) error {
	return nil
}

// mklinkLinker shells out to mklink because unprivileged symlink creation
// is restricted on Windows. Git marks its objects read-only there, which
// blocks deletion until the attribute is cleared.
type mklinkLinker struct {
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
	log zerolog.Logger
}

func (l *mklinkLinker) Link(ctx context.Context, target, link string) error {
	args := []string{"/C", "mklink", "/D", link, target}
	l.log.Debug().Strs("args", args).Msg("Using mklink")
	out, err := l.run(ctx, "cmd", args...)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("mklink failed: %w: %s", err, msg)
		}
		return fmt.Errorf("mklink failed: %w", err)
	}
	return nil
}

func (l *mklinkLinker) Unlink(link string) error {
	l.log.Debug().Str("link", link).Msg("Removing directory link")
	if err := os.Remove(link); err != nil {
		return fmt.Errorf("removing link: %w", err)
	}
	return nil
}

func (l *mklinkLinker) PrepareRemoval(dir string) error {
	l.log.Debug().Str("dir", dir).Msg("Clearing read-only attributes")
	return clearReadOnly(dir)
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// clearReadOnly adds owner write permission to everything under dir.
func clearReadOnly(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Mode().Perm()&0o200 != 0 {
			return nil
		}
		if err := os.Chmod(path, info.Mode().Perm()|0o200); err != nil {
			return fmt.Errorf("clearing read-only on %s: %w", path, err)
		}
		return nil
	})
}
