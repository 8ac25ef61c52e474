// Package git drives the version-control operations behind plugin checkouts:
// clone, fetch, hard reset to a revision and submodule updates.
package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/rs/zerolog"
)

const (
	// RemoteName is the remote every checkout is cloned from and fetched against.
	RemoteName = "origin"

	// DefaultBranch is checked out when a plugin does not pin a revision.
	DefaultBranch = "master"
)

// ErrDestinationNotEmpty is returned by Clone when dest already has content.
var ErrDestinationNotEmpty = errors.New("destination exists and is not empty")

// Submodule describes one submodule of a checkout.
type Submodule struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	// Pinned is the commit recorded in the superproject.
	Pinned string `json:"pinned,omitempty" yaml:"pinned,omitempty"`
	// Head is the commit currently checked out, empty when not initialized.
	Head string `json:"head,omitempty" yaml:"head,omitempty"`
}

// Driver wraps go-git for the handful of operations a plugin checkout needs.
// The zero value is not usable; use NewDriver.
type Driver struct {
	progress io.Writer
	log      zerolog.Logger
}

// NewDriver creates a Driver. progress receives remote progress output and
// may be nil to discard it.
func NewDriver(progress io.Writer, logger zerolog.Logger) *Driver {
	return &Driver{progress: progress, log: logger}
}

// Clone materializes a full working copy of url at dest.
func (d *Driver) Clone(ctx context.Context, url, dest string) error {
	entries, err := os.ReadDir(dest)
	if err == nil && len(entries) > 0 {
		return fmt.Errorf("cloning %s into %s: %w", url, dest, ErrDestinationNotEmpty)
	}

	d.log.Info().Str("url", url).Str("dest", dest).Msg("Cloning repository")
	_, err = gogit.PlainCloneContext(ctx, dest, false, &gogit.CloneOptions{
		URL:        url,
		RemoteName: RemoteName,
		Progress:   d.progress,
	})
	if err != nil {
		return fmt.Errorf("cloning %s into %s: %w", url, dest, err)
	}
	return nil
}

// Open opens the existing repository at dest.
func (d *Driver) Open(dest string) (*gogit.Repository, error) {
	d.log.Debug().Str("dest", dest).Msg("Opening repository")
	repo, err := gogit.PlainOpen(dest)
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", dest, err)
	}
	return repo, nil
}

// CheckoutAt fetches origin, resolves rev and force-moves the current branch
// (or detached HEAD) and the worktree to it, discarding local modifications.
// Submodules are brought to their pinned commits afterwards.
// An empty rev means DefaultBranch. Returns the commit checked out.
func (d *Driver) CheckoutAt(ctx context.Context, dest, rev string) (string, error) {
	if rev == "" {
		rev = DefaultBranch
	}

	repo, err := d.Open(dest)
	if err != nil {
		return "", err
	}

	if err := d.fetch(ctx, repo); err != nil {
		return "", err
	}

	hash, err := resolve(repo, rev)
	if err != nil {
		return "", fmt.Errorf("resolving revision %q in %s: %w", rev, dest, err)
	}
	d.log.Debug().Str("rev", rev).Str("commit", hash.String()).Msg("Resolved revision")

	if err := pointHead(repo, hash); err != nil {
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("opening worktree %s: %w", dest, err)
	}
	if err := wt.Reset(&gogit.ResetOptions{Commit: hash, Mode: gogit.HardReset}); err != nil {
		return "", fmt.Errorf("hard reset of %s to %s: %w", dest, hash, err)
	}

	subs, err := wt.Submodules()
	if err != nil {
		return "", fmt.Errorf("reading submodules of %s: %w", dest, err)
	}
	if len(subs) > 0 {
		d.log.Debug().Int("count", len(subs)).Msg("Updating submodules")
		err := subs.UpdateContext(ctx, &gogit.SubmoduleUpdateOptions{
			Init:              true,
			RecurseSubmodules: gogit.DefaultSubmoduleRecursionDepth,
		})
		if err != nil {
			return "", fmt.Errorf("updating submodules of %s: %w", dest, err)
		}
	}

	return hash.String(), nil
}

// UpdateLatest fast-forwards dest to the fetched tip of DefaultBranch.
func (d *Driver) UpdateLatest(ctx context.Context, dest string) (string, error) {
	return d.CheckoutAt(ctx, dest, DefaultBranch)
}

// Head returns the commit HEAD currently points at.
func (d *Driver) Head(dest string) (string, error) {
	repo, err := d.Open(dest)
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("reading HEAD of %s: %w", dest, err)
	}
	return ref.Hash().String(), nil
}

// Submodules lists the submodules declared by the checkout at dest.
func (d *Driver) Submodules(dest string) ([]Submodule, error) {
	repo, err := d.Open(dest)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree %s: %w", dest, err)
	}
	subs, err := wt.Submodules()
	if err != nil {
		return nil, fmt.Errorf("reading submodules of %s: %w", dest, err)
	}

	result := make([]Submodule, 0, len(subs))
	for _, s := range subs {
		cfg := s.Config()
		info := Submodule{Name: cfg.Name, Path: cfg.Path}
		if status, err := s.Status(); err == nil {
			info.Pinned = hashString(status.Expected)
			info.Head = hashString(status.Current)
		}
		result = append(result, info)
	}
	return result, nil
}

// UpdateSubmodule initializes and checks out a single submodule at its pinned commit.
func (d *Driver) UpdateSubmodule(ctx context.Context, dest, name string) error {
	repo, err := d.Open(dest)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree %s: %w", dest, err)
	}
	sub, err := wt.Submodule(name)
	if err != nil {
		return fmt.Errorf("finding submodule %q in %s: %w", name, dest, err)
	}
	if err := sub.UpdateContext(ctx, &gogit.SubmoduleUpdateOptions{Init: true}); err != nil {
		return fmt.Errorf("updating submodule %q in %s: %w", name, dest, err)
	}
	return nil
}

func (d *Driver) fetch(ctx context.Context, repo *gogit.Repository) error {
	d.log.Debug().Str("remote", RemoteName).Msg("Fetching")
	err := repo.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: RemoteName,
		RefSpecs: []gitconfig.RefSpec{
			gitconfig.RefSpec("+refs/heads/*:refs/remotes/" + RemoteName + "/*"),
		},
		Tags:     gogit.AllTags,
		Force:    true,
		Progress: d.progress,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetching %s: %w", RemoteName, err)
	}
	return nil
}

// resolve prefers the remote-tracking branch so that a branch name means the
// tip just fetched rather than a stale local branch.
func resolve(repo *gogit.Repository, rev string) (plumbing.Hash, error) {
	candidates := []string{"refs/remotes/" + RemoteName + "/" + rev, rev}

	var lastErr error
	for _, c := range candidates {
		h, err := repo.ResolveRevision(plumbing.Revision(c))
		if err == nil {
			return *h, nil
		}
		lastErr = err
	}
	return plumbing.ZeroHash, lastErr
}

// pointHead moves the branch HEAD refers to, or HEAD itself when detached.
func pointHead(repo *gogit.Repository, hash plumbing.Hash) error {
	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return fmt.Errorf("reading HEAD: %w", err)
	}

	name := plumbing.HEAD
	if head.Type() == plumbing.SymbolicReference {
		name = head.Target()
	}
	if err := repo.Storer.SetReference(plumbing.NewHashReference(name, hash)); err != nil {
		return fmt.Errorf("setting %s to %s: %w", name, hash, err)
	}
	return nil
}

func hashString(h plumbing.Hash) string {
	if h.IsZero() {
		return ""
	}
	return h.String()
}
