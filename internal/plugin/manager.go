package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/whiskeyjimb/espim/internal/git"
	"github.com/whiskeyjimb/espim/internal/logging"
)

// Repositories is the subset of the git driver the manager needs.
type Repositories interface {
	Clone(ctx context.Context, url, dest string) error
	CheckoutAt(ctx context.Context, dest, rev string) (string, error)
	UpdateLatest(ctx context.Context, dest string) (string, error)
	Head(dest string) (string, error)
	Submodules(dest string) ([]git.Submodule, error)
	UpdateSubmodule(ctx context.Context, dest, name string) error
}

// IndexSource provides the plugin index.
type IndexSource interface {
	Refresh(ctx context.Context) error
	Load(ctx context.Context) (Index, error)
	Cached() (Index, error)
	Path() string
}

// Entry is one row of the "list" output.
type Entry struct {
	Installed bool   `json:"installed" yaml:"installed"`
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
}

// Details describes a single plugin for "show".
type Details struct {
	Descriptor `yaml:",inline"`
	Installed  bool            `json:"installed" yaml:"installed"`
	LinkPath   string          `json:"link_path" yaml:"link_path"`
	RepoPath   string          `json:"repo_path" yaml:"repo_path"`
	Head       string          `json:"head,omitempty" yaml:"head,omitempty"`
	Submodules []git.Submodule `json:"submodules,omitempty" yaml:"submodules,omitempty"`
}

// Options configures a Manager.
type Options struct {
	Layout Layout
	Index  IndexSource
	Repos  Repositories

	// Linker defaults to the implementation for the running OS.
	Linker Linker

	// Confirm gates purge. Defaults to prompting on stdin.
	Confirm Confirmer

	// Out receives user-facing progress lines. Defaults to io.Discard.
	Out io.Writer

	Logger *zerolog.Logger
}

// Manager implements the user-facing plugin operations.
type Manager struct {
	layout  Layout
	index   IndexSource
	repos   Repositories
	linker  Linker
	confirm Confirmer
	out     io.Writer
	log     zerolog.Logger
}

// NewManager creates a Manager, filling unset options with defaults.
func NewManager(opts Options) *Manager {
	logger := logging.GetLogger("plugin")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Linker == nil {
		opts.Linker = NewLinker(runtime.GOOS, logger)
	}
	if opts.Confirm == nil {
		opts.Confirm = PromptConfirmer{In: os.Stdin, Out: opts.Out}
	}

	return &Manager{
		layout:  opts.Layout,
		index:   opts.Index,
		repos:   opts.Repos,
		linker:  opts.Linker,
		confirm: opts.Confirm,
		out:     opts.Out,
		log:     logger,
	}
}

// Layout returns the paths the manager operates on.
func (m *Manager) Layout() Layout {
	return m.layout
}

func (m *Manager) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}

// Init creates the plugin and cache directories and fetches the first index.
func (m *Manager) Init(ctx context.Context) error {
	if _, err := os.Stat(m.index.Path()); err == nil {
		m.printf("Already initialized, index cached at %s\n", m.index.Path())
		return nil
	}

	for _, dir := range []string{m.layout.PluginDir, m.layout.ReposDir()} {
		m.log.Debug().Str("dir", dir).Msg("Creating directory")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	m.printf("Getting latest index\n")
	if err := m.index.Refresh(ctx); err != nil {
		return fmt.Errorf("fetching initial index: %w", err)
	}

	m.printf("Done.\n")
	return nil
}

// Update refreshes the cached index. A failed fetch is reported and the
// previous cache is kept.
func (m *Manager) Update(ctx context.Context) error {
	m.printf("Getting latest index\n")
	if err := m.index.Refresh(ctx); err != nil {
		m.log.Warn().Err(err).Msg("Index refresh failed")
		m.printf("Error fetching index: %v\n", err)
	}
	m.printf("Done.\n")
	return nil
}

// Upgrade checks out the indexed version of every installed plugin. A failing
// plugin does not stop the others; all failures are returned together.
func (m *Manager) Upgrade(ctx context.Context) error {
	done := logging.LogOperationStart(m.log, "upgrade")
	defer done()

	idx, err := m.index.Load(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, d := range idx {
		if !m.layout.IsInstalled(d.Name) {
			continue
		}
		m.printf("\n%s -> %s\n", d.Name, d.Version)

		repoPath, err := m.layout.RepoPath(d.Name)
		if err == nil {
			err = m.checkout(ctx, repoPath, d.Version)
		}
		if err == nil {
			err = m.syncSubmodules(ctx, repoPath)
		}
		if err != nil {
			m.log.Error().Err(err).Str("plugin", d.Name).Msg("Upgrade failed")
			m.printf("Failed to upgrade %s: %v\n", d.Name, err)
			errs = append(errs, fmt.Errorf("upgrading %s: %w", d.Name, err))
		}
	}

	m.printf("\nDone.\n")
	return errors.Join(errs...)
}

// List returns every indexed plugin with its install state.
func (m *Manager) List(ctx context.Context) ([]Entry, error) {
	idx, err := m.index.Load(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(idx))
	for _, d := range idx {
		entries = append(entries, Entry{
			Installed: m.layout.IsInstalled(d.Name),
			Name:      d.Name,
			Version:   d.Version,
		})
	}
	return entries, nil
}

// Install resolves identifier against the index, clones and checks out the
// plugin if needed and links it into the game's plugin directory.
func (m *Manager) Install(ctx context.Context, identifier string) error {
	done := logging.LogOperationStart(m.log, "install")
	defer done()

	idx, err := m.index.Load(ctx)
	if err != nil {
		return err
	}
	d, err := idx.Resolve(identifier)
	if err != nil {
		return err
	}

	repoPath, err := m.layout.RepoPath(d.Name)
	if err != nil {
		return err
	}
	linkPath := m.layout.InstallPath(d.Name)

	m.printf("Attempting to install '%s' as '%s'\n", d.Name, filepath.Base(linkPath))
	if m.layout.IsInstalled(d.Name) {
		return fmt.Errorf("%s is %w", d.Name, ErrAlreadyInstalled)
	}

	if !dirExists(repoPath) {
		m.printf("Cloning %s into directory %s\n", d.URL, repoPath)
		if err := m.repos.Clone(ctx, d.URL, repoPath); err != nil {
			return err
		}
	}

	m.printf("Checking out revision %s\n", displayRevision(d.Version))
	if err := m.checkout(ctx, repoPath, d.Version); err != nil {
		return err
	}

	if err := os.MkdirAll(m.layout.PluginDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", m.layout.PluginDir, err)
	}
	// A link whose checkout was deleted is replaced.
	if m.layout.linkExists(d.Name) {
		if err := m.linker.Unlink(linkPath); err != nil {
			return err
		}
	}

	m.log.Info().Str("target", repoPath).Str("link", linkPath).Msg("Linking")
	if err := m.linker.Link(ctx, repoPath, linkPath); err != nil {
		return err
	}

	m.printf("Done.\n")
	return nil
}

// Remove deletes the install link of name. The checkout stays on disk.
func (m *Manager) Remove(_ context.Context, name string) error {
	if !m.layout.IsInstalled(name) {
		return fmt.Errorf("%s is %w", name, ErrNotInstalled)
	}

	if err := m.linker.Unlink(m.layout.InstallPath(name)); err != nil {
		return err
	}

	m.printf("Done.\n")
	return nil
}

// Purge removes the install link and, after confirmation, the checkout.
func (m *Manager) Purge(_ context.Context, name string) error {
	repoPath, err := m.layout.RepoPath(name)
	if err != nil {
		return err
	}
	if !dirExists(repoPath) {
		return fmt.Errorf("%s is %w", name, ErrNotInstalled)
	}

	if m.layout.linkExists(name) {
		if err := m.linker.Unlink(m.layout.InstallPath(name)); err != nil {
			return err
		}
	}

	ok, err := m.confirm.Confirm(fmt.Sprintf(
		"The directory %s and all its contents will be removed. Enter 'y' to proceed, anything else to abort", repoPath))
	if err != nil {
		return err
	}

	if ok {
		if err := m.linker.PrepareRemoval(repoPath); err != nil {
			return err
		}
		m.log.Info().Str("dir", repoPath).Msg("Removing checkout")
		if err := os.RemoveAll(repoPath); err != nil {
			return fmt.Errorf("removing %s: %w", repoPath, err)
		}
	} else {
		m.log.Info().Str("dir", repoPath).Msg("Purge declined, keeping checkout")
	}

	m.printf("Done.\n")
	return nil
}

// Show describes a single plugin, including checkout state when present.
func (m *Manager) Show(ctx context.Context, identifier string) (*Details, error) {
	idx, err := m.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	d, err := idx.Resolve(identifier)
	if err != nil {
		return nil, err
	}
	repoPath, err := m.layout.RepoPath(d.Name)
	if err != nil {
		return nil, err
	}

	details := &Details{
		Descriptor: d,
		Installed:  m.layout.IsInstalled(d.Name),
		LinkPath:   m.layout.InstallPath(d.Name),
		RepoPath:   repoPath,
	}
	if !dirExists(repoPath) {
		return details, nil
	}

	if details.Head, err = m.repos.Head(repoPath); err != nil {
		return nil, err
	}
	if details.Submodules, err = m.repos.Submodules(repoPath); err != nil {
		return nil, err
	}
	return details, nil
}

// checkout moves repoPath to version, or to the tip of the default branch
// when the index pins none.
func (m *Manager) checkout(ctx context.Context, repoPath, version string) error {
	var (
		head string
		err  error
	)
	if version == "" {
		head, err = m.repos.UpdateLatest(ctx, repoPath)
	} else {
		head, err = m.repos.CheckoutAt(ctx, repoPath, version)
	}
	if err != nil {
		return err
	}
	m.log.Debug().Str("dir", repoPath).Str("commit", head).Msg("Checked out")
	return nil
}

// syncSubmodules re-updates submodules whose checked-out commit differs from
// the one the superproject pins, e.g. after an interrupted update.
func (m *Manager) syncSubmodules(ctx context.Context, repoPath string) error {
	subs, err := m.repos.Submodules(repoPath)
	if err != nil {
		return err
	}
	for _, s := range subs {
		if s.Head == s.Pinned {
			continue
		}
		m.printf("Syncing submodule %s\n", s.Name)
		if err := m.repos.UpdateSubmodule(ctx, repoPath, s.Name); err != nil {
			return err
		}
	}
	return nil
}

func displayRevision(rev string) string {
	if rev == "" {
		return git.DefaultBranch
	}
	return rev
}
