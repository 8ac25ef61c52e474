// Package plugin resolves plugins against the remote index and manages their
// checkouts and install links.
package plugin

import (
	"io"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/whiskeyjimb/espim/internal/git"
	"github.com/whiskeyjimb/espim/internal/logging"
)

// PluginServiceConfig holds configuration for the plugin management stack.
type PluginServiceConfig struct {
	// IndexURL is the remote YAML index.
	IndexURL string

	// PluginDir is the game's plugin directory.
	PluginDir string

	// CacheDir holds the index cache and checkouts.
	CacheDir string

	// Timeout bounds a single index fetch. Zero means no timeout.
	Timeout time.Duration

	// Out receives progress lines. In is read for purge confirmation.
	Out io.Writer
	In  io.Reader

	// AssumeYes skips the purge confirmation prompt.
	AssumeYes bool

	// Verbose forwards git transfer progress to Out.
	Verbose bool

	// Logger for plugin operations. If nil, uses the global logger.
	Logger *zerolog.Logger
}

// PluginStack holds the initialized plugin management components.
type PluginStack struct {
	Manager *Manager
	Index   *IndexProvider
	Driver  *git.Driver
}

// NewPluginStack wires the index provider, git driver, platform linker and
// manager together.
func NewPluginStack(cfg PluginServiceConfig) *PluginStack {
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	logger := logging.GetLogger("plugin")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	layout := Layout{PluginDir: cfg.PluginDir, CacheDir: cfg.CacheDir}

	// 1. Index
	index := NewIndexProvider(cfg.IndexURL, layout.IndexPath(), cfg.Timeout, logger.With().Str("component", "index").Logger())

	// 2. Git driver
	var progress io.Writer
	if cfg.Verbose {
		progress = cfg.Out
	}
	driver := git.NewDriver(progress, logger.With().Str("component", "git").Logger())

	// 3. Confirmation for purge
	var confirm Confirmer = PromptConfirmer{In: cfg.In, Out: cfg.Out}
	if cfg.AssumeYes {
		confirm = AssumeYes{}
	}

	// 4. Manager
	manager := NewManager(Options{
		Layout:  layout,
		Index:   index,
		Repos:   driver,
		Linker:  NewLinker(runtime.GOOS, logger),
		Confirm: confirm,
		Out:     cfg.Out,
		Logger:  &logger,
	})

	return &PluginStack{
		Manager: manager,
		Index:   index,
		Driver:  driver,
	}
}
