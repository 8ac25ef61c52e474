// Package cli implements the espim command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/whiskeyjimb/espim/internal/config"
	"github.com/whiskeyjimb/espim/internal/logging"
	"github.com/whiskeyjimb/espim/internal/meta"
	"github.com/whiskeyjimb/espim/internal/plugin"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	cfg       *config.Config
	verbosity int
	assumeYes bool
	stack     *plugin.PluginStack
}

// NewRootCommand creates the top-level command. cfg holds file and
// environment settings; explicitly set flags are applied on top before any
// subcommand runs.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:   meta.AppName,
		Short: meta.DisplayName,
		Long: `espim installs Endless Sky plugins from the community plugin index.

Each plugin is cloned once into a cache directory, checked out at the
version the index pins, and linked into the game's plugin directory as
"` + meta.LinkPrefix + `<name>".`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.CountVarP(&a.verbosity, "verbose", "v", "Increase log verbosity (repeat for more)")
	pf.String("output", cfg.Output, "Output format for list and show: table, json, yaml")
	pf.String("index-url", cfg.IndexURL, "Location of the plugin index")
	pf.String("plugin-dir", cfg.PluginDir, "Game plugin directory that receives install links")
	pf.String("cache-dir", cfg.CacheDir, "Directory holding the cached index and checkouts")
	pf.String("timeout", cfg.Timeout, "Timeout for fetching the index")

	root.AddCommand(
		newInitCommand(a),
		newUpdateCommand(a),
		newUpgradeCommand(a),
		newListCommand(a),
		newInstallCommand(a),
		newRemoveCommand(a),
		newPurgeCommand(a),
		newShowCommand(a),
		newCompletionCommand(),
		newVersionCommand(),
	)

	registerOutputFormatCompletion(root)

	return root
}

// setup applies flag overrides and configures logging once arguments are parsed.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.cfg.ApplyFlagOverrides(cmd.Flags())
	logging.SetupLogger(a.verbosity, cmd.ErrOrStderr())
	return nil
}

// pluginStack validates the effective configuration and builds the plugin
// stack on first use.
func (a *app) pluginStack(cmd *cobra.Command) (*plugin.PluginStack, error) {
	if a.stack != nil {
		return a.stack, nil
	}
	if err := a.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	timeout, err := a.cfg.FetchTimeout()
	if err != nil {
		return nil, err
	}

	a.stack = plugin.NewPluginStack(plugin.PluginServiceConfig{
		IndexURL:  a.cfg.IndexURL,
		PluginDir: a.cfg.PluginDir,
		CacheDir:  a.cfg.CacheDir,
		Timeout:   timeout,
		Out:       cmd.OutOrStdout(),
		In:        cmd.InOrStdin(),
		AssumeYes: a.assumeYes,
		Verbose:   a.verbosity > 0,
	})
	return a.stack, nil
}

// manager is shorthand for commands that only need the Manager.
func (a *app) manager(cmd *cobra.Command) (*plugin.Manager, error) {
	stack, err := a.pluginStack(cmd)
	if err != nil {
		return nil, err
	}
	return stack.Manager, nil
}

// reportOrFail prints expected precondition failures such as "not installed"
// and swallows them so the command exits successfully.
func reportOrFail(cmd *cobra.Command, err error) error {
	if plugin.IsReported(err) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), err)
		return nil
	}
	return err
}
