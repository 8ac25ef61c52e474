package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/whiskeyjimb/espim/internal/meta"
	"github.com/whiskeyjimb/espim/internal/output"
)

func newInitCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the plugin and cache directories and fetch the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager(cmd)
			if err != nil {
				return err
			}
			return m.Init(cmd.Context())
		},
	}
}

func newUpdateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Fetch the latest plugin index",
		Long: `Fetch the latest plugin index into the cache.

A failed fetch is reported and the previously cached index is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager(cmd)
			if err != nil {
				return err
			}
			return m.Update(cmd.Context())
		},
	}
}

func newUpgradeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Check out the indexed version of every installed plugin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager(cmd)
			if err != nil {
				return err
			}
			return m.Upgrade(cmd.Context())
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List indexed plugins and whether they are installed",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := output.NewFormatter(a.cfg.Output)
			if err != nil {
				return err
			}
			m, err := a.manager(cmd)
			if err != nil {
				return err
			}
			entries, err := m.List(cmd.Context())
			if err != nil {
				return err
			}
			return formatter.FormatList(cmd.OutOrStdout(), entries)
		},
	}
}

func newInstallCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "install <PLUGIN>",
		Short: "Install a plugin from the index",
		Long: `Install a plugin from the index.

The name is matched exactly first, then case-insensitively. The plugin is
cloned into the cache if needed, checked out at the indexed version and
linked into the plugin directory.

Examples:
  ` + meta.AppName + ` install "Deep Sky"
  ` + meta.AppName + ` install "deep sky"`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completePluginNames(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager(cmd)
			if err != nil {
				return err
			}
			return reportOrFail(cmd, m.Install(cmd.Context(), args[0]))
		},
	}
}

func newRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "remove <PLUGIN>",
		Aliases:           []string{"uninstall"},
		Short:             "Remove a plugin's install link, keeping its checkout",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completePluginNames(true),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager(cmd)
			if err != nil {
				return err
			}
			return reportOrFail(cmd, m.Remove(cmd.Context(), args[0]))
		},
	}
}

func newPurgeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge <PLUGIN>",
		Short: "Remove a plugin's install link and delete its checkout",
		Long: `Remove a plugin's install link and delete its checkout.

Deletion of the checkout must be confirmed by typing 'y' unless --yes is given.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completePluginNames(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager(cmd)
			if err != nil {
				return err
			}
			return reportOrFail(cmd, m.Purge(cmd.Context(), args[0]))
		},
	}
	cmd.Flags().BoolVarP(&a.assumeYes, "yes", "y", false, "Delete the checkout without asking")
	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "show <PLUGIN>",
		Short:             "Show index entry and checkout state of a plugin",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completePluginNames(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := output.NewFormatter(a.cfg.Output)
			if err != nil {
				return err
			}
			m, err := a.manager(cmd)
			if err != nil {
				return err
			}
			details, err := m.Show(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return formatter.FormatDetails(cmd.OutOrStdout(), details)
		},
	}
}

// completePluginNames completes the first argument from the cached index.
// It never fetches, so completion works offline and stays fast.
func (a *app) completePluginNames(installedOnly bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		a.cfg.ApplyFlagOverrides(cmd.Flags())
		stack, err := a.pluginStack(cmd)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		idx, err := stack.Index.Cached()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		layout := stack.Manager.Layout()
		prefix := strings.ToLower(toComplete)
		var names []string
		for _, name := range idx.Names() {
			if !strings.HasPrefix(strings.ToLower(name), prefix) {
				continue
			}
			if installedOnly && !layout.IsInstalled(name) {
				continue
			}
			names = append(names, name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
