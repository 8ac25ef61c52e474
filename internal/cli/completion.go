package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/whiskeyjimb/espim/internal/meta"
)

// newCompletionCommand creates the "completion" command that generates
// shell completion scripts for bash, zsh, fish, and powershell.
func newCompletionCommand() *cobra.Command {
	long := strings.ReplaceAll(`Generate shell completion scripts for APP.

Plugin names are completed from the cached index, so run "APP update" once
before relying on them.

Bash:
  $ source <(APP completion bash)

  # To load completions for each session, execute once:
  $ APP completion bash > /etc/bash_completion.d/APP

Zsh:
  $ APP completion zsh > "${fpath[1]}/_APP"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ APP completion fish | source

  # To load completions for each session, execute once:
  $ APP completion fish > ~/.config/fish/completions/APP.fish

PowerShell:
  PS> APP completion powershell | Out-String | Invoke-Expression
`, "APP", meta.AppName)

	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate shell completion scripts",
		Long:                  long,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return cmd.Help()
			}
		},
	}
}

// registerOutputFormatCompletion registers tab completion for the --output flag.
func registerOutputFormatCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"table\tHuman-readable table (default)",
			"json\tJSON output for scripting",
			"yaml\tYAML output",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}
