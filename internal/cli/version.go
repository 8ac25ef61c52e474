package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/whiskeyjimb/espim/internal/meta"
)

// newVersionCommand creates the "version" command.
func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s (%s) version %s\n", meta.AppName, meta.DisplayName, meta.Version)
			_, _ = fmt.Fprintf(out, "  commit:     %s\n", meta.Commit)
			_, _ = fmt.Fprintf(out, "  build time: %s\n", meta.BuildTime)
			_, _ = fmt.Fprintf(out, "  go:         %s\n", runtime.Version())
			_, _ = fmt.Fprintf(out, "  os/arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
