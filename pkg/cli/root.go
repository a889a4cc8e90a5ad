package cli

import (
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
)

// NewRootCmd builds the scrubbed command tree. Without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "scrubbed",
		Short: "Redacting relay for Alertmanager webhooks",
		Long: "scrubbed receives Alertmanager webhook notifications, replaces every label, annotation and URL " +
			"value that is not whitelisted, and forwards the result to a single destination.\n\n" +
			"All settings come from SCRUBBED_* environment variables.",
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newScrubCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Run executes the root command and returns the process exit code.
func Run() int {
	if err := NewRootCmd().Execute(); err != nil {
		// Cobra already prints the error
		return ExitFailure
	}
	return ExitSuccess
}
