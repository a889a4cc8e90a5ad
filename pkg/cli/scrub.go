package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scrubbed/scrubbed/alertmanager"
	"github.com/scrubbed/scrubbed/pkg/config"
)

func newScrubCmd() *cobra.Command {
	var indent bool

	cmd := &cobra.Command{
		Use:   "scrub [file]",
		Short: "Redact an alert group read from a file or stdin and print it",
		Long: "scrub applies the configured whitelists to a single Alertmanager webhook payload and prints " +
			"what would be forwarded. Use it to check a whitelist before deploying it.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			data, err := io.ReadAll(in)
			if err != nil {
				return err
			}
			group, err := alertmanager.Decode(data)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if indent {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(cfg.Redaction().Scrub(group))
		},
	}

	cmd.Flags().BoolVar(&indent, "indent", false, "pretty-print the output")
	return cmd
}
