package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const checkBackendLimit = 20

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that the API token and instance are accepted",
		Long: `Lists the backends visible to the configured token. A successful
listing means the credentials work; the first few backend names are printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.newClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			names, err := client.BackendNames(ctx)
			if err != nil {
				return fmt.Errorf("credential check failed: %w", err)
			}

			shown := names
			if len(shown) > checkBackendLimit {
				shown = shown[:checkBackendLimit]
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, map[string]any{
					"ok":       true,
					"backends": shown,
					"total":    len(names),
				})
			}

			goodColor.Fprintf(out, "Credentials OK: %d backends visible\n", len(names))
			if len(shown) > 0 {
				fmt.Fprintln(out, strings.Join(shown, ", "))
			}
			return nil
		},
	}
}
