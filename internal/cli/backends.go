package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cuongbtq/quantum-tracker/internal/normalizer"
)

func newBackendsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List backends with qubit count and queue length",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.newClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			backends, err := client.Backends(ctx)
			if err != nil {
				return fmt.Errorf("failed to list backends: %w", err)
			}

			records := make([]normalizer.BackendRecord, 0, len(backends))
			for _, b := range backends {
				if rec := normalizer.NormalizeBackend(b); rec.Name != "" {
					records = append(records, rec)
				}
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, records)
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			headerColor.Fprintln(w, "NAME\tQUBITS\tOPERATIONAL\tPENDING")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					rec.Name,
					intOrDash(rec.NumQubits),
					operationalText(rec.Operational),
					intOrDash(rec.PendingJobs),
				)
			}
			return w.Flush()
		},
	}
}
