package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cuongbtq/quantum-tracker/internal/api/domain"
	"github.com/cuongbtq/quantum-tracker/internal/normalizer"
	"github.com/cuongbtq/quantum-tracker/internal/provider"
)

func newJobsCmd(opts *options) *cobra.Command {
	var (
		limit  int
		status string
	)

	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"ls"},
		Short:   "List recent jobs",
		Example: `  qtrack jobs --limit 5
  qtrack jobs --status running --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.newClient()
			if err != nil {
				return err
			}

			limit = domain.ClampLimit(limit, domain.DefaultJobLimit, domain.MaxJobLimit)
			query := provider.JobQuery{Limit: limit}
			var statusFilter string
			if status != "" {
				s := normalizer.NormalizeStatus(status)
				statusFilter = s.String()
				query.Pending = domain.PendingHint(s)
				query.Limit = domain.MaxJobLimit
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			jobs, err := client.Jobs(ctx, query)
			if err != nil {
				return fmt.Errorf("failed to list jobs: %w", err)
			}

			records := make([]normalizer.JobRecord, 0, min(len(jobs), limit))
			for _, job := range jobs {
				if len(records) == limit {
					break
				}
				rec := normalizer.NormalizeJob(job)
				if statusFilter != "" && rec.Status.String() != statusFilter {
					continue
				}
				records = append(records, rec)
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, records)
			}

			if len(records) == 0 {
				fmt.Fprintln(out, "No jobs found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			headerColor.Fprintln(w, "ID\tSTATUS\tBACKEND\tCREATED\tUSAGE (s)\tUSER")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					orDash(rec.ID),
					statusText(rec.Status),
					orDash(rec.Backend),
					orDash(rec.Created),
					floatOrDash(rec.UsageSeconds),
					rec.User,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultJobLimit, "Number of jobs to fetch (1-100)")
	cmd.Flags().StringVar(&status, "status", "", "Only show jobs with this status, e.g. running or done")

	return cmd
}

func newJobCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "job <job-id>",
		Short: "Show one job, including its metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.newClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			job, err := client.Job(ctx, args[0])
			if err != nil {
				return err
			}

			rec := normalizer.NormalizeJob(job)

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, rec)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			printField(w, "ID", orDash(rec.ID))
			printField(w, "Status", statusText(rec.Status))
			printField(w, "Backend", orDash(rec.Backend))
			printField(w, "Created", orDash(rec.Created))
			printField(w, "Completed", orDash(rec.Completed))
			printField(w, "Usage (s)", floatOrDash(rec.UsageSeconds))
			printField(w, "User", rec.User)
			if len(rec.Tags) > 0 {
				printField(w, "Tags", fmt.Sprint(rec.Tags))
			}
			if rec.ErrorMessage != nil {
				printField(w, "Error", badColor.Sprint(*rec.ErrorMessage))
			}
			if rec.Metrics != nil {
				metrics, err := json.Marshal(rec.Metrics)
				if err == nil {
					printField(w, "Metrics", string(metrics))
				}
			}
			return w.Flush()
		},
	}
}
