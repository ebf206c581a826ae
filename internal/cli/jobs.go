package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSearchCmd searches job numbers by partial prefix.
func NewSearchCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "search <partial-job-number>",
		Short: "Search job numbers by partial match (at least 4 characters)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers, err := deps.App.SearchJobs(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if len(numbers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching jobs")
				return nil
			}
			for _, number := range numbers {
				fmt.Fprintln(cmd.OutOrStdout(), number)
			}
			return nil
		},
	}
}

// NewJobsCmd shows the detail rows of one job.
func NewJobsCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs <job-number>",
		Short: "Show details for a job number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := deps.App.JobDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if details.Count == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No job found")
				return nil
			}

			for _, job := range details.Jobs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", job.JobNumber, job.JobTitle)
				fmt.Fprintf(cmd.OutOrStdout(), "  client:   %s\n", job.ClientName)
				fmt.Fprintf(cmd.OutOrStdout(), "  category: %s\n", job.ProductCategory)
				fmt.Fprintf(cmd.OutOrStdout(), "  quantity: %d @ %.2f\n", job.OrderQuantity, job.UnitPrice)
				fmt.Fprintf(cmd.OutOrStdout(), "  created:  %s\n", job.JobCreatedOn)
			}
			return nil
		},
	}
}
