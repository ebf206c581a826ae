package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewListCmd lists voice notes across jobs, separating recordings shared
// by several jobs from job-specific ones.
func NewListCmd(deps *Dependencies) *cobra.Command {
	var jobs []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List voice notes for one or more jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(jobs) == 0 {
				return fmt.Errorf("at least one --job is required")
			}

			result, err := deps.App.LoadJobAudio(cmd.Context(), jobs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if len(result.Common) == 0 && result.SpecificCount() == 0 {
				fmt.Fprintln(out, "No audio notes found")
				if result.Skipped > 0 {
					fmt.Fprintf(out, "(%d legacy records without identifiers skipped)\n", result.Skipped)
				}
				return nil
			}

			if len(result.Common) > 0 {
				fmt.Fprintln(out, "Shared across jobs:")
				for _, c := range result.Common {
					fmt.Fprintf(out, "  %s  [%s]  %s  by %s\n",
						c.Record.ID, strings.Join(c.JobNumbers, ", "),
						c.Record.CreatedAt, c.Record.CreatedBy)
					if c.Record.Summary != "" {
						fmt.Fprintf(out, "      %s\n", c.Record.Summary)
					}
				}
			}

			for _, group := range result.Specific {
				fmt.Fprintf(out, "Job %s:\n", group.JobNumber)
				for _, record := range group.Records {
					fmt.Fprintf(out, "  %s  %s  by %s\n",
						record.ID, record.CreatedAt, record.CreatedBy)
					if record.Summary != "" {
						fmt.Fprintf(out, "      %s\n", record.Summary)
					}
				}
			}

			if result.Skipped > 0 {
				fmt.Fprintf(out, "(%d legacy records without identifiers skipped)\n", result.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&jobs, "job", "j", nil, "job number to list (repeatable)")

	return cmd
}

// NewPlayCmd plays back one stored voice note.
func NewPlayCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "play <record-id>",
		Short: "Play a stored voice note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Playing...")
			return deps.App.Play(cmd.Context(), args[0])
		},
	}
}
