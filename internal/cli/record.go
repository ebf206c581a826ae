package cli

import (
	"bufio"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eacdc/VoiceNoteTool/internal/capture"
)

// NewRecordCmd records a voice note and saves it to the selected jobs.
func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var jobs []string
	var department string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a voice note and attach it to one or more jobs",
		Long: "Records from the default microphone until Enter is pressed or the\n" +
			"maximum duration elapses, then saves the note to every selected job\n" +
			"under a single shared recording identifier.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(jobs) == 0 {
				return fmt.Errorf("at least one --job is required")
			}
			if department == "" {
				return fmt.Errorf("--department is required")
			}

			deps.App.SelectJobs(jobs)
			deps.App.SelectDepartment(department)

			out := cmd.OutOrStdout()
			limitReached := make(chan struct{})

			err := deps.App.StartRecording(capture.Callbacks{
				OnProgress: func(elapsed, remaining time.Duration) {
					fmt.Fprintf(out, "\rrecording %s (%s left) ",
						elapsed.Round(time.Second), remaining.Round(time.Second))
				},
				OnLimitReached: func() {
					close(limitReached)
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Recording... press Enter to stop")

			enterPressed := make(chan struct{})
			go func() {
				reader := bufio.NewReader(cmd.InOrStdin())
				reader.ReadString('\n')
				close(enterPressed)
			}()

			select {
			case <-enterPressed:
			case <-limitReached:
				fmt.Fprintln(out, "\nMaximum duration reached, recording stopped")
			}

			rec, err := deps.App.StopRecording()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nRecorded %s\n", rec.Duration.Round(time.Second))

			fmt.Fprintln(out, "Saving...")
			result, err := deps.App.SaveRecording(cmd.Context())
			if err != nil {
				return err
			}

			for _, jobNumber := range result.Successes {
				fmt.Fprintf(out, "  saved to job %s\n", jobNumber)
			}
			for jobNumber, saveErr := range result.Failures {
				fmt.Fprintf(out, "  FAILED for job %s: %v\n", jobNumber, saveErr)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&jobs, "job", "j", nil, "target job number (repeatable)")
	cmd.Flags().StringVarP(&department, "department", "d", "", "department to route the note to")

	return cmd
}
