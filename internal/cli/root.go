package cli

import (
	"github.com/spf13/cobra"

	"github.com/eacdc/VoiceNoteTool/internal/app"
	"github.com/eacdc/VoiceNoteTool/internal/config"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Dependencies carries the wired application into the command tree.
type Dependencies struct {
	App    *app.App
	Config *config.Config
}

// NewRootCmd builds the voicenote command tree.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "voicenote",
		Short: "Record voice notes and attach them to jobs",
		Long: "A command line tool for recording short voice memos, optionally summarizing\n" +
			"them with an AI service, and attaching them to one or more jobs in the\n" +
			"job-tracking backend.",
		SilenceUsage: true,
	}

	rootCmd.Version = Version
	rootCmd.PersistentFlags().String("config", "configs/config.yaml", "path to configuration file")

	rootCmd.AddCommand(NewLoginCmd(deps))
	rootCmd.AddCommand(NewSignupCmd(deps))
	rootCmd.AddCommand(NewLogoutCmd(deps))
	rootCmd.AddCommand(NewSearchCmd(deps))
	rootCmd.AddCommand(NewJobsCmd(deps))
	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewPlayCmd(deps))

	return rootCmd
}
