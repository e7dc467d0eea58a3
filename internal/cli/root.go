package cli

import (
	"github.com/spf13/cobra"

	"github.com/doomdagadiggiedahdah/audio-recorder/config"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/app"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/version"
)

type Dependencies struct {
	App    *app.App
	Config *config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rec",
		Short:         "Record, list and play voice memos",
		Long:          "A CLI voice recorder. Recordings go to a private directory by default, or to a folder you grant access to with 'rec location choose'.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewStartCmd(deps))
	rootCmd.AddCommand(NewStopCmd(deps))
	rootCmd.AddCommand(NewStatusCmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewPlayCmd(deps))
	rootCmd.AddCommand(NewDeleteCmd(deps))
	rootCmd.AddCommand(NewLocationCmd(deps))
	rootCmd.AddCommand(NewSetupCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}
