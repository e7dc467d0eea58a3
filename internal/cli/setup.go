package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/output"
)

func NewSetupCmd(deps *Dependencies) *cobra.Command {
	var (
		dir          string
		forgetAccess bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Check prerequisites and grant microphone access",
		Long:  "Verify that ffmpeg and ffplay are installed, ask for microphone access and optionally choose a folder for recordings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			if forgetAccess {
				if err := deps.App.Permission.Revoke(); err != nil {
					return err
				}
				formatter.Info("Microphone access forgotten")
			}

			allOk := runChecks(deps, formatter)

			granted, err := deps.App.Permission.RequestMicrophone(cmd.Context())
			if err != nil {
				return err
			}
			if granted {
				formatter.SetupCheck("Microphone", true, "access granted")
			} else {
				formatter.SetupCheck("Microphone", false, "access refused")
				allOk = false
			}

			if dir != "" {
				g, err := deps.App.Settings.ChooseScoped(dir)
				if err != nil {
					return err
				}
				formatter.SetupCheck("Save location", true, g.Dir+" (granted folder)")
			}

			if allOk {
				formatter.Success("\nAll prerequisites met. Ready to record!")
			} else {
				formatter.Warning("\nSome prerequisites are missing. Fix them before recording.")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "location", "", "Grant access to this folder and save recordings there")
	cmd.Flags().BoolVar(&forgetAccess, "forget-microphone", false, "Forget a previous microphone grant before asking again")

	return cmd
}
