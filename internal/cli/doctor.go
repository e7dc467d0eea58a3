package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/output"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(os.Stdout)
			if runChecks(deps, f) {
				f.Success("\nAll prerequisites met. Ready to record!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}

// runChecks reports each prerequisite and whether all of them passed.
func runChecks(deps *Dependencies, f *output.Formatter) bool {
	ok := true

	if err := deps.App.Capture.CheckFFmpeg(); err != nil {
		f.SetupCheck("ffmpeg", false, err.Error())
		ok = false
	} else {
		f.SetupCheck("ffmpeg", true, "installed")
	}

	if err := deps.App.Player.CheckFFplay(); err != nil {
		f.SetupCheck("ffplay", false, err.Error())
		ok = false
	} else {
		f.SetupCheck("ffplay", true, "installed")
	}

	f.SetupCheck("Input", true, deps.App.Capture.Input.Describe())

	if deps.App.Permission.Granted() {
		f.SetupCheck("Microphone", true, "access granted")
	} else {
		f.SetupCheck("Microphone", true, "access will be requested on first recording")
	}

	loc := deps.App.Settings.Current()
	if loc.IsScoped() {
		if _, err := deps.App.Settings.Broker.Resolve(loc.Raw); err != nil {
			f.SetupCheck("Save location", false, deps.App.Settings.Describe(loc))
			ok = false
		} else {
			f.SetupCheck("Save location", true, deps.App.Settings.Describe(loc)+" (granted folder)")
		}
	} else {
		f.SetupCheck("Save location", true, loc.Raw)
	}

	f.SetupCheck("Log file", true, deps.Config.LogPath())
	return ok
}
