package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/output"
)

func NewStopCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop recording and save it",
		Long:  "Stop the background recording and save it into the location it was started in.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return finishRecording(cmd.Context(), deps, output.NewFormatter(os.Stdout))
		},
	}

	return cmd
}

func NewStatusCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a recording is in progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			sess, err := deps.App.Recorder.Active()
			if errors.Is(err, recording.ErrNotRecording) {
				formatter.RecordingStatus(nil)
				return nil
			}
			if err != nil {
				return err
			}
			formatter.RecordingStatus(sess)
			return nil
		},
	}
}
