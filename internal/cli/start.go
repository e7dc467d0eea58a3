package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/output"
)

func NewStartCmd(deps *Dependencies) *cobra.Command {
	var sync bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start recording",
		Long:  "Start recording from the microphone into the current save location.\nUse --sync to record in foreground (Ctrl+C to stop), or run in background and use 'rec stop'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			if sync {
				return runSyncRecording(cmd.Context(), deps, formatter)
			}
			return runAsyncRecording(cmd.Context(), deps, formatter)
		},
	}

	cmd.Flags().BoolVar(&sync, "sync", false, "Record in foreground (Ctrl+C to stop)")

	return cmd
}

func runAsyncRecording(ctx context.Context, deps *Dependencies, formatter *output.Formatter) error {
	sess, err := deps.App.Recorder.Start(ctx)
	if err != nil {
		return err
	}

	formatter.RecordingStarted(sess, false)
	return nil
}

func runSyncRecording(ctx context.Context, deps *Dependencies, formatter *output.Formatter) error {
	progress, cancel := deps.App.Recorder.Subscribe()
	defer cancel()

	sess, err := deps.App.Recorder.Start(ctx)
	if err != nil {
		return err
	}
	formatter.RecordingStarted(sess, true)

	interrupted, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for waiting := true; waiting; {
		select {
		case <-interrupted.Done():
			waiting = false
		case p := <-progress:
			formatter.Progress(p.Elapsed)
		}
	}

	// Saving must finish even though the signal context is done.
	return finishRecording(context.WithoutCancel(ctx), deps, formatter)
}

func finishRecording(ctx context.Context, deps *Dependencies, formatter *output.Formatter) error {
	art, sess, err := deps.App.Recorder.Stop(ctx)
	if sess != nil {
		formatter.RecordingStopped(time.Since(sess.StartedAt))
	}
	if err != nil {
		return err
	}
	formatter.RecordingSaved(art)
	return nil
}
