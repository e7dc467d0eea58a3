package cli

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording/usecases"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/output"
)

func NewPlayCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "play <name>",
		Short: "Play a recording",
		Long:  "Play a recording from the save location. Blocks until it ends; Ctrl+C stops it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			art, err := deps.App.Library.Find(ctx, args[0])
			if err != nil {
				return err
			}

			events, cancel := deps.App.Playback.Subscribe()
			defer cancel()

			if _, err := deps.App.Playback.Play(ctx, art.Ref); err != nil {
				return err
			}
			formatter.Playing(art.Name)

			for {
				select {
				case <-ctx.Done():
					deps.App.Playback.Stop()
					formatter.PlaybackStopped(art.Name)
					return nil
				case ev := <-events:
					switch ev.Kind {
					case usecases.Ended:
						return nil
					case usecases.Failed:
						return ev.Err
					}
				}
			}
		},
	}
}
