package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/output"
)

func NewListCmd(deps *Dependencies) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recordings in the save location",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			if !watch {
				printListing(cmd.Context(), deps, formatter)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			changes, cancel := deps.App.Locations.Subscribe()
			defer cancel()
			if err := deps.App.Locations.Watch(ctx); err != nil {
				return err
			}

			printListing(ctx, deps, formatter)
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-changes:
					formatter.Info("Save location changed")
					printListing(ctx, deps, formatter)
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and list again when the save location changes")

	return cmd
}

// printListing shows the current location's recordings. Listing errors are
// reported and an empty list is shown.
func printListing(ctx context.Context, deps *Dependencies, formatter *output.Formatter) {
	res, err := deps.App.Library.List(ctx)
	if res.FellBack {
		formatter.LocationFallback(deps.App.Settings.Describe(res.Revoked), res.Location.Raw)
	}
	if err != nil {
		formatter.Error(err.Error())
	}

	where := deps.App.Settings.Describe(res.Location)
	if len(res.Artifacts) == 0 {
		formatter.Info("No recordings found in " + where)
		return
	}

	formatter.RecordingListHeader(where)
	for _, a := range res.Artifacts {
		formatter.RecordingListItem(a)
	}
}
