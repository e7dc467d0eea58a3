package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/output"
)

func NewLocationCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Show or change where recordings are saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showLocation(deps)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the save location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showLocation(deps)
		},
	})
	cmd.AddCommand(newLocationChooseCmd(deps))
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Save recordings to the default private directory again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.App.Settings.Reset(); err != nil {
				return err
			}
			output.NewFormatter(os.Stdout).Success("Saving to " + deps.App.Locations.DefaultDir())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "grants",
		Short: "List folders rec has been granted access to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			list, err := deps.App.Settings.Grants()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				formatter.Info("No folders granted")
				return nil
			}
			current := deps.App.Settings.Current()
			for _, g := range list {
				formatter.GrantListItem(g, current.Raw == g.Handle)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "revoke <handle>",
		Short: "Withdraw access to a granted folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.App.Settings.Revoke(args[0]); err != nil {
				return err
			}
			output.NewFormatter(os.Stdout).Success("Revoked " + args[0])
			return nil
		},
	})

	return cmd
}

func newLocationChooseCmd(deps *Dependencies) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "choose <dir>",
		Short: "Save recordings into dir",
		Long:  "Grant rec access to dir and save new recordings there.\nWith --plain the directory is used as a plain path and created if missing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			if plain {
				dir, err := deps.App.Settings.ChoosePath(args[0])
				if err != nil {
					return err
				}
				formatter.Success("Saving to " + dir)
				return nil
			}

			g, err := deps.App.Settings.ChooseScoped(args[0])
			if err != nil {
				return err
			}
			formatter.Success("Granted " + g.Dir + " as " + g.Handle)
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Use dir as a plain path instead of a granted folder")

	return cmd
}

func showLocation(deps *Dependencies) error {
	loc := deps.App.Settings.Current()
	output.NewFormatter(os.Stdout).Location(loc.Kind.String(), deps.App.Settings.Describe(loc))
	return nil
}
