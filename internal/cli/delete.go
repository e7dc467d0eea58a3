package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/output"
)

func NewDeleteCmd(deps *Dependencies) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a recording permanently",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			art, err := deps.App.Library.Find(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !yes {
				fmt.Fprintf(os.Stdout, "Delete %s? This cannot be undone. [y/N] ", art.Name)
				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(line)); a != "y" && a != "yes" {
					formatter.Info("Kept " + art.Name)
					return nil
				}
			}

			if _, err := deps.App.Library.Delete(cmd.Context(), art.Ref); err != nil {
				return err
			}
			formatter.Success("Deleted " + art.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
