package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/mdw/internal/constants"
)

func NewCmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", constants.AppName, constants.Version)
		},
	}
}
