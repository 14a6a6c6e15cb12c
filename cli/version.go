package cli

import (
	"github.com/spf13/cobra"

	"github.com/edgewake/trace2wake/commands"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Long:  `Prints the version of this binary, and of the running daemon if one answers.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.VersionCommand(daemonAddr()))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
