package cli

import (
	"github.com/spf13/cobra"

	"github.com/edgewake/trace2wake/commands"
)

var modeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Show or change the recognizer mode",
	Long: `Modes:
  0  disabled
  1  default, the swipe must cross the bottom-center checkpoint
  2  multitouch, reaching the opposite corner is enough`,
}

var modeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.ModeGetCommand(daemonAddr()))
	},
}

var modeSetCmd = &cobra.Command{
	Use:   "set <0|1|2>",
	Short: "Change the mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.ModeSetCommand(daemonAddr(), args[0]))
	},
}

func init() {
	rootCmd.AddCommand(modeCmd)

	modeCmd.AddCommand(modeGetCmd)
	modeCmd.AddCommand(modeSetCmd)
}
