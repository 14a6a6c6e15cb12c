package cli

import (
	"github.com/spf13/cobra"

	"github.com/edgewake/trace2wake/commands"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List input devices",
	Long:  `Lists /dev/input event devices and marks the ones that look like touchscreens.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.DevicesCommand(touchOnly))
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)

	devicesCmd.Flags().BoolVar(&touchOnly, "touch", false, "only list touchscreen candidates")
}
