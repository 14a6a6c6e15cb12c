package cli

import (
	"github.com/spf13/cobra"

	"github.com/edgewake/trace2wake/commands"
)

var screenCmd = &cobra.Command{
	Use:   "screen [on|off]",
	Short: "Show or push the display power state",
	Long: `Without arguments prints whether the daemon considers the screen suspended.
"off" marks it suspended so swipes are recognized, "on" marks it awake.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := daemonAddr()
		if len(args) == 0 {
			return printResponse(commands.ScreenGetCommand(addr))
		}
		if err := cobra.OnlyValidArgs(cmd, args); err != nil {
			return err
		}
		return printResponse(commands.ScreenSetCommand(addr, args[0] == "off"))
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)
}
