package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgewake/trace2wake/commands"
	"github.com/edgewake/trace2wake/daemon"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the current gesture session",
	Long:  `Clears the in-progress swipe, for panels that never report a lift.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.ResetCommand(daemonAddr()))
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recognizer counters and session state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.StatsCommand(daemonAddr()))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent power key presses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.HistoryCommand(daemonAddr()))
	},
}

var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the running daemon",
	Long:  `Connects to the daemon and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := daemon.KillServer(daemonAddr())
		if err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(killCmd)
}
