package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgewake/trace2wake/daemon"
	"github.com/edgewake/trace2wake/service"
	"github.com/edgewake/trace2wake/utils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the gesture recognizer",
	Long: `Opens the touchscreen and the power key device and recognizes wake swipes
until interrupted. A JSON-RPC control server listens unless disabled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if runInput != "" {
			cfg.General.Input = runInput
		}
		if runListen != "" {
			cfg.Server.Listen = runListen
		}
		if runNoServer {
			cfg.Server.Enabled = false
		}

		if cfg.Server.Enabled && !utils.IsAddrAvailable(cfg.Server.Listen) {
			return fmt.Errorf("%s is already in use, is another trace2wake running?", cfg.Server.Listen)
		}

		if runDaemon && !daemon.IsChild() {
			_, err := daemon.Daemonize(runLogFile, configPath)
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("trace2wake daemon spawned, control server on %s\n", cfg.Server.Listen)
			return nil
		}

		svc, err := service.New(cfg, service.Options{})
		if err != nil {
			return err
		}
		return svc.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&runDaemon, "daemon", "d", false, "run in the background")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "log file for daemon mode")
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "touch event device (default: first device named like a touchscreen)")
	runCmd.Flags().StringVar(&runListen, "listen", "", "control server address (e.g., 'localhost:12010' or '0.0.0.0:13000')")
	runCmd.Flags().BoolVar(&runNoServer, "no-server", false, "do not start the control server")
}
