package cli

import (
	"github.com/spf13/cobra"

	"github.com/edgewake/trace2wake/commands"
	"github.com/edgewake/trace2wake/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run system diagnostics",
	Long:  `Checks device permissions, capabilities and touchscreen detection.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.DoctorRequest{ConfigPath: configPath, ListenAddr: config.DefaultListen}
		if cfg, err := loadConfig(); err == nil {
			req.ListenAddr = cfg.Server.Listen
		}
		if req.ConfigPath == "" {
			req.ConfigPath = config.DefaultPath()
		}
		return printResponse(commands.DoctorCommand(req))
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
