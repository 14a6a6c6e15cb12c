package cli

import (
	"github.com/spf13/cobra"

	"github.com/edgewake/trace2wake/commands"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  `Prints the configuration after defaults, the config file and the T2W environment variable are applied.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}
		return printResponse(commands.NewSuccessResponse(cfg))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
