package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/edgewake/trace2wake/commands"
	"github.com/edgewake/trace2wake/config"
	"github.com/edgewake/trace2wake/daemon"
	"github.com/edgewake/trace2wake/utils"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "trace2wake",
	Short: "Wake the screen with an edge swipe",
	Long: `trace2wake watches the touchscreen while the display is off and presses
the power key when a swipe is drawn along the bottom arc from one corner to
the other.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       commands.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func initConfig() {
	utils.SetVerbose(verbose)
	utils.SetJSON(jsonLogs)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "log-json", false, "write logs as JSON lines")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", fmt.Sprintf("config file, .ini or .toml (default: %s)", config.DefaultPath()))
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", "", fmt.Sprintf("address of a running daemon (default: from config, or %s)", config.DefaultListen))
}

// Execute runs the root command. ctx is cancelled on SIGINT/SIGTERM.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the config named by --config. A daemon child uses the
// absolute path its parent resolved instead.
func loadConfig() (config.Config, error) {
	if path := daemon.ChildConfigPath(); path != "" {
		return config.Load(path)
	}
	return config.Load(configPath)
}

// daemonAddr resolves the address client commands talk to.
func daemonAddr() string {
	if serverAddr != "" {
		return serverAddr
	}
	cfg, err := loadConfig()
	if err != nil {
		utils.Verbose("Falling back to %s: %v", config.DefaultListen, err)
		return config.DefaultListen
	}
	return cfg.Server.Listen
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
}

// printResponse prints a command response and turns a failure into an error.
func printResponse(response *commands.CommandResponse) error {
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}
