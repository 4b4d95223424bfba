package main

import (
	"fmt"
	"os"

	"github.com/aretw0/hearth/internal/cli"
	"github.com/aretw0/hearth/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hearth",
	Short: "Hearth interprets home-automation commands",
	Long: `Hearth turns short commands such as "vpn start france paris" or
"lights dim 40" into requests for device workers listening on a message queue.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default $HEARTH_CONFIG or ./hearth.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// loadApp loads the config and wires the assistant. Callers must Close it.
func loadApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Bootstrap(cfg, cli.NewLogger(cfg.LogLevel, debug))
}
