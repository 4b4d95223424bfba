package main

import (
	"context"

	"github.com/aretw0/hearth"
	"github.com/aretw0/hearth/internal/cli"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the demo device worker on the Redis broker",
	Long: `Consumes dispatch requests and acknowledges them without touching any device.
By default it serves every form channel and the auth channel. --expire-every N
makes every Nth request fail with expired credentials until the assistant
refreshes them, which exercises the retry path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		channels, _ := cmd.Flags().GetStringSlice("channel")
		if len(channels) == 0 {
			forms, err := cfg.DomainForms()
			if err != nil {
				return err
			}
			if len(forms) == 0 {
				forms = hearth.DefaultForms()
			}
			channels = cli.Channels(cfg, forms)
		}
		expireEvery, _ := cmd.Flags().GetInt("expire-every")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.RunWorkers(sigCtx, cfg, cli.WorkerOptions{
			Channels:    channels,
			ExpireEvery: expireEvery,
		})
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().StringSlice("channel", nil, "Channel to serve (repeatable; default all)")
	workerCmd.Flags().Int("expire-every", 0, "Simulate expired credentials on every Nth request")
}
