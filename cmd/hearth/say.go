package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/hearth/internal/cli"
	"github.com/aretw0/hearth/internal/presentation/tui"
	"github.com/aretw0/hearth/pkg/domain"
	"github.com/spf13/cobra"
)

var sayCmd = &cobra.Command{
	Use:   "say <words>...",
	Short: "Interpret a single command",
	Long: `Interprets one utterance and prints the reply. Use --session with a persistent
sessions backend to answer a question asked by a previous call.`,
	Example: `  hearth say vpn start france paris
  hearth say --session kitchen lights dim
  hearth say --session kitchen 40`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		sessionID, _ := cmd.Flags().GetString("session")
		jsonOut, _ := cmd.Flags().GetBool("json")

		reply, err := app.Assistant.Say(sigCtx, sessionID, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := cli.PrintReply(os.Stdout, reply, jsonOut, tui.Plain); err != nil {
			return err
		}

		switch reply.Outcome {
		case domain.OutcomeDone, domain.OutcomeClarify:
			return nil
		default:
			return fmt.Errorf("command %s", reply.Outcome)
		}
	},
}

func init() {
	rootCmd.AddCommand(sayCmd)
	sayCmd.Flags().StringP("session", "s", "cli", "Session ID")
	sayCmd.Flags().Bool("json", false, "Print the reply as JSON")
}
