package main

import (
	"context"
	"os"

	"github.com/aretw0/hearth/internal/cli"
	"github.com/aretw0/hearth/internal/presentation/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant interactively",
	Long: `Reads one command per line. When the assistant asks a question, answer it on
the next line. Type 'reset' to drop a pending question and 'exit' to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		if err := app.Connect(sigCtx); err != nil {
			return err
		}

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = uuid.NewString()[:8]
		}
		jsonOut, _ := cmd.Flags().GetBool("json")

		interactive := !jsonOut && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		renderer := tui.Plain
		if interactive {
			renderer = tui.NewRenderer()
		}

		return cli.Chat(sigCtx, app.Assistant, cli.ChatOptions{
			SessionID:   sessionID,
			In:          os.Stdin,
			Out:         os.Stdout,
			Interactive: interactive,
			JSON:        jsonOut,
			Renderer:    renderer,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session ID to continue (default: a new one)")
	chatCmd.Flags().Bool("json", false, "Print one JSON reply per line")
}
