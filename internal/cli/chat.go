package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/hearth"
	"github.com/aretw0/hearth/internal/presentation/tui"
	"github.com/aretw0/hearth/pkg/domain"
)

// ChatOptions configures the interactive loop.
type ChatOptions struct {
	SessionID   string
	In          io.Reader
	Out         io.Writer
	Interactive bool
	JSON        bool
	Renderer    tui.Renderer
}

// Chat reads one utterance per line and prints each reply until EOF, an
// exit command or cancellation. "reset" forgets the pending question.
func Chat(ctx context.Context, a *hearth.Assistant, opts ChatOptions) error {
	if opts.Renderer == nil {
		opts.Renderer = tui.Plain
	}
	if opts.Interactive {
		tui.PrintBanner(opts.Out)
		printSystemMessage(opts.Out, "Session '%s'. Type 'exit' to leave.", opts.SessionID)
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(opts.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	var last *domain.Reply
	for {
		if opts.Interactive {
			fmt.Fprint(opts.Out, tui.Prompt(last))
		}

		var line string
		select {
		case <-ctx.Done():
			if opts.Interactive {
				fmt.Fprintln(opts.Out, "[CTRL+C]")
			}
			return nil
		case err := <-readErr:
			if opts.Interactive {
				fmt.Fprintln(opts.Out)
			}
			return err
		case line = <-lines:
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit", "q":
			if opts.Interactive {
				fmt.Fprintln(opts.Out, "Bye!")
			}
			return nil
		case "reset":
			if err := a.EndSession(ctx, opts.SessionID); err != nil {
				return err
			}
			last = nil
			printSystemMessage(opts.Out, "Session '%s' reset.", opts.SessionID)
			continue
		}

		reply, err := a.Say(ctx, opts.SessionID, line)
		if err != nil {
			if isInterrupted(err) {
				return nil
			}
			return err
		}
		last = reply
		if err := PrintReply(opts.Out, reply, opts.JSON, opts.Renderer); err != nil {
			return err
		}
	}
}

// PrintReply writes reply as one JSON line or as rendered markdown.
func PrintReply(w io.Writer, reply *domain.Reply, asJSON bool, render tui.Renderer) error {
	if asJSON {
		return json.NewEncoder(w).Encode(reply)
	}
	md := tui.Markdown(reply)
	out, err := render(md)
	if err != nil {
		out = md
	}
	_, err = fmt.Fprintln(w, strings.TrimSpace(out))
	return err
}
