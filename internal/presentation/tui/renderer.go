// Package tui renders assistant replies for an interactive terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/hearth/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// Renderer turns markdown into terminal output.
type Renderer func(string) (string, error)

// NewRenderer returns a Renderer using glamour with a style matched to the
// terminal background.
func NewRenderer() Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return Plain
	}
	return r.Render
}

// Plain returns markdown unchanged.
func Plain(markdown string) (string, error) {
	return markdown, nil
}

// Markdown formats a reply: the message, then the candidates of an
// ambiguous command as a list.
func Markdown(reply *domain.Reply) string {
	var sb strings.Builder
	switch reply.Outcome {
	case domain.OutcomeClarify:
		fmt.Fprintf(&sb, "**%s**\n", reply.Message)
	case domain.OutcomeAmbiguous:
		sb.WriteString("I found several matches:\n\n")
		for _, c := range reply.Candidates {
			fmt.Fprintf(&sb, "- `%s`\n", c)
		}
		sb.WriteString("\nPlease be more specific.\n")
	default:
		sb.WriteString(reply.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Prompt is the colored input prompt; it hints at a pending question.
func Prompt(reply *domain.Reply) string {
	p := termenv.ColorProfile()
	if reply != nil && reply.Outcome == domain.OutcomeClarify {
		return termenv.String("? ").Foreground(p.Color("#fbbf24")).String()
	}
	return termenv.String("> ").Foreground(p.Color("#f97316")).String()
}
