package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the hearth ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []termenv.Style{
		termenv.String("  _                     _   _     ").Foreground(p.Color("#fbbf24")),
		termenv.String(" | |__   ___  __ _ _ __| |_| |__  ").Foreground(p.Color("#f59e0b")),
		termenv.String(" | '_ \\ / _ \\/ _` | '__| __| '_ \\ ").Foreground(p.Color("#f97316")),
		termenv.String(" | | | |  __/ (_| | |  | |_| | | |").Foreground(p.Color("#ef4444")),
		termenv.String(" |_| |_|\\___|\\__,_|_|   \\__|_| |_|").Foreground(p.Color("#dc2626")),
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	fmt.Fprintln(w)
}
