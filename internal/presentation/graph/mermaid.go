// Package graph renders the registered forms as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/hearth/pkg/domain"
)

// Overlay marks the state of one conversation on the chart.
type Overlay struct {
	Action  domain.ActionType
	Pending string
}

// OverlayFor builds the overlay of a stored conversation.
func OverlayFor(conv *domain.Conversation) *Overlay {
	if conv == nil || conv.Action == "" {
		return nil
	}
	return &Overlay{Action: conv.Action, Pending: conv.Pending}
}

// GenerateMermaid produces a Mermaid flowchart from forms with semantic
// shapes:
// - Form: ((Circle)), labelled with its global keywords
// - Action: [[Subroutine]], reached through its keywords
// - Required slot: [/Parallelogram/], since it may trigger a question
// - Optional slot: [Rectangle], linked with a dotted edge
func GenerateMermaid(forms []domain.Form, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, form := range forms {
		formID := "form_" + sanitizeMermaidID(form.Name)
		fmt.Fprintf(&sb, "    %s((\"%s <br/> %s\"))\n", formID, form.Name, escape(strings.Join(form.Keywords, ", ")))

		for _, action := range form.Actions {
			actionID := sanitizeMermaidID(string(action.Type))
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", actionID, action.Type)
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", formID, escape(strings.Join(action.Keywords, ", ")), actionID)

			for _, slot := range action.Slots {
				slotID := actionID + "_" + sanitizeMermaidID(slot.Name)
				if slot.Required() {
					fmt.Fprintf(&sb, "    %s[/\"%s: %s <br/> %s\"/]\n", slotID, slot.Name, slot.Type, escape(slot.Question))
					fmt.Fprintf(&sb, "    %s --> %s\n", actionID, slotID)
				} else {
					fmt.Fprintf(&sb, "    %s[\"%s: %s\"]\n", slotID, slot.Name, slot.Type)
					fmt.Fprintf(&sb, "    %s -.-> %s\n", actionID, slotID)
				}
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		actionID := sanitizeMermaidID(string(overlay.Action))
		if overlay.Pending != "" {
			fmt.Fprintf(&sb, "    class %s visited;\n", actionID)
			fmt.Fprintf(&sb, "    class %s_%s current;\n", actionID, sanitizeMermaidID(overlay.Pending))
		} else {
			fmt.Fprintf(&sb, "    class %s current;\n", actionID)
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
