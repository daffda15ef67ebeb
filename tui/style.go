package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleYouSee = lipgloss.NewStyle().
			Bold(true)

	styleExits = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	stylePrompt = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindYouSee
	kindExits
	kindPrompt
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "You see:"):
		return kindYouSee
	case strings.HasPrefix(line, "Exits:"):
		return kindExits
	case strings.HasPrefix(line, "Which "),
		strings.HasPrefix(line, "What do you want"),
		strings.HasPrefix(line, "  ") && isMenuEntry(line):
		return kindPrompt
	case strings.HasPrefix(line, "I don't see"),
		strings.HasPrefix(line, "I don't understand"),
		strings.HasPrefix(line, "You can't"),
		strings.HasPrefix(line, "You aren't carrying"),
		strings.HasPrefix(line, "You're not"):
		return kindError
	default:
		return kindNarrative
	}
}

// isMenuEntry reports whether an indented line looks like a numbered
// disambiguation choice ("  1. Vine Weasel ...").
func isMenuEntry(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(trimmed) < 3 {
		return false
	}
	return trimmed[0] >= '1' && trimmed[0] <= '9' && trimmed[1] == '.'
}

// styledYouSee renders "You see: thing, other thing." with the names bold.
func styledYouSee(line string) string {
	const prefix = "You see: "
	if !strings.HasPrefix(line, prefix) {
		return styleNarrative.Render(line)
	}
	return styleNarrative.Render(prefix) + styleYouSee.Render(line[len(prefix):])
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
