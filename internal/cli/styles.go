package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	accentColor = lipgloss.Color("#10B981") // Green
	mutedColor  = lipgloss.Color("#6B7280") // Gray

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	commandStyle = lipgloss.NewStyle().Foreground(accentColor)
	labelStyle   = lipgloss.NewStyle().Bold(true).Width(14)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	okStyle      = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
)

// isTerminal reports whether f is attached to an interactive terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
