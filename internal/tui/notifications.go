package tui

import (
	"github.com/charmbracelet/lipgloss"

	svcboard "github.com/veldrane/dealdeck/internal/services/board"
)

// notification is a single user-facing banner message.
type notification struct {
	severity svcboard.Severity
	message  string
}

// renderNotification renders a single-line notification with severity
// styling. It replaces the status bar while active so the board above it
// never shifts.
func renderNotification(n notification) string {
	icon, fg := "●", colorInfoFg
	if n.severity == svcboard.SeverityError {
		icon, fg = "✗", colorErrorFg
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(fg)).
		Bold(true).
		Render(icon+" ") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color(fg)).
			Render(n.message)
}
