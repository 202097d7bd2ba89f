package tui

import "github.com/charmbracelet/lipgloss"

// Theme colors
const (
	colorSubtle         = "240"
	colorTitle          = "205"
	colorBorder         = "238"
	colorSelectedBorder = "205"
	colorDropTarget     = "42"
	colorCardBg         = "236"
	colorSelectedBg     = "239"
	colorPending        = "214"
	colorErrorFg        = "203"
	colorInfoFg         = "75"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorTitle))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSubtle))

	stageHeaderStyle = lipgloss.NewStyle().Bold(true)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder))

	selectedColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color(colorSelectedBorder))

	dropTargetColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color(colorDropTarget))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(colorBorder))

	selectedCardStyle = cardStyle.
				BorderForeground(lipgloss.Color(colorSelectedBorder))

	pendingCardStyle = cardStyle.
				BorderForeground(lipgloss.Color(colorPending))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSubtle))
)
