package render

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorAccent  = lipgloss.Color("#FFD700")
	colorSuccess = lipgloss.Color("#00E676")
	colorDanger  = lipgloss.Color("#FF5252")
	colorMuted   = lipgloss.Color("#8C8C8C")
)

const (
	iconDone    = "✓"
	iconFailed  = "✗"
	iconWarning = "⚠"
	iconNew     = "★"
)

var (
	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(12)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	styleFailed = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	styleNew = lipgloss.NewStyle().
			Foreground(colorAccent)

	styleCommand = lipgloss.NewStyle().
			Foreground(colorPrimary).
			PaddingLeft(2)
)

// Card borders by outcome.
var (
	styleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	styleCardSuccess  = styleCard.BorderForeground(colorSuccess)
	styleCardFailed   = styleCard.BorderForeground(colorDanger)
	styleCardConflict = styleCard.BorderForeground(colorAccent)
)
