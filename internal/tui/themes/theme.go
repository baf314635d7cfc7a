// Package themes holds the dashboard color schemes.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the dashboard.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Label       lipgloss.Style
	Normal      lipgloss.Style
	Bold        lipgloss.Style
	Panel       lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Positive    lipgloss.Style
	Negative    lipgloss.Style
	Warning     lipgloss.Style
	Muted       lipgloss.Style
	Primary     lipgloss.Color
	Success     lipgloss.Color
	Danger      lipgloss.Color
	Border      lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary: lipgloss.Color("#4ECDC4"),
	Success: lipgloss.Color("#10b981"),
	Danger:  lipgloss.Color("#ef4444"),
	Border:  lipgloss.Color("#404040"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#4ECDC4")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Label: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")).
		Width(20),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Panel: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	ActiveTab: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#1a1a1a")).
		Background(lipgloss.Color("#4ECDC4")).
		Padding(0, 1),
	InactiveTab: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Padding(0, 1),
	Positive: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#10b981")),
	Negative: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ef4444")),
	Warning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
}
