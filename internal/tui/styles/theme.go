// Package styles holds the Catppuccin Mocha palette and the shared lipgloss
// styles of the monitor.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Surface2 = lipgloss.Color("#585b70")
	Overlay0 = lipgloss.Color("#6c7086")
	Subtext0 = lipgloss.Color("#a6adc8")
	Subtext1 = lipgloss.Color("#bac2de")
	Text     = lipgloss.Color("#cdd6f4")

	Blue   = lipgloss.Color("#89b4fa")
	Sky    = lipgloss.Color("#89dceb")
	Green  = lipgloss.Color("#a6e3a1")
	Yellow = lipgloss.Color("#f9e2af")
	Peach  = lipgloss.Color("#fab387")
	Red    = lipgloss.Color("#f38ba8")
	Mauve  = lipgloss.Color("#cba6f7")
)

var (
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Surface2).
			Padding(0, 1)

	TimestampStyle = lipgloss.NewStyle().Foreground(Subtext0)
	RXStyle        = lipgloss.NewStyle().Foreground(Sky).Bold(true)
	NoticeStyle    = lipgloss.NewStyle().Foreground(Overlay0).Italic(true)
	ErrorStyle     = lipgloss.NewStyle().Foreground(Red).Bold(true)
)

// Indicator returns a bold single colour style for status markers.
func Indicator(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
