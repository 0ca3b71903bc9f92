package components

import (
	"fmt"

	"github.com/allbin/go-comport/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// StatusBar is the nvim style line at the bottom of the monitor
type StatusBar struct {
	portPath string
	link     string
	err      error
	width    int
	rxBytes  int
	txBytes  int
	rts, dtr bool
}

func NewStatusBar(portPath string) *StatusBar {
	return &StatusBar{portPath: portPath}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// SetLink records the settings read back after open, e.g. "57600 8N2".
func (sb *StatusBar) SetLink(link string) {
	sb.link = link
}

func (sb *StatusBar) SetError(err error) {
	sb.err = err
}

func (sb *StatusBar) Err() error {
	return sb.err
}

func (sb *StatusBar) CountRX(n int) {
	sb.rxBytes += n
}

func (sb *StatusBar) CountTX(n int) {
	sb.txBytes += n
}

func (sb *StatusBar) SetLines(rts, dtr bool) {
	sb.rts, sb.dtr = rts, dtr
}

func (sb *StatusBar) Counts() (rx, tx int) {
	return sb.rxBytes, sb.txBytes
}

func (sb *StatusBar) View(insert bool, sendingMode string, connected bool, timestamp string) string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	modeText, modeColor := "NORMAL", styles.Blue
	if insert {
		modeText, modeColor = "INSERT", styles.Green
	}
	mode := lipgloss.NewStyle().
		Foreground(styles.Base).
		Background(modeColor).
		Bold(true).
		Padding(0, 1).
		Render(modeText)

	port := lipgloss.NewStyle().Foreground(styles.Mauve).Bold(true).Padding(0, 1).Render(sb.portPath)

	var conn string
	switch {
	case sb.err != nil:
		conn = lipgloss.NewStyle().Foreground(styles.Red).Render("✗ " + sb.err.Error())
	case connected:
		conn = lipgloss.NewStyle().Foreground(styles.Green).Render("●")
	default:
		conn = lipgloss.NewStyle().Foreground(styles.Yellow).Render("○")
	}

	divider := lipgloss.NewStyle().Foreground(styles.Surface2).Padding(0, 1).Render("│")

	left := []string{mode, port, conn}
	if insert {
		left = append(left, lipgloss.NewStyle().
			Foreground(styles.Peach).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("[%s] Tab to toggle", sendingMode)))
	}
	left = append(left, divider)
	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, left...)

	link := sb.link
	if link == "" {
		link = "serial"
	}
	details := lipgloss.NewStyle().Foreground(styles.Subtext0).Padding(0, 1).Render(
		fmt.Sprintf("⚡ %s RTS:%s DTR:%s  rx %d tx %d", link, onOff(sb.rts), onOff(sb.dtr), sb.rxBytes, sb.txBytes))
	clock := lipgloss.NewStyle().Foreground(styles.Subtext1).Padding(0, 1).Render(timestamp)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, details, divider, clock)

	spacerWidth := width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.Surface0).
		Width(width).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}

func onOff(state bool) string {
	if state {
		return "↑"
	}
	return "↓"
}
