package components

import (
	"strings"

	"github.com/allbin/go-comport/internal/hexfmt"
	"github.com/allbin/go-comport/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type SendingMode int

const (
	SendingModeASCII SendingMode = iota
	SendingModeHex
)

func (s SendingMode) String() string {
	if s == SendingModeHex {
		return "HEX"
	}
	return "ASCII"
}

const historyLimit = 100

const (
	asciiPlaceholder = "Type message and press Enter to send..."
	hexPlaceholder   = "Enter hex (e.g. 48656C6C6F or 48 65 6C 6C 6F)..."
)

// Input is the single line editor with ASCII/HEX modes and history
type Input struct {
	textInput     textinput.Model
	sendingMode   SendingMode
	lineEnding    string
	history       []string
	historyIndex  int
	currentInput  string
	terminalWidth int
}

// NewInput creates an ASCII mode input whose payloads end with lineEnding.
func NewInput(lineEnding string) *Input {
	ti := textinput.New()
	ti.Placeholder = asciiPlaceholder
	ti.CharLimit = 256
	ti.Prompt = ""

	return &Input{
		textInput:    ti,
		lineEnding:   lineEnding,
		historyIndex: -1,
	}
}

func (i *Input) SetWidth(width int) {
	i.terminalWidth = width
	// border(2) + padding(2) + prompt(1) + space(1)
	usable := width - 6
	if usable < 20 {
		usable = 20
	}
	i.textInput.Width = usable
}

func (i *Input) Focus() {
	i.textInput.Focus()
}

func (i *Input) Blur() {
	i.textInput.Blur()
}

func (i *Input) Value() string {
	return i.textInput.Value()
}

func (i *Input) SetValue(value string) {
	i.textInput.SetValue(value)
}

func (i *Input) SendingMode() SendingMode {
	return i.sendingMode
}

func (i *Input) ToggleSendingMode() {
	if i.sendingMode == SendingModeASCII {
		i.sendingMode = SendingModeHex
		i.textInput.Placeholder = hexPlaceholder
	} else {
		i.sendingMode = SendingModeASCII
		i.textInput.Placeholder = asciiPlaceholder
	}
}

// Payload converts the current value into the bytes to transmit.
func (i *Input) Payload() ([]byte, error) {
	if i.sendingMode == SendingModeHex {
		return hexfmt.Parse(i.Value())
	}
	return []byte(i.Value() + i.lineEnding), nil
}

func (i *Input) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return cmd
}

func (i *Input) View(insert bool) string {
	symbol, color := ">", styles.Green
	if i.sendingMode == SendingModeHex {
		symbol, color = "#", styles.Yellow
	}
	prompt := styles.Indicator(color).Render(symbol)

	var content string
	if insert {
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", i.textInput.View())
	} else {
		hint := lipgloss.NewStyle().Foreground(styles.Overlay0).Render("Press 'i' to enter insert mode")
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", hint)
	}

	// RoundedBorder and Padding(0, 1) take four columns
	width := i.terminalWidth - 4
	if width < 10 {
		width = 10
	}
	style := styles.InputStyle.Width(width).AlignHorizontal(lipgloss.Left)
	if insert {
		style = style.BorderForeground(styles.Green)
	}
	return style.Render(content)
}

// AddToHistory records a sent line unless it is blank or repeats the last one
func (i *Input) AddToHistory(line string) {
	line = strings.TrimSpace(line)
	i.historyIndex = -1
	i.currentInput = ""
	if line == "" || (len(i.history) > 0 && i.history[len(i.history)-1] == line) {
		return
	}
	i.history = append(i.history, line)
	if len(i.history) > historyLimit {
		i.history = i.history[1:]
	}
}

func (i *Input) HistoryUp() {
	if len(i.history) == 0 {
		return
	}
	if i.historyIndex == -1 {
		i.currentInput = i.textInput.Value()
		i.historyIndex = len(i.history) - 1
	} else if i.historyIndex > 0 {
		i.historyIndex--
	}
	i.textInput.SetValue(i.history[i.historyIndex])
}

func (i *Input) HistoryDown() {
	if i.historyIndex == -1 {
		return
	}
	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.textInput.SetValue(i.history[i.historyIndex])
		return
	}
	i.historyIndex = -1
	i.textInput.SetValue(i.currentInput)
	i.currentInput = ""
}
