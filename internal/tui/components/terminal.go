package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// defaultScrollback bounds the number of kept entries.
const defaultScrollback = 5000

// Terminal is a scrolling log of entries that follows the newest one.
type Terminal struct {
	viewport  viewport.Model
	formatter *DataFormatter
	entries   []Entry
	lines     []string
	limit     int
}

func NewTerminal(width, height int) *Terminal {
	return &Terminal{
		viewport:  viewport.New(width, height),
		formatter: NewDataFormatter(true, true),
		limit:     defaultScrollback,
	}
}

func (t *Terminal) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
}

func (t *Terminal) Width() int {
	return t.viewport.Width
}

func (t *Terminal) Entries() []Entry {
	return t.entries
}

func (t *Terminal) Add(e Entry) {
	t.entries = append(t.entries, e)
	t.lines = append(t.lines, t.formatter.Format(e))
	if over := len(t.entries) - t.limit; over > 0 {
		t.entries = t.entries[over:]
		t.lines = t.lines[over:]
	}
	t.show()
}

func (t *Terminal) Clear() {
	t.entries = nil
	t.lines = nil
	t.viewport.SetContent("")
}

func (t *Terminal) ToggleHex() {
	t.formatter.ToggleHex()
	t.refresh()
}

func (t *Terminal) ToggleASCII() {
	t.formatter.ToggleASCII()
	t.refresh()
}

func (t *Terminal) Mode() DisplayMode {
	return t.formatter.Mode()
}

// refresh reformats every entry after a display mode change.
func (t *Terminal) refresh() {
	t.lines = t.lines[:0]
	for _, e := range t.entries {
		t.lines = append(t.lines, t.formatter.Format(e))
	}
	t.show()
}

func (t *Terminal) show() {
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	t.viewport.GotoBottom()
}

// Update only forwards resizes so the viewport does not eat key bindings.
func (t *Terminal) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(tea.WindowSizeMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return cmd
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
