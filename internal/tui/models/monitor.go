package models

import (
	"fmt"
	"time"

	comport "github.com/allbin/go-comport"
	"github.com/allbin/go-comport/internal/tui/components"
	"github.com/allbin/go-comport/internal/tui/keys"
	"github.com/allbin/go-comport/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	if m == InputModeInsert {
		return "INSERT"
	}
	return "NORMAL"
}

// Link is the part of a buffered port the monitor drives. All calls happen
// from Update, so the port is only ever touched by one goroutine.
type Link interface {
	Name() string
	BufferUpdate() error
	Buffer() []byte
	BufferClear()
	Transmit(data []byte) error
	Flush(in, out bool) error
	SetRTS(state bool) error
	SetDTR(state bool) error
	ModemLines() (comport.ModemSignals, error)
	Close() error
}

type pollMsg time.Time

// Monitor shows what arrives on a port and sends what is typed.
type Monitor struct {
	port      Link
	interval  time.Duration
	connected bool
	ready     bool
	mode      InputMode
	rts, dtr  bool

	terminal  *components.Terminal
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.MonitorKeys
	now       func() time.Time
}

// NewMonitor wraps an open port. link is the settings summary for the
// status bar and interval the receive polling period, never shorter than
// comport.Tick.
func NewMonitor(port Link, link, lineEnding string, interval time.Duration) *Monitor {
	m := &Monitor{
		port:      port,
		interval:  max(interval, comport.Tick),
		connected: true,
		terminal:  components.NewTerminal(0, 0),
		statusBar: components.NewStatusBar(port.Name()),
		input:     components.NewInput(lineEnding),
		help:      help.New(),
		keys:      keys.NewMonitorKeys(),
		now:       time.Now,
	}
	m.statusBar.SetLink(link)
	if lines, err := port.ModemLines(); err == nil {
		m.rts, m.dtr = lines.RTS, lines.DTR
		m.statusBar.SetLines(m.rts, m.dtr)
	}
	return m
}

func (m *Monitor) Init() tea.Cmd {
	return m.poll()
}

func (m *Monitor) poll() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

// drain moves whatever the driver queued into the log.
func (m *Monitor) drain(at time.Time) error {
	if err := m.port.BufferUpdate(); err != nil {
		return err
	}
	data := m.port.Buffer()
	if len(data) == 0 {
		return nil
	}
	m.port.BufferClear()
	m.terminal.Add(components.Entry{Time: at, Dir: components.RX, Data: data})
	m.statusBar.CountRX(len(data))
	return nil
}

func (m *Monitor) notice(format string, args ...any) {
	m.terminal.Add(components.Entry{Time: m.now(), Dir: components.Notice, Text: fmt.Sprintf(format, args...)})
}

func (m *Monitor) disconnect(err error) {
	m.connected = false
	m.statusBar.SetError(err)
	m.notice("receive stopped: %v", err)
}

func (m *Monitor) send() {
	if m.input.Value() == "" || !m.connected {
		return
	}
	payload, err := m.input.Payload()
	if err != nil {
		m.notice("Invalid hex input: %v", err)
		return
	}

	entry := components.Entry{Time: m.now(), Dir: components.TX, Data: payload}
	if err := m.port.Transmit(payload); err != nil {
		entry.Status = components.TXFailed
		m.terminal.Add(entry)
		m.notice("transmit failed: %v", err)
		return
	}
	m.terminal.Add(entry)
	m.statusBar.CountTX(len(payload))
	m.input.AddToHistory(m.input.Value())
	m.input.SetValue("")
}

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// input box (3 lines with border) plus the status bar
		m.terminal.SetSize(msg.Width, msg.Height-4)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.ready = true
		return m, m.terminal.Update(msg)

	case pollMsg:
		if !m.connected {
			return m, nil
		}
		if err := m.drain(time.Time(msg)); err != nil {
			m.disconnect(err)
			return m, nil
		}
		return m, m.poll()

	case tea.KeyMsg:
		if m.mode == InputModeInsert {
			return m, m.updateInsert(msg)
		}
		return m, m.updateNormal(msg)
	}
	return m, nil
}

func (m *Monitor) updateInsert(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = InputModeNormal
		m.input.Blur()
	case key.Matches(msg, m.keys.Enter):
		m.send()
	case key.Matches(msg, m.keys.Up):
		m.input.HistoryUp()
	case key.Matches(msg, m.keys.Down):
		m.input.HistoryDown()
	case key.Matches(msg, m.keys.ToggleSendMode):
		m.input.ToggleSendingMode()
	default:
		return m.input.Update(msg)
	}
	return nil
}

func (m *Monitor) updateNormal(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.port.Close()
		m.connected = false
		return tea.Quit
	case key.Matches(msg, m.keys.InsertMode):
		m.mode = InputModeInsert
		m.input.Focus()
	case key.Matches(msg, m.keys.Clear):
		m.terminal.Clear()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.ToggleHex):
		m.terminal.ToggleHex()
	case key.Matches(msg, m.keys.ToggleASCII):
		m.terminal.ToggleASCII()
	case key.Matches(msg, m.keys.ToggleSendMode):
		m.input.ToggleSendingMode()
	case key.Matches(msg, m.keys.Flush):
		if err := m.port.Flush(true, true); err != nil {
			m.notice("flush failed: %v", err)
		} else {
			m.port.BufferClear()
			m.notice("flushed")
		}
	case key.Matches(msg, m.keys.ToggleRTS):
		if err := m.port.SetRTS(!m.rts); err != nil {
			m.notice("RTS: %v", err)
			break
		}
		m.rts = !m.rts
		m.statusBar.SetLines(m.rts, m.dtr)
	case key.Matches(msg, m.keys.ToggleDTR):
		if err := m.port.SetDTR(!m.dtr); err != nil {
			m.notice("DTR: %v", err)
			break
		}
		m.dtr = !m.dtr
		m.statusBar.SetLines(m.rts, m.dtr)
	}
	return nil
}

func (m *Monitor) View() string {
	content := "Initializing..."
	if m.ready {
		content = m.terminal.View()
	}

	insert := m.mode == InputModeInsert
	status := m.statusBar.View(insert, m.input.SendingMode().String(), m.connected, m.now().Format("15:04:05"))

	parts := []string{styles.ContentBorderStyle.Render(content), m.input.View(insert), status}
	if m.help.ShowAll {
		parts = append(parts, m.help.View(m.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
