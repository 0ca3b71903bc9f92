package components

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDataFormatter(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 30, 15, 123e6, time.UTC)
	df := NewDataFormatter(true, true)

	line := df.Format(Entry{Time: at, Dir: RX, Data: []byte("OK\r\n")})
	require.Contains(t, line, "[09:30:15.123]")
	require.Contains(t, line, "RX")
	require.Contains(t, line, "HEX: 4F 4B 0D 0A")
	require.Contains(t, line, "ASCII: OK..")

	df.ToggleHex()
	line = df.Format(Entry{Time: at, Dir: TX, Data: []byte("AT")})
	require.NotContains(t, line, "HEX:")
	require.Contains(t, line, "TX ✓")

	df.ToggleASCII()
	line = df.Format(Entry{Time: at, Dir: TX, Data: []byte("AT"), Status: TXFailed})
	require.Contains(t, line, "BYTES: 2")
	require.Contains(t, line, "TX ✗")

	line = df.Format(Entry{Time: at, Dir: Notice, Text: "flushed"})
	require.Contains(t, line, "flushed")
	require.NotContains(t, line, "BYTES")
}

func TestTerminalScrollbackLimit(t *testing.T) {
	term := NewTerminal(80, 10)
	require.Equal(t, defaultScrollback, term.limit)
	term.limit = 50
	for i := 0; i < 60; i++ {
		term.Add(Entry{Dir: RX, Data: []byte{byte(i)}})
	}
	entries := term.Entries()
	require.Len(t, entries, 50)
	require.Len(t, term.lines, 50)
	require.Equal(t, []byte{10}, entries[0].Data)

	term.ToggleASCII()
	require.Len(t, term.lines, 50)
	require.NotContains(t, term.lines[0], "ASCII:")

	term.Clear()
	require.Empty(t, term.Entries())
}

func TestInputPayload(t *testing.T) {
	in := NewInput("\r\n")
	in.SetValue("AT")
	payload, err := in.Payload()
	require.NoError(t, err)
	require.Equal(t, []byte("AT\r\n"), payload)

	in.ToggleSendingMode()
	require.Equal(t, SendingModeHex, in.SendingMode())
	in.SetValue("41 54")
	payload, err = in.Payload()
	require.NoError(t, err)
	require.Equal(t, []byte("AT"), payload)

	in.SetValue("4")
	_, err = in.Payload()
	require.Error(t, err)

	in.ToggleSendingMode()
	require.Equal(t, "ASCII", in.SendingMode().String())
}

func TestInputHistory(t *testing.T) {
	in := NewInput("\n")
	in.AddToHistory("first")
	in.AddToHistory("second")
	in.AddToHistory("second")
	in.AddToHistory("   ")

	in.SetValue("draft")
	in.HistoryUp()
	require.Equal(t, "second", in.Value())
	in.HistoryUp()
	require.Equal(t, "first", in.Value())
	in.HistoryUp()
	require.Equal(t, "first", in.Value(), "stops at the oldest line")

	in.HistoryDown()
	require.Equal(t, "second", in.Value())
	in.HistoryDown()
	require.Equal(t, "draft", in.Value(), "returns to the unsent line")

	for i := 0; i < historyLimit+5; i++ {
		in.AddToHistory(strings.Repeat("x", i+1))
	}
	require.Len(t, in.history, historyLimit)
}

func TestStatusBarCounts(t *testing.T) {
	sb := NewStatusBar("/dev/ttyUSB0")
	sb.SetWidth(200)
	sb.SetLink("115200 8N1")
	sb.CountRX(3)
	sb.CountTX(5)
	sb.CountRX(1)

	rx, tx := sb.Counts()
	require.Equal(t, 4, rx)
	require.Equal(t, 5, tx)

	view := sb.View(true, "HEX", true, "12:00:00")
	require.Contains(t, view, "INSERT")
	require.Contains(t, view, "[HEX] Tab to toggle")
	require.Contains(t, view, "115200 8N1")
}
