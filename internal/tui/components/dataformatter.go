package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/go-comport/internal/hexfmt"
	"github.com/allbin/go-comport/internal/tui/styles"
)

// Direction tells received chunks from transmitted ones
type Direction int

const (
	RX Direction = iota
	TX
	Notice
)

// TXStatus is the outcome of a transmit
type TXStatus int

const (
	TXWritten TXStatus = iota
	TXFailed
)

// Entry is one line of the monitor log
type Entry struct {
	Time   time.Time
	Dir    Direction
	Data   []byte
	Status TXStatus
	Text   string // Notice entries only
}

type DisplayMode struct {
	ShowHex   bool
	ShowASCII bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(showHex, showASCII bool) *DataFormatter {
	return &DataFormatter{mode: DisplayMode{ShowHex: showHex, ShowASCII: showASCII}}
}

func (df *DataFormatter) Mode() DisplayMode {
	return df.mode
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}

func (df *DataFormatter) Format(e Entry) string {
	timestamp := styles.TimestampStyle.Render(fmt.Sprintf("[%s]", e.Time.Format("15:04:05.000")))

	var indicator string
	switch e.Dir {
	case Notice:
		return fmt.Sprintf("%s %s", timestamp, styles.NoticeStyle.Render(e.Text))
	case TX:
		if e.Status == TXFailed {
			indicator = styles.Indicator(styles.Red).Render("↗ TX ✗")
		} else {
			indicator = styles.Indicator(styles.Green).Render("↗ TX ✓")
		}
	default:
		indicator = styles.RXStyle.Render("↙ RX")
	}

	var parts []string
	if df.mode.ShowHex {
		parts = append(parts, "HEX: "+hexfmt.Dump(e.Data))
	}
	if df.mode.ShowASCII {
		parts = append(parts, "ASCII: "+hexfmt.Printable(e.Data))
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(e.Data)))
	}

	return fmt.Sprintf("%s %s: %s", timestamp, indicator, strings.Join(parts, "  "))
}
