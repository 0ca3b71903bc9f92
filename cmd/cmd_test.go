package cmd

import (
	"errors"
	"strings"
	"testing"
	"time"

	comport "github.com/allbin/go-comport"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestParseSignalState(t *testing.T) {
	for _, s := range []string{"high", "ON", "true", "1"} {
		state, err := parseSignalState(s)
		require.NoError(t, err, s)
		require.True(t, state, s)
	}
	for _, s := range []string{"low", "Off", "false", "0"} {
		state, err := parseSignalState(s)
		require.NoError(t, err, s)
		require.False(t, state, s)
	}
	_, err := parseSignalState("maybe")
	require.Error(t, err)
}

func TestFormatModemLines(t *testing.T) {
	out := formatModemLines(comport.ModemSignals{CTS: true, DTR: true})
	require.Contains(t, out, "CTS (Clear To Send):       HIGH")
	require.Contains(t, out, "DSR (Data Set Ready):      LOW")
	require.Contains(t, out, "DTR (Data Terminal Ready): HIGH")
}

func TestPortTypeAndFilter(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		usb      bool
		standard bool
		soc      bool
	}{
		{"ttyUSB0", "USB Serial", true, false, false},
		{"ttyACM1", "USB CDC/ACM", true, false, false},
		{"ttyS0", "Standard Serial", false, true, false},
		{"ttySAC2", "Samsung Serial", false, false, true},
		{"ttyAMA0", "ARM Serial", false, false, true},
		{"ttyTHS1", "Tegra Serial", false, false, true},
	}

	for _, tt := range tests {
		require.Equal(t, tt.typ, portType(tt.name), tt.name)
		require.Equal(t, tt.usb, matchesFilter(tt.name, "usb"), tt.name)
		require.Equal(t, tt.standard, matchesFilter(tt.name, "standard"), tt.name)
		require.Equal(t, tt.soc, matchesFilter(tt.name, "soc"), tt.name)
		require.True(t, matchesFilter(tt.name, ""), tt.name)
		require.True(t, matchesFilter(tt.name, "ALL"), tt.name)
		require.False(t, matchesFilter(tt.name, "bogus"), tt.name)
	}
}

func TestBuildPayload(t *testing.T) {
	payload, err := buildPayload("AT", false, true)
	require.NoError(t, err)
	require.Equal(t, []byte("AT\n"), payload)

	payload, err = buildPayload("AT", false, false)
	require.NoError(t, err)
	require.Equal(t, []byte("AT"), payload)

	// Newline never applies to hex payloads.
	payload, err = buildPayload("0D 0A", true, true)
	require.NoError(t, err)
	require.Equal(t, []byte("\r\n"), payload)

	_, err = buildPayload("0", true, false)
	require.Error(t, err)
}

func TestUnescape(t *testing.T) {
	require.Equal(t, "\r\n", unescape(`\r\n`))
	require.Equal(t, "\n", unescape(`\n`))
	require.Equal(t, "", unescape(""))
	require.Equal(t, "a\tb", unescape(`a\tb`))
	require.Equal(t, `\x`, unescape(`\x`))
	require.Equal(t, `\`, unescape(`\`))
}

func TestSignalSet(t *testing.T) {
	set, err := parseSignalSet([]string{"CTS", " dcd"})
	require.NoError(t, err)
	require.Equal(t, signalSet{"cts": true, "dcd": true}, set)

	set, err = parseSignalSet(nil)
	require.NoError(t, err)
	require.Len(t, set, 4)

	_, err = parseSignalSet([]string{"rts"})
	require.Error(t, err)

	before := comport.ModemSignals{CTS: true}
	after := comport.ModemSignals{DSR: true, RI: true}
	require.Equal(t, signalSet{"cts": true, "dsr": true}, changedSignals(before, after, signalSet{"cts": true, "dsr": true, "dcd": true}))
	require.Empty(t, changedSignals(before, before, set))
}

func TestOptionalCount(t *testing.T) {
	require.Equal(t, "12", optionalCount(12, nil))
	require.Equal(t, "n/a", optionalCount(0, comport.ErrUnsupported))
	require.Equal(t, "error: boom", optionalCount(0, errors.New("boom")))
}

func TestPortOptions(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("baud", 9600)
	viper.Set("byte-size", 7)
	viper.Set("stop-bits", 1)
	viper.Set("parity", "Even")
	viper.Set("timeout", 250*time.Millisecond)

	opts, err := portOptions()
	require.NoError(t, err)

	bp, err := comport.NewBuffered(opts...)
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, bp.WaitTimeout())

	baud, err := bp.BaudRate()
	require.NoError(t, err)
	require.Equal(t, 9600, baud)

	parity, err := bp.Parity()
	require.NoError(t, err)
	require.Equal(t, comport.ParityEven, parity)

	size, err := bp.ByteSize()
	require.NoError(t, err)
	require.Equal(t, comport.ByteSize7, size)

	viper.Set("parity", "sideways")
	_, err = portOptions()
	require.ErrorIs(t, err, comport.ErrInvalidConfig)

	viper.Set("parity", "none")
	viper.Set("stop-bits", 3)
	opts, err = portOptions()
	require.NoError(t, err)
	_, err = comport.New(opts...)
	require.ErrorIs(t, err, comport.ErrInvalidConfig)
}

func TestInfoProperties(t *testing.T) {
	props := infoProperties(&comport.PortInfo{
		Name:        "ttyACM0",
		Path:        "/dev/ttyACM0",
		Description: "USB CDC/ACM Device",
		Driver:      "cdc_acm",
		VendorID:    "2341",
	})

	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.name
	}
	require.Equal(t, []string{"Name", "Description", "Type", "Driver", "Vendor ID"}, names)

	out := propertyTable("/dev/ttyACM0", props)
	require.Contains(t, out, "cdc_acm")
	require.Contains(t, out, "USB CDC/ACM")
	require.True(t, strings.Contains(out, "Property"))
}
