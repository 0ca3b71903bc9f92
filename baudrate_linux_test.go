package comport

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSerialStructLayout(t *testing.T) {
	if unsafe.Sizeof(uintptr(0)) == 8 {
		require.EqualValues(t, 72, unsafe.Sizeof(serialStruct{}))
	} else {
		require.EqualValues(t, 60, unsafe.Sizeof(serialStruct{}))
	}
}

func TestBaudCode(t *testing.T) {
	tests := []struct {
		rate     int
		code     uint32
		standard bool
	}{
		{0, unix.B0, true},
		{134, unix.B134, true},
		{9600, unix.B9600, true},
		{38400, unix.B38400, true},
		{57600, unix.B57600, true},
		{115200, unix.B115200, true},
		{4000000, unix.B4000000, true},
		{31250, unix.B38400, false},
		{250000, unix.B38400, false},
		{4000001, unix.B38400, false},
	}

	for _, tt := range tests {
		code, standard := baudCode(tt.rate)
		require.Equal(t, tt.code, code, "rate %d", tt.rate)
		require.Equal(t, tt.standard, standard, "rate %d", tt.rate)
	}

	// The reverse table covers every code.
	for rate, code := range baudCodes {
		require.Equal(t, rate, baudRates[code])
	}
}

func TestCustomDivisor(t *testing.T) {
	tests := []struct {
		base, rate, want int
	}{
		{115200, 115200, 1},
		{115200, 57600, 2},
		{115200, 31250, 4},   // 3.69 rounds up
		{115200, 28800, 4},   // exact
		{115200, 25600, 5},   // 4.5 rounds away from zero
		{115200, 100, 1152},  // exact
		{1500000, 250000, 6}, // exact
		{115200, 250000, 0},  // faster than the base clock
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, customDivisor(tt.base, tt.rate), "base %d rate %d", tt.base, tt.rate)
	}
}

func TestCustomBaudRate(t *testing.T) {
	f := &fakeTTY{serial: &serialStruct{BaudBase: 115200}}
	installFakeTTY(t, f)
	p, _ := openPTY(t)

	require.NoError(t, p.SetBaudRate(31250))
	require.Equal(t, uint32(unix.B38400), f.termios.Cflag&unix.CBAUD)
	require.EqualValues(t, asyncSpdCust, f.serial.Flags&asyncSpdMask)
	require.EqualValues(t, 4, f.serial.CustomDivisor)

	// Reading back reports the rate the divisor actually produces.
	baud, err := p.BaudRate()
	require.NoError(t, err)
	require.Equal(t, 28800, baud)

	// Exactly 38400 drops the alias.
	require.NoError(t, p.SetBaudRate(38400))
	require.Zero(t, f.serial.Flags&asyncSpdMask)
	baud, err = p.BaudRate()
	require.NoError(t, err)
	require.Equal(t, 38400, baud)

	// Standard rates do not touch serial_struct.
	f.serial.CustomDivisor = 9
	require.NoError(t, p.SetBaudRate(115200))
	require.EqualValues(t, 9, f.serial.CustomDivisor)
	baud, err = p.BaudRate()
	require.NoError(t, err)
	require.Equal(t, 115200, baud)
}

func TestCustomBaudRateWithoutSerialSupport(t *testing.T) {
	// Real ptys do not implement TIOCGSERIAL.
	p, _ := openPTY(t)

	require.NoError(t, p.SetBaudRate(31250))
	baud, err := p.BaudRate()
	require.NoError(t, err)
	require.Equal(t, 38400, baud)

	require.NoError(t, p.Close())
	baud, err = p.BaudRate()
	require.NoError(t, err)
	require.Equal(t, 31250, baud, "closed port reports the requested rate")
}

func TestCustomBaudRateZeroDivisor(t *testing.T) {
	f := &fakeTTY{serial: &serialStruct{BaudBase: 115200}}
	installFakeTTY(t, f)
	p, _ := openPTY(t)

	require.NoError(t, p.SetBaudRate(31250))
	f.serial.CustomDivisor = 0

	_, err := p.BaudRate()
	require.ErrorIs(t, err, ErrUnknownBaudRate)
}

func TestCustomBaudRateTooFast(t *testing.T) {
	f := &fakeTTY{serial: &serialStruct{BaudBase: 115200}}
	installFakeTTY(t, f)
	p, _ := openPTY(t, WithBaudRate(9600))

	require.ErrorIs(t, p.SetBaudRate(250000), ErrInvalidBaudRate)
	require.Equal(t, uint32(unix.B9600), f.termios.Cflag&unix.CBAUD)

	baud, err := p.BaudRate()
	require.NoError(t, err)
	require.Equal(t, 9600, baud)
}

func TestCustomBaudRateRollback(t *testing.T) {
	f := &fakeTTY{serial: &serialStruct{BaudBase: 115200}}
	installFakeTTY(t, f)
	p, _ := openPTY(t)

	f.serialErr = unix.EPERM
	err := p.SetBaudRate(31250)
	require.ErrorIs(t, err, ErrOSRejected)
	require.ErrorIs(t, err, unix.EPERM)

	// The termios push is undone when the divisor cannot be programmed.
	require.Equal(t, uint32(unix.B57600), f.termios.Cflag&unix.CBAUD)
	require.Zero(t, f.serial.Flags&asyncSpdMask)

	baud, err := p.BaudRate()
	require.NoError(t, err)
	require.Equal(t, 57600, baud)

	require.NoError(t, p.Close())
	baud, err = p.BaudRate()
	require.NoError(t, err)
	require.Equal(t, 57600, baud)
}

func TestUnknownBaudCode(t *testing.T) {
	f := &fakeTTY{}
	installFakeTTY(t, f)
	p, _ := openPTY(t)

	// BOTHER: CBAUDEX alone names no rate
	f.termios.Cflag = f.termios.Cflag&^unix.CBAUD | unix.CBAUDEX
	_, err := p.BaudRate()
	require.ErrorIs(t, err, ErrUnknownBaudRate)
}
