package comport

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewPortDefaults(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	require.False(t, p.IsOpen())

	baud, err := p.BaudRate()
	require.NoError(t, err)
	require.Equal(t, 57600, baud)

	size, err := p.ByteSize()
	require.NoError(t, err)
	require.Equal(t, ByteSize8, size)

	stop, err := p.StopBits()
	require.NoError(t, err)
	require.Equal(t, StopBits2, stop)

	parity, err := p.Parity()
	require.NoError(t, err)
	require.Equal(t, ParityNone, parity)
}

func TestNewRejectsInvalidOption(t *testing.T) {
	_, err := New(WithByteSize(9))
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewBuffered(WithBaudRate(-5))
	require.ErrorIs(t, err, ErrInvalidBaudRate)
}

func TestClosedPortOperations(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	require.ErrorIs(t, p.Transmit([]byte("x")), ErrPortClosed)

	data, err := p.Receive()
	require.ErrorIs(t, err, ErrPortClosed)
	require.Empty(t, data)

	require.ErrorIs(t, p.SetRTS(true), ErrPortClosed)
	require.ErrorIs(t, p.SetDTR(false), ErrPortClosed)

	_, err = p.InQueue()
	require.ErrorIs(t, err, ErrPortClosed)
	_, err = p.OutQueue()
	require.ErrorIs(t, err, ErrPortClosed)
	_, err = p.ModemLines()
	require.ErrorIs(t, err, ErrPortClosed)

	// Flush on a closed port is a successful no-op.
	require.NoError(t, p.Flush(true, true))
	require.NoError(t, p.Flush(false, false))

	// Close is idempotent.
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	require.False(t, p.IsOpen())
}

func TestClosedSettersUpdateCache(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	for _, rate := range []int{0, 300, 9600, 31250, 115200, 4000000} {
		require.NoError(t, p.SetBaudRate(rate))
		got, err := p.BaudRate()
		require.NoError(t, err)
		require.Equal(t, rate, got)
	}

	for _, size := range []ByteSize{ByteSize5, ByteSize6, ByteSize7, ByteSize8} {
		require.NoError(t, p.SetByteSize(size))
		got, err := p.ByteSize()
		require.NoError(t, err)
		require.Equal(t, size, got)
	}

	for _, bits := range []StopBits{StopBits1, StopBits2} {
		require.NoError(t, p.SetStopBits(bits))
		got, err := p.StopBits()
		require.NoError(t, err)
		require.Equal(t, bits, got)
	}

	for _, parity := range []Parity{ParityNone, ParityOdd, ParityEven, ParityMark, ParitySpace} {
		require.NoError(t, p.SetParity(parity))
		got, err := p.Parity()
		require.NoError(t, err)
		require.Equal(t, parity, got)
	}
}

func TestInvalidSettingsLeaveCacheUntouched(t *testing.T) {
	p, err := New(WithBaudRate(19200), WithStopBits(StopBits1))
	require.NoError(t, err)

	require.ErrorIs(t, p.SetBaudRate(-1), ErrInvalidBaudRate)
	require.ErrorIs(t, p.SetByteSize(4), ErrInvalidConfig)
	require.ErrorIs(t, p.SetStopBits(3), ErrInvalidConfig)
	require.ErrorIs(t, p.SetParity(Parity(-1)), ErrInvalidConfig)
	require.ErrorIs(t, p.SetHWBufferSize(0, 0), ErrInvalidConfig)

	baud, err := p.BaudRate()
	require.NoError(t, err)
	require.Equal(t, 19200, baud)

	stop, err := p.StopBits()
	require.NoError(t, err)
	require.Equal(t, StopBits1, stop)

	size, err := p.ByteSize()
	require.NoError(t, err)
	require.Equal(t, ByteSize8, size)
}

func TestOpenMissingDeviceStaysClosed(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	err = p.Open(filepath.Join(t.TempDir(), "no-such-tty"))
	require.Error(t, err)
	require.False(t, p.IsOpen())
	require.ErrorIs(t, p.Transmit([]byte("x")), ErrPortClosed)
}

func TestPortLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p, err := New(WithLogger(zap.New(core).Sugar()))
	require.NoError(t, err)

	require.NoError(t, p.SetBaudRate(115200))
	require.NotZero(t, logs.FilterMessage("baud rate 115200").Len())

	// Without a logger the port stays silent.
	quiet, err := New()
	require.NoError(t, err)
	require.NoError(t, quiet.SetBaudRate(115200))
}
