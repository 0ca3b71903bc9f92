package comport

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"
)

// ByteSize is the number of data bits per character
type ByteSize int

const (
	ByteSize5 ByteSize = 5
	ByteSize6 ByteSize = 6
	ByteSize7 ByteSize = 7
	ByteSize8 ByteSize = 8
)

func (b ByteSize) valid() bool {
	return b >= ByteSize5 && b <= ByteSize8
}

// StopBits is the number of stop bits per character
type StopBits int

const (
	StopBits1 StopBits = 1
	StopBits2 StopBits = 2
)

func (s StopBits) valid() bool {
	return s == StopBits1 || s == StopBits2
}

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

func (p Parity) valid() bool {
	return p >= ParityNone && p <= ParitySpace
}

// String returns the single letter used in "8N1" style notation
func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "N"
	case ParityOdd:
		return "O"
	case ParityEven:
		return "E"
	case ParityMark:
		return "M"
	case ParitySpace:
		return "S"
	default:
		return fmt.Sprintf("Parity(%d)", int(p))
	}
}

// ParseParity accepts the letter notation as well as the full names
func ParseParity(s string) (Parity, error) {
	switch s {
	case "N", "n", "none":
		return ParityNone, nil
	case "O", "o", "odd":
		return ParityOdd, nil
	case "E", "e", "even":
		return ParityEven, nil
	case "M", "m", "mark":
		return ParityMark, nil
	case "S", "s", "space":
		return ParitySpace, nil
	}
	return ParityNone, fmt.Errorf("%w: unknown parity %q", ErrInvalidConfig, s)
}

const (
	// Tick is the polling interval of every wait loop.
	Tick = time.Millisecond

	// MinWaitTimeout and MaxWaitTimeout bound the buffered wait timeout.
	MinWaitTimeout = time.Millisecond
	MaxWaitTimeout = 10 * time.Second
	// DefaultWaitTimeout is the buffered wait timeout of a new port.
	DefaultWaitTimeout = 100 * time.Millisecond
)

// Config holds the configuration a Port is constructed with
type Config struct {
	BaudRate int
	ByteSize ByteSize
	StopBits StopBits
	Parity   Parity

	// Requested OS-side queue sizes. Only honoured where the platform
	// exposes them (Windows).
	HWBufferIn  int
	HWBufferOut int

	// WaitTimeout bounds BufferWait and BufferWaitPattern on a BufferedPort.
	WaitTimeout time.Duration

	Logger *zap.SugaredLogger
	Clock  clock.Clock
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns the configuration every new port starts from:
// 57600 baud, 8 data bits, 2 stop bits, no parity.
func DefaultConfig() Config {
	return Config{
		BaudRate:    57600,
		ByteSize:    ByteSize8,
		StopBits:    StopBits2,
		Parity:      ParityNone,
		HWBufferIn:  256,
		HWBufferOut: 256,
		WaitTimeout: DefaultWaitTimeout,
		Clock:       clock.RealClock{},
	}
}

// WithBaudRate sets the baud rate. Rates missing from the platform's table
// are allowed; see Port.SetBaudRate.
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if rate < 0 {
			return ErrInvalidBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithByteSize sets the number of data bits (5, 6, 7, or 8)
func WithByteSize(size ByteSize) Option {
	return func(c *Config) error {
		if !size.valid() {
			return ErrInvalidConfig
		}
		c.ByteSize = size
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits StopBits) Option {
	return func(c *Config) error {
		if !bits.valid() {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if !parity.valid() {
			return ErrInvalidConfig
		}
		c.Parity = parity
		return nil
	}
}

// WithHWBufferSize sets the requested driver queue sizes
func WithHWBufferSize(in, out int) Option {
	return func(c *Config) error {
		if in <= 0 || out <= 0 {
			return ErrInvalidConfig
		}
		c.HWBufferIn = in
		c.HWBufferOut = out
		return nil
	}
}

// WithWaitTimeout sets the buffered wait timeout, clamped to
// [MinWaitTimeout, MaxWaitTimeout]
func WithWaitTimeout(d time.Duration) Option {
	return func(c *Config) error {
		c.WaitTimeout = clampWaitTimeout(d)
		return nil
	}
}

// WithLogger enables debug logging of port lifecycle and configuration
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithClock replaces the monotonic clock used by the wait loops
func WithClock(clk clock.Clock) Option {
	return func(c *Config) error {
		if clk == nil {
			return ErrInvalidConfig
		}
		c.Clock = clk
		return nil
	}
}

func clampWaitTimeout(d time.Duration) time.Duration {
	if d < MinWaitTimeout {
		return MinWaitTimeout
	}
	if d > MaxWaitTimeout {
		return MaxWaitTimeout
	}
	return d
}
