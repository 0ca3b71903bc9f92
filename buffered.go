package comport

import (
	"bytes"
	"time"

	"k8s.io/utils/clock"
)

// BufferedPort accumulates received bytes and offers bounded waits on them.
// Every wait polls the device once per Tick until its condition holds or
// the wait timeout elapses.
type BufferedPort struct {
	*Port

	buf     []byte
	timeout time.Duration
	clock   clock.Clock
}

// NewBuffered creates a closed BufferedPort configured from DefaultConfig
// and opts.
func NewBuffered(opts ...Option) (*BufferedPort, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	p, err := newPort(cfg)
	if err != nil {
		return nil, err
	}
	return &BufferedPort{
		Port:    p,
		timeout: clampWaitTimeout(cfg.WaitTimeout),
		clock:   cfg.Clock,
	}, nil
}

// Buffer returns a copy of everything received since the last BufferClear.
func (b *BufferedPort) Buffer() []byte {
	return bytes.Clone(b.buf)
}

// Len returns the number of buffered bytes
func (b *BufferedPort) Len() int {
	return len(b.buf)
}

// BufferUpdate appends whatever the device has queued to the buffer.
// The buffer is left untouched when the receive fails.
func (b *BufferedPort) BufferUpdate() error {
	data, err := b.Receive()
	if err != nil {
		return err
	}
	b.buf = append(b.buf, data...)
	return nil
}

// BufferClear empties the buffer
func (b *BufferedPort) BufferClear() {
	b.buf = b.buf[:0]
}

// SetWaitTimeout sets the budget of BufferWait and BufferWaitPattern,
// clamped to [MinWaitTimeout, MaxWaitTimeout].
func (b *BufferedPort) SetWaitTimeout(d time.Duration) {
	b.timeout = clampWaitTimeout(d)
}

// WaitTimeout returns the current wait budget
func (b *BufferedPort) WaitTimeout() time.Duration {
	return b.timeout
}

// BufferWait waits until at least count bytes are buffered. It returns nil
// on success, ErrTimeout when the budget runs out, and ErrPortClosed if
// there is nothing to wait on.
func (b *BufferedPort) BufferWait(count int) error {
	if count <= 0 || len(b.buf) >= count {
		return nil
	}
	if !b.IsOpen() {
		return ErrPortClosed
	}

	err := b.poll(func() (bool, error) {
		return len(b.buf) >= count, nil
	})
	b.logd("wait for %d bytes: have %d, %v", count, len(b.buf), err)
	return err
}

// BufferWaitPattern waits until the buffer starts with pattern. It fails
// fast with ErrPatternMismatch as soon as a buffered byte diverges.
func (b *BufferedPort) BufferWaitPattern(pattern []byte) error {
	if len(pattern) == 0 {
		return nil
	}

	m := prefixMatcher{pattern: pattern}
	if done, err := m.advance(b.buf); done || err != nil {
		return err
	}
	if !b.IsOpen() {
		return ErrPortClosed
	}

	err := b.poll(func() (bool, error) {
		return m.advance(b.buf)
	})
	b.logd("wait for %q: matched %d of %d, %v", pattern, m.matched, len(pattern), err)
	return err
}

// Wait sleeps for d, one Tick at a time, on the port's clock. It does not
// touch the device.
func (b *BufferedPort) Wait(d time.Duration) {
	start := b.clock.Now()
	for {
		b.clock.Sleep(Tick)
		elapsed := b.clock.Since(start)
		if elapsed < 0 || elapsed > d {
			return
		}
	}
}

// poll runs the sleep, update, check cycle shared by the buffer waits.
func (b *BufferedPort) poll(done func() (bool, error)) error {
	start := b.clock.Now()
	for {
		b.clock.Sleep(Tick)
		// A failed update leaves the buffer as is; the timeout still bounds
		// the loop.
		_ = b.BufferUpdate()

		ok, err := done()
		if ok || err != nil {
			return err
		}

		elapsed := b.clock.Since(start)
		if elapsed < 0 {
			return ErrClock
		}
		if elapsed > b.timeout {
			return ErrTimeout
		}
	}
}

// prefixMatcher checks a growing buffer against pattern, remembering how
// far it has already verified so each byte is compared once.
type prefixMatcher struct {
	pattern []byte
	matched int
}

func (m *prefixMatcher) advance(buf []byte) (bool, error) {
	for m.matched < len(m.pattern) && m.matched < len(buf) {
		if buf[m.matched] != m.pattern[m.matched] {
			return false, ErrPatternMismatch
		}
		m.matched++
	}
	return m.matched == len(m.pattern), nil
}
