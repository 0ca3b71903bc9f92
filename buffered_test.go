package comport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

// backwardsClock reports time running backwards on every reading.
type backwardsClock struct {
	*testingclock.FakeClock
}

func (c backwardsClock) Since(time.Time) time.Duration {
	return -time.Millisecond
}

func newFakeClock() *testingclock.FakeClock {
	return testingclock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestNewBufferedDefaults(t *testing.T) {
	bp, err := NewBuffered()
	require.NoError(t, err)
	require.False(t, bp.IsOpen())
	require.Empty(t, bp.Buffer())
	require.Zero(t, bp.Len())
	require.Equal(t, DefaultWaitTimeout, bp.WaitTimeout())
}

func TestSetWaitTimeoutClamps(t *testing.T) {
	bp, err := NewBuffered()
	require.NoError(t, err)

	bp.SetWaitTimeout(0)
	require.Equal(t, time.Millisecond, bp.WaitTimeout())

	bp.SetWaitTimeout(20 * time.Second)
	require.Equal(t, 10*time.Second, bp.WaitTimeout())

	bp.SetWaitTimeout(750 * time.Millisecond)
	require.Equal(t, 750*time.Millisecond, bp.WaitTimeout())
}

func TestBufferWaitClosedPort(t *testing.T) {
	clk := newFakeClock()
	bp, err := NewBuffered(WithClock(clk))
	require.NoError(t, err)
	start := clk.Now()

	// Trivially satisfied waits never look at the port.
	require.NoError(t, bp.BufferWait(0))
	require.NoError(t, bp.BufferWait(-3))
	require.NoError(t, bp.BufferWaitPattern(nil))
	require.NoError(t, bp.BufferWaitPattern([]byte{}))

	require.ErrorIs(t, bp.BufferWait(1), ErrPortClosed)
	require.ErrorIs(t, bp.BufferWaitPattern([]byte("OK")), ErrPortClosed)
	require.ErrorIs(t, bp.BufferUpdate(), ErrPortClosed)

	require.Equal(t, start, clk.Now(), "closed-port waits must not sleep")
}

func TestBufferWaitDecidedByExistingBuffer(t *testing.T) {
	clk := newFakeClock()
	bp, err := NewBuffered(WithClock(clk))
	require.NoError(t, err)
	start := clk.Now()

	bp.buf = []byte("OK\r\n")

	require.NoError(t, bp.BufferWait(4))
	require.NoError(t, bp.BufferWaitPattern([]byte("OK")))
	require.NoError(t, bp.BufferWaitPattern([]byte("OK\r\n")))
	require.ErrorIs(t, bp.BufferWaitPattern([]byte("ERROR")), ErrPatternMismatch)

	// Longer than the buffer but still a matching prefix: needs the port.
	require.ErrorIs(t, bp.BufferWaitPattern([]byte("OK\r\n>")), ErrPortClosed)
	require.ErrorIs(t, bp.BufferWait(5), ErrPortClosed)

	require.Equal(t, start, clk.Now())
}

func TestBufferCopyAndClear(t *testing.T) {
	bp, err := NewBuffered()
	require.NoError(t, err)
	bp.buf = []byte("abc")

	snapshot := bp.Buffer()
	snapshot[0] = 'x'
	require.Equal(t, []byte("abc"), bp.Buffer())

	bp.BufferClear()
	require.Empty(t, bp.Buffer())
	require.Zero(t, bp.Len())

	// Clearing an empty buffer is fine.
	bp.BufferClear()
	require.Empty(t, bp.Buffer())
}

func TestWaitUsesClock(t *testing.T) {
	clk := newFakeClock()
	bp, err := NewBuffered(WithClock(clk))
	require.NoError(t, err)

	start := clk.Now()
	bp.Wait(5 * time.Millisecond)
	require.Equal(t, 6*time.Millisecond, clk.Since(start))

	// A zero wait still sleeps one tick.
	start = clk.Now()
	bp.Wait(0)
	require.Equal(t, time.Millisecond, clk.Since(start))
}

func TestWaitRealClock(t *testing.T) {
	bp, err := NewBuffered()
	require.NoError(t, err)

	start := time.Now()
	bp.Wait(5 * time.Millisecond)
	require.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestWaitStopsOnBackwardsClock(t *testing.T) {
	clk := backwardsClock{newFakeClock()}
	bp, err := NewBuffered(WithClock(clk))
	require.NoError(t, err)

	start := clk.Now()
	bp.Wait(time.Second)
	require.Equal(t, time.Millisecond, clk.FakeClock.Since(start))
}

func TestPrefixMatcher(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		chunks  []string
		done    bool
		wantErr error
	}{
		{"exact", "OK", []string{"OK"}, true, nil},
		{"longer buffer", "OK", []string{"OK\r\n"}, true, nil},
		{"split across updates", "READY", []string{"RE", "A", "DY"}, true, nil},
		{"partial", "READY", []string{"REA"}, false, nil},
		{"empty buffer", "OK", []string{""}, false, nil},
		{"first byte differs", "OK", []string{"NO"}, false, ErrPatternMismatch},
		{"late divergence", "READY", []string{"RE", "D"}, false, ErrPatternMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := prefixMatcher{pattern: []byte(tt.pattern)}
			var (
				buf  []byte
				done bool
				err  error
			)
			for _, chunk := range tt.chunks {
				buf = append(buf, chunk...)
				done, err = m.advance(buf)
				if done || err != nil {
					break
				}
			}
			require.Equal(t, tt.done, done)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPrefixMatcherVerifiesEachByteOnce(t *testing.T) {
	m := prefixMatcher{pattern: []byte("ABCD")}

	done, err := m.advance([]byte("AB"))
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, 2, m.matched)

	// Already verified bytes are not compared again.
	done, err = m.advance([]byte("xxC"))
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, 3, m.matched)
}
