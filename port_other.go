//go:build !linux && !windows

package comport

// Platforms without a backend keep a configuration cache so the closed-port
// API behaves the same everywhere; Open always fails.

type handle struct{}

type settings struct {
	baud    int
	size    ByteSize
	stop    StopBits
	par     Parity
	inSize  int
	outSize int
}

func defaultSettings() settings {
	return settings{
		baud:    57600,
		size:    ByteSize8,
		stop:    StopBits2,
		par:     ParityNone,
		inSize:  256,
		outSize: 256,
	}
}

func openDevice(string, *settings) (*handle, error) {
	return nil, ErrUnsupported
}

func (h *handle) release() error                    { return nil }
func (h *handle) write([]byte) (int, error)         { return 0, ErrUnsupported }
func (h *handle) read([]byte) (int, error)          { return 0, ErrUnsupported }
func (h *handle) inQueue() (int, error)             { return 0, ErrUnsupported }
func (h *handle) outQueue() (int, error)            { return 0, ErrUnsupported }
func (h *handle) setRTS(bool) error                 { return ErrUnsupported }
func (h *handle) setDTR(bool) error                 { return ErrUnsupported }
func (h *handle) flush(bool, bool) error            { return ErrUnsupported }
func (h *handle) modemLines() (ModemSignals, error) { return ModemSignals{}, ErrUnsupported }

func (s *settings) hwBufferSize() (int, int, error) { return s.inSize, s.outSize, nil }

func (s *settings) setHWBufferSize(_ *handle, in, out int) error {
	s.inSize, s.outSize = in, out
	return nil
}

func (s *settings) baudRate(*handle) (int, error) { return s.baud, nil }

func (s *settings) setBaudRate(_ *handle, rate int) error {
	s.baud = rate
	return nil
}

func (s *settings) byteSize(*handle) (ByteSize, error) { return s.size, nil }

func (s *settings) setByteSize(_ *handle, size ByteSize) error {
	s.size = size
	return nil
}

func (s *settings) stopBits(*handle) (StopBits, error) { return s.stop, nil }

func (s *settings) setStopBits(_ *handle, bits StopBits) error {
	s.stop = bits
	return nil
}

func (s *settings) parity(*handle) (Parity, error) { return s.par, nil }

func (s *settings) setParity(_ *handle, parity Parity) error {
	s.par = parity
	return nil
}
