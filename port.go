package comport

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// Port is a single serial device handle together with its cached link
// configuration. The zero value is not usable; construct with New.
//
// Port performs no internal locking. Callers sharing a Port between
// goroutines must synchronise access themselves.
type Port struct {
	h        *handle
	name     string
	settings settings
	cleanup  runtime.Cleanup
	logger   *zap.SugaredLogger
}

// ModemSignals represents modem control signal states
type ModemSignals struct {
	CTS bool // Clear To Send
	DSR bool // Data Set Ready
	RI  bool // Ring Indicator
	DCD bool // Data Carrier Detect
	RTS bool // Request To Send
	DTR bool // Data Terminal Ready
}

// PortInfo describes a serial device found by ListPorts
type PortInfo struct {
	Name         string
	Path         string
	Description  string
	Driver       string
	VendorID     string
	ProductID    string
	Manufacturer string
	Product      string
	SerialNumber string
}

// New creates a closed Port configured from DefaultConfig and opts.
func New(opts ...Option) (*Port, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return newPort(cfg)
}

func newPort(cfg Config) (*Port, error) {
	p := &Port{
		settings: defaultSettings(),
		logger:   cfg.Logger,
	}

	// Closed setters only touch the cache and cannot fail past validation.
	if err := p.SetBaudRate(cfg.BaudRate); err != nil {
		return nil, err
	}
	if err := p.SetByteSize(cfg.ByteSize); err != nil {
		return nil, err
	}
	if err := p.SetStopBits(cfg.StopBits); err != nil {
		return nil, err
	}
	if err := p.SetParity(cfg.Parity); err != nil {
		return nil, err
	}
	if err := p.SetHWBufferSize(cfg.HWBufferIn, cfg.HWBufferOut); err != nil {
		return nil, err
	}
	return p, nil
}

// Open opens the named device and pushes the cached configuration to it.
// An already open port is closed first. On failure the port is left closed.
func (p *Port) Open(name string) error {
	if p.IsOpen() {
		if err := p.Close(); err != nil {
			p.logd("closing %s before reopen: %v", p.name, err)
		}
	}

	h, err := openDevice(name, &p.settings)
	if err != nil {
		p.logd("open %s failed: %v", name, err)
		return err
	}

	p.h = h
	p.name = name
	// Release the OS handle if the Port is dropped without Close.
	p.cleanup = runtime.AddCleanup(p, func(h *handle) { _ = h.release() }, h)
	p.logd("opened %s", name)
	return nil
}

// IsOpen reports whether the port currently holds an OS handle.
func (p *Port) IsOpen() bool {
	return p.h != nil
}

// Name returns the device name passed to the last successful Open.
func (p *Port) Name() string {
	return p.name
}

// Close releases the OS handle. Closing a closed port is a no-op.
func (p *Port) Close() error {
	if p.h == nil {
		return nil
	}

	h := p.h
	p.h = nil
	p.cleanup.Stop()

	if err := h.release(); err != nil {
		p.logd("close %s: %v", p.name, err)
		return osError("close", err)
	}
	p.logd("closed %s", p.name)
	return nil
}

// Transmit writes data with a single write call. A partial write is
// reported as ErrShortWrite.
func (p *Port) Transmit(data []byte) error {
	if p.h == nil {
		return ErrPortClosed
	}

	n, err := p.h.write(data)
	if err != nil {
		return osError("write", err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, len(data))
	}
	return nil
}

// Receive returns whatever is waiting in the driver's input queue without
// blocking. An empty queue yields an empty slice and no error.
func (p *Port) Receive() ([]byte, error) {
	if p.h == nil {
		return nil, ErrPortClosed
	}

	count, err := p.h.inQueue()
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, nil
	}

	buf := make([]byte, count)
	n, err := p.h.read(buf)
	if err != nil {
		return nil, osError("read", err)
	}
	if n < 0 {
		n = 0
	}
	return buf[:n], nil
}

// SetRTS drives the RTS line
func (p *Port) SetRTS(state bool) error {
	if p.h == nil {
		return ErrPortClosed
	}
	if err := p.h.setRTS(state); err != nil {
		return osError("set RTS", err)
	}
	return nil
}

// SetDTR drives the DTR line
func (p *Port) SetDTR(state bool) error {
	if p.h == nil {
		return ErrPortClosed
	}
	if err := p.h.setDTR(state); err != nil {
		return osError("set DTR", err)
	}
	return nil
}

// ModemLines returns a snapshot of the modem status lines
func (p *Port) ModemLines() (ModemSignals, error) {
	if p.h == nil {
		return ModemSignals{}, ErrPortClosed
	}
	return p.h.modemLines()
}

// HWBufferInSize returns the driver input queue size requested for the port
func (p *Port) HWBufferInSize() (int, error) {
	in, _, err := p.settings.hwBufferSize()
	return in, err
}

// HWBufferOutSize returns the driver output queue size requested for the port
func (p *Port) HWBufferOutSize() (int, error) {
	_, out, err := p.settings.hwBufferSize()
	return out, err
}

// SetHWBufferSize requests new driver queue sizes. Platforms without
// adjustable queues accept and ignore the request.
func (p *Port) SetHWBufferSize(in, out int) error {
	if in <= 0 || out <= 0 {
		return ErrInvalidConfig
	}
	return p.settings.setHWBufferSize(p.h, in, out)
}

// InQueue returns the number of bytes waiting in the driver input queue
func (p *Port) InQueue() (int, error) {
	if p.h == nil {
		return 0, ErrPortClosed
	}
	return p.h.inQueue()
}

// OutQueue returns the number of bytes not yet sent from the driver output queue
func (p *Port) OutQueue() (int, error) {
	if p.h == nil {
		return 0, ErrPortClosed
	}
	return p.h.outQueue()
}

// Flush discards pending data in the selected directions. It succeeds
// trivially on a closed port or when neither direction is selected.
func (p *Port) Flush(in, out bool) error {
	if p.h == nil || (!in && !out) {
		return nil
	}
	if err := p.h.flush(in, out); err != nil {
		return osError("flush", err)
	}
	return nil
}

// BaudRate returns the current baud rate. When open the device is queried.
func (p *Port) BaudRate() (int, error) {
	return p.settings.baudRate(p.h)
}

// SetBaudRate changes the baud rate. When open the change is pushed to the
// device and the cache is only updated if the device accepts it.
func (p *Port) SetBaudRate(rate int) error {
	if rate < 0 {
		return ErrInvalidBaudRate
	}
	if err := p.settings.setBaudRate(p.h, rate); err != nil {
		p.logd("set baud rate %d: %v", rate, err)
		return err
	}
	p.logd("baud rate %d", rate)
	return nil
}

// ByteSize returns the number of data bits
func (p *Port) ByteSize() (ByteSize, error) {
	return p.settings.byteSize(p.h)
}

// SetByteSize changes the number of data bits
func (p *Port) SetByteSize(size ByteSize) error {
	if !size.valid() {
		return fmt.Errorf("%w: byte size %d", ErrInvalidConfig, size)
	}
	if err := p.settings.setByteSize(p.h, size); err != nil {
		p.logd("set byte size %d: %v", size, err)
		return err
	}
	return nil
}

// StopBits returns the number of stop bits
func (p *Port) StopBits() (StopBits, error) {
	return p.settings.stopBits(p.h)
}

// SetStopBits changes the number of stop bits
func (p *Port) SetStopBits(bits StopBits) error {
	if !bits.valid() {
		return fmt.Errorf("%w: stop bits %d", ErrInvalidConfig, bits)
	}
	if err := p.settings.setStopBits(p.h, bits); err != nil {
		p.logd("set stop bits %d: %v", bits, err)
		return err
	}
	return nil
}

// Parity returns the parity mode
func (p *Port) Parity() (Parity, error) {
	return p.settings.parity(p.h)
}

// SetParity changes the parity mode
func (p *Port) SetParity(parity Parity) error {
	if !parity.valid() {
		return fmt.Errorf("%w: parity %d", ErrInvalidConfig, parity)
	}
	if err := p.settings.setParity(p.h, parity); err != nil {
		p.logd("set parity %s: %v", parity, err)
		return err
	}
	return nil
}

func (p *Port) logd(format string, args ...any) {
	if p.logger != nil {
		p.logger.Debugf(format, args...)
	}
}
