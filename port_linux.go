package comport

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl entry points, replaceable in tests to simulate a driver refusing a
// request.
var (
	getTermios = func(fd int) (*unix.Termios, error) {
		return unix.IoctlGetTermios(fd, unix.TCGETS)
	}
	setTermios = func(fd int, t *unix.Termios) error {
		return unix.IoctlSetTermios(fd, unix.TCSETS, t)
	}
	getSerial = func(fd int) (*serialStruct, error) {
		var ss serialStruct
		if err := ioctlPtr(fd, unix.TIOCGSERIAL, unsafe.Pointer(&ss)); err != nil {
			return nil, err
		}
		return &ss, nil
	}
	setSerial = func(fd int, ss *serialStruct) error {
		return ioctlPtr(fd, unix.TIOCSSERIAL, unsafe.Pointer(ss))
	}
)

func ioctlPtr(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// handle is an open tty file descriptor plus the terminal state found on it
// at open time.
type handle struct {
	fd    int
	saved unix.Termios
}

// settings caches the termios image pushed on open. The baud rate is kept
// apart since custom rates are not representable in Cflag alone.
type settings struct {
	termios unix.Termios
	baud    int
}

func defaultSettings() settings {
	var t unix.Termios
	t.Iflag = unix.IGNBRK | unix.IGNPAR
	t.Oflag = 0
	t.Lflag = 0
	t.Cflag = unix.CS8 | unix.CSTOPB | unix.CREAD | unix.CLOCAL | unix.B38400
	t.Ispeed = unix.B38400
	t.Ospeed = unix.B38400
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 0
	return settings{termios: t, baud: 57600}
}

func openDevice(name string, s *settings) (h *handle, err error) {
	fd, err := unix.Open(name, unix.O_RDWR|unix.O_NONBLOCK|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, openError(name, err)
	}
	saved, err := getTermios(fd)
	if err != nil {
		unix.Close(fd)
		return nil, osError("tcgetattr", err)
	}
	defer func() {
		if err != nil {
			// Puts back the state found at open before closing.
			_ = (&handle{fd: fd, saved: *saved}).release()
		}
	}()

	if err := setTermios(fd, &s.termios); err != nil {
		return nil, osError("tcsetattr", err)
	}
	live, err := getTermios(fd)
	if err != nil {
		return nil, osError("tcgetattr", err)
	}

	h = &handle{fd: fd, saved: *saved}
	cached := s.termios
	s.termios = *live
	if err := s.setBaudRate(h, s.baud); err != nil {
		s.termios = cached
		return nil, err
	}
	return h, nil
}

// openError maps the common open failures onto the device sentinels while
// keeping the errno reachable.
func openError(name string, err error) error {
	var kind error
	switch {
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO):
		kind = ErrDeviceNotFound
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		kind = ErrPermissionDenied
	case errors.Is(err, unix.EBUSY):
		kind = ErrDeviceInUse
	default:
		return fmt.Errorf("open %s: %w", name, osError("open", err))
	}
	return fmt.Errorf("open %s: %w", name, errors.Join(kind, osError("open", err)))
}

func (h *handle) release() error {
	// Restoring is best effort; the device may already be gone.
	_ = setTermios(h.fd, &h.saved)
	return unix.Close(h.fd)
}

func (h *handle) write(data []byte) (int, error) {
	return unix.Write(h.fd, data)
}

func (h *handle) read(buf []byte) (int, error) {
	return unix.Read(h.fd, buf)
}

func (h *handle) inQueue() (int, error) {
	n, err := unix.IoctlGetInt(h.fd, unix.TIOCINQ)
	if err != nil {
		return 0, osError("TIOCINQ", err)
	}
	return n, nil
}

func (h *handle) outQueue() (int, error) {
	n, err := unix.IoctlGetInt(h.fd, unix.TIOCOUTQ)
	if err != nil {
		return 0, osError("TIOCOUTQ", err)
	}
	return n, nil
}

func (h *handle) setRTS(state bool) error {
	return h.modemBit(unix.TIOCM_RTS, state)
}

func (h *handle) setDTR(state bool) error {
	return h.modemBit(unix.TIOCM_DTR, state)
}

// modemBit sets or clears a single modem control line with TIOCMBIS/TIOCMBIC
// so the other lines are left untouched.
func (h *handle) modemBit(bit int, state bool) error {
	if state {
		return unix.IoctlSetPointerInt(h.fd, unix.TIOCMBIS, bit)
	}
	return unix.IoctlSetPointerInt(h.fd, unix.TIOCMBIC, bit)
}

func (h *handle) modemLines() (ModemSignals, error) {
	status, err := unix.IoctlGetInt(h.fd, unix.TIOCMGET)
	if err != nil {
		return ModemSignals{}, osError("TIOCMGET", err)
	}
	return ModemSignals{
		CTS: status&unix.TIOCM_CTS != 0,
		DSR: status&unix.TIOCM_DSR != 0,
		RI:  status&unix.TIOCM_RI != 0,
		DCD: status&unix.TIOCM_CAR != 0,
		RTS: status&unix.TIOCM_RTS != 0,
		DTR: status&unix.TIOCM_DTR != 0,
	}, nil
}

func (h *handle) flush(in, out bool) error {
	queue := unix.TCIOFLUSH
	switch {
	case in && !out:
		queue = unix.TCIFLUSH
	case out && !in:
		queue = unix.TCOFLUSH
	}
	return unix.IoctlSetInt(h.fd, unix.TCFLSH, queue)
}

// Linux exposes no per-port queue size.
func (s *settings) hwBufferSize() (int, int, error) {
	return 0, 0, ErrUnsupported
}

func (s *settings) setHWBufferSize(*handle, int, int) error {
	return nil
}

// update applies fn to the cached termios while closed, or performs a
// read-modify-write against the device while open. The cache only changes
// once the device has accepted the new state.
func (s *settings) update(h *handle, fn func(t *unix.Termios)) error {
	if h == nil {
		fn(&s.termios)
		return nil
	}

	t, err := getTermios(h.fd)
	if err != nil {
		return osError("tcgetattr", err)
	}
	fn(t)
	if err := setTermios(h.fd, t); err != nil {
		return osError("tcsetattr", err)
	}
	s.termios = *t
	return nil
}

// current refreshes the cache from the device when open.
func (s *settings) current(h *handle) (*unix.Termios, error) {
	if h == nil {
		return &s.termios, nil
	}
	t, err := getTermios(h.fd)
	if err != nil {
		return nil, osError("tcgetattr", err)
	}
	s.termios = *t
	return &s.termios, nil
}

func (s *settings) byteSize(h *handle) (ByteSize, error) {
	t, err := s.current(h)
	if err != nil {
		return 0, err
	}
	switch t.Cflag & unix.CSIZE {
	case unix.CS5:
		return ByteSize5, nil
	case unix.CS6:
		return ByteSize6, nil
	case unix.CS7:
		return ByteSize7, nil
	default:
		return ByteSize8, nil
	}
}

func (s *settings) setByteSize(h *handle, size ByteSize) error {
	var bits uint32
	switch size {
	case ByteSize5:
		bits = unix.CS5
	case ByteSize6:
		bits = unix.CS6
	case ByteSize7:
		bits = unix.CS7
	default:
		bits = unix.CS8
	}
	return s.update(h, func(t *unix.Termios) {
		t.Cflag = t.Cflag&^unix.CSIZE | bits
	})
}

func (s *settings) stopBits(h *handle) (StopBits, error) {
	t, err := s.current(h)
	if err != nil {
		return 0, err
	}
	if t.Cflag&unix.CSTOPB != 0 {
		return StopBits2, nil
	}
	return StopBits1, nil
}

func (s *settings) setStopBits(h *handle, bits StopBits) error {
	return s.update(h, func(t *unix.Termios) {
		if bits == StopBits2 {
			t.Cflag |= unix.CSTOPB
		} else {
			t.Cflag &^= unix.CSTOPB
		}
	})
}

func (s *settings) parity(h *handle) (Parity, error) {
	t, err := s.current(h)
	if err != nil {
		return 0, err
	}
	odd := t.Cflag&unix.PARODD != 0
	switch {
	case t.Cflag&unix.PARENB == 0:
		return ParityNone, nil
	case t.Cflag&unix.CMSPAR != 0 && odd:
		return ParityMark, nil
	case t.Cflag&unix.CMSPAR != 0:
		return ParitySpace, nil
	case odd:
		return ParityOdd, nil
	default:
		return ParityEven, nil
	}
}

func (s *settings) setParity(h *handle, parity Parity) error {
	var bits uint32
	switch parity {
	case ParityOdd:
		bits = unix.PARENB | unix.PARODD
	case ParityEven:
		bits = unix.PARENB
	case ParityMark:
		bits = unix.PARENB | unix.PARODD | unix.CMSPAR
	case ParitySpace:
		bits = unix.PARENB | unix.CMSPAR
	}
	return s.update(h, func(t *unix.Termios) {
		t.Cflag = t.Cflag&^(unix.PARENB|unix.PARODD|unix.CMSPAR) | bits
	})
}
