//go:build windows

package comport

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// dcb mirrors the Win32 DCB structure.
type dcb struct {
	DCBLength uint32
	BaudRate  uint32
	Flags     uint32
	_         uint16 // wReserved
	XonLim    uint16
	XoffLim   uint16
	ByteSize  byte
	Parity    byte
	StopBits  byte
	XonChar   byte
	XoffChar  byte
	ErrorChar byte
	EOFChar   byte
	EvtChar   byte
	_         uint16 // wReserved1
}

// commTimeouts mirrors the Win32 COMMTIMEOUTS structure.
type commTimeouts struct {
	ReadIntervalTimeout         uint32
	ReadTotalTimeoutMultiplier  uint32
	ReadTotalTimeoutConstant    uint32
	WriteTotalTimeoutMultiplier uint32
	WriteTotalTimeoutConstant   uint32
}

// comStat mirrors the Win32 COMSTAT structure.
type comStat struct {
	Flags    uint32
	CbInQue  uint32
	CbOutQue uint32
}

var (
	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procGetCommState       = kernel32.NewProc("GetCommState")
	procSetCommState       = kernel32.NewProc("SetCommState")
	procSetCommTmout       = kernel32.NewProc("SetCommTimeouts")
	procSetupComm          = kernel32.NewProc("SetupComm")
	procPurgeComm          = kernel32.NewProc("PurgeComm")
	procEscapeComm         = kernel32.NewProc("EscapeCommFunction")
	procClearCommError     = kernel32.NewProc("ClearCommError")
	procGetCommModemStatus = kernel32.NewProc("GetCommModemStatus")
)

const (
	purgeTxAbort = 0x0001
	purgeRxAbort = 0x0002
	purgeTxClear = 0x0004
	purgeRxClear = 0x0008

	escSetRTS = 3
	escClrRTS = 4
	escSetDTR = 5
	escClrDTR = 6

	msCTSOn  = 0x0010
	msDSROn  = 0x0020
	msRingOn = 0x0040
	msRLSDOn = 0x0080

	oneStopBit  = 0
	twoStopBits = 2

	// fBinary | fTXContinueOnXoff
	defaultDCBFlags = 0x01 | 0x80
)

type handle struct {
	h windows.Handle
}

// settings caches the DCB and the requested driver queue sizes.
type settings struct {
	dcb     dcb
	inSize  int
	outSize int
}

func defaultSettings() settings {
	var d dcb
	d.DCBLength = uint32(unsafe.Sizeof(d))
	d.BaudRate = 57600
	d.ByteSize = 8
	d.StopBits = twoStopBits
	d.Parity = 0
	d.Flags = defaultDCBFlags
	return settings{dcb: d, inSize: 256, outSize: 256}
}

func openDevice(name string, s *settings) (h *handle, err error) {
	pathp, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid path %q: %w", ErrInvalidConfig, name, err)
	}

	fh, err := windows.CreateFile(
		pathp,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0, // exclusive access
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return nil, openError(name, err)
	}
	defer func() {
		if err != nil {
			windows.CloseHandle(fh)
		}
	}()

	if err := setupComm(fh, s.inSize, s.outSize); err != nil {
		return nil, osError("SetupComm", err)
	}

	// Reads return immediately with whatever is queued.
	timeouts := commTimeouts{ReadIntervalTimeout: windows.INFINITE}
	if r, _, err := procSetCommTmout.Call(uintptr(fh), uintptr(unsafe.Pointer(&timeouts))); r == 0 {
		return nil, osError("SetCommTimeouts", err)
	}

	if err := setCommState(fh, &s.dcb); err != nil {
		return nil, osError("SetCommState", err)
	}
	return &handle{h: fh}, nil
}

func openError(name string, err error) error {
	var kind error
	switch {
	case errors.Is(err, windows.ERROR_FILE_NOT_FOUND), errors.Is(err, windows.ERROR_PATH_NOT_FOUND):
		kind = ErrDeviceNotFound
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		kind = ErrPermissionDenied
	case errors.Is(err, windows.ERROR_SHARING_VIOLATION):
		kind = ErrDeviceInUse
	default:
		return fmt.Errorf("open %s: %w", name, osError("CreateFile", err))
	}
	return fmt.Errorf("open %s: %w", name, errors.Join(kind, osError("CreateFile", err)))
}

func getCommState(h windows.Handle) (dcb, error) {
	var d dcb
	d.DCBLength = uint32(unsafe.Sizeof(d))
	if r, _, err := procGetCommState.Call(uintptr(h), uintptr(unsafe.Pointer(&d))); r == 0 {
		return dcb{}, err
	}
	return d, nil
}

func setCommState(h windows.Handle, d *dcb) error {
	if r, _, err := procSetCommState.Call(uintptr(h), uintptr(unsafe.Pointer(d))); r == 0 {
		return err
	}
	return nil
}

func setupComm(h windows.Handle, in, out int) error {
	if r, _, err := procSetupComm.Call(uintptr(h), uintptr(in), uintptr(out)); r == 0 {
		return err
	}
	return nil
}

func (h *handle) release() error {
	return windows.CloseHandle(h.h)
}

func (h *handle) write(data []byte) (int, error) {
	var done uint32
	err := windows.WriteFile(h.h, data, &done, nil)
	return int(done), err
}

func (h *handle) read(buf []byte) (int, error) {
	var done uint32
	err := windows.ReadFile(h.h, buf, &done, nil)
	return int(done), err
}

func (h *handle) comStat() (comStat, error) {
	var (
		errs uint32
		st   comStat
	)
	r, _, err := procClearCommError.Call(uintptr(h.h), uintptr(unsafe.Pointer(&errs)), uintptr(unsafe.Pointer(&st)))
	if r == 0 {
		return comStat{}, osError("ClearCommError", err)
	}
	return st, nil
}

func (h *handle) inQueue() (int, error) {
	st, err := h.comStat()
	return int(st.CbInQue), err
}

func (h *handle) outQueue() (int, error) {
	st, err := h.comStat()
	return int(st.CbOutQue), err
}

func (h *handle) escape(fn uintptr) error {
	if r, _, err := procEscapeComm.Call(uintptr(h.h), fn); r == 0 {
		return err
	}
	return nil
}

func (h *handle) setRTS(state bool) error {
	if state {
		return h.escape(escSetRTS)
	}
	return h.escape(escClrRTS)
}

func (h *handle) setDTR(state bool) error {
	if state {
		return h.escape(escSetDTR)
	}
	return h.escape(escClrDTR)
}

// RTS and DTR are outputs Windows does not report back, so they stay false.
func (h *handle) modemLines() (ModemSignals, error) {
	var status uint32
	if r, _, err := procGetCommModemStatus.Call(uintptr(h.h), uintptr(unsafe.Pointer(&status))); r == 0 {
		return ModemSignals{}, osError("GetCommModemStatus", err)
	}
	return ModemSignals{
		CTS: status&msCTSOn != 0,
		DSR: status&msDSROn != 0,
		RI:  status&msRingOn != 0,
		DCD: status&msRLSDOn != 0,
	}, nil
}

func (h *handle) flush(in, out bool) error {
	var flags uintptr
	if in {
		flags |= purgeRxAbort | purgeRxClear
	}
	if out {
		flags |= purgeTxAbort | purgeTxClear
	}
	if r, _, err := procPurgeComm.Call(uintptr(h.h), flags); r == 0 {
		return err
	}
	return nil
}

func (s *settings) hwBufferSize() (int, int, error) {
	return s.inSize, s.outSize, nil
}

func (s *settings) setHWBufferSize(h *handle, in, out int) error {
	if h != nil {
		if err := setupComm(h.h, in, out); err != nil {
			return osError("SetupComm", err)
		}
	}
	s.inSize = in
	s.outSize = out
	return nil
}

// update mirrors the Linux read-modify-write: the cached DCB is replaced
// only after SetCommState succeeds.
func (s *settings) update(h *handle, fn func(d *dcb)) error {
	if h == nil {
		fn(&s.dcb)
		return nil
	}

	d, err := getCommState(h.h)
	if err != nil {
		return osError("GetCommState", err)
	}
	fn(&d)
	if err := setCommState(h.h, &d); err != nil {
		return osError("SetCommState", err)
	}
	s.dcb = d
	return nil
}

func (s *settings) current(h *handle) (*dcb, error) {
	if h == nil {
		return &s.dcb, nil
	}
	d, err := getCommState(h.h)
	if err != nil {
		return nil, osError("GetCommState", err)
	}
	s.dcb = d
	return &s.dcb, nil
}

func (s *settings) baudRate(h *handle) (int, error) {
	d, err := s.current(h)
	if err != nil {
		return 0, err
	}
	return int(d.BaudRate), nil
}

func (s *settings) setBaudRate(h *handle, rate int) error {
	return s.update(h, func(d *dcb) { d.BaudRate = uint32(rate) })
}

func (s *settings) byteSize(h *handle) (ByteSize, error) {
	d, err := s.current(h)
	if err != nil {
		return 0, err
	}
	size := ByteSize(d.ByteSize)
	if !size.valid() {
		return 0, fmt.Errorf("%w: byte size %d", ErrInvalidConfig, d.ByteSize)
	}
	return size, nil
}

func (s *settings) setByteSize(h *handle, size ByteSize) error {
	return s.update(h, func(d *dcb) { d.ByteSize = byte(size) })
}

func (s *settings) stopBits(h *handle) (StopBits, error) {
	d, err := s.current(h)
	if err != nil {
		return 0, err
	}
	switch d.StopBits {
	case oneStopBit:
		return StopBits1, nil
	case twoStopBits:
		return StopBits2, nil
	}
	// ONE5STOPBITS has no equivalent here.
	return 0, fmt.Errorf("%w: stop bits code %d", ErrInvalidConfig, d.StopBits)
}

func (s *settings) setStopBits(h *handle, bits StopBits) error {
	code := byte(oneStopBit)
	if bits == StopBits2 {
		code = twoStopBits
	}
	return s.update(h, func(d *dcb) { d.StopBits = code })
}

// The Win32 parity codes NOPARITY..SPACEPARITY share the ordering of Parity.
func (s *settings) parity(h *handle) (Parity, error) {
	d, err := s.current(h)
	if err != nil {
		return 0, err
	}
	p := Parity(d.Parity)
	if !p.valid() {
		return 0, fmt.Errorf("%w: parity code %d", ErrInvalidConfig, d.Parity)
	}
	return p, nil
}

func (s *settings) setParity(h *handle, parity Parity) error {
	return s.update(h, func(d *dcb) {
		d.Parity = byte(parity)
		if parity == ParityNone {
			d.Flags &^= 0x02 // fParity
		} else {
			d.Flags |= 0x02
		}
	})
}
