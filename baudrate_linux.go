package comport

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Flag bits of serial_struct.flags selecting the B38400 alias
const (
	asyncSpdMask = 0x1030
	asyncSpdCust = 0x0030
)

// serialStruct mirrors struct serial_struct from linux/serial.h, used with
// TIOCGSERIAL and TIOCSSERIAL.
type serialStruct struct {
	Type          int32
	Line          int32
	Port          uint32
	Irq           int32
	Flags         int32
	XmitFifoSize  int32
	CustomDivisor int32
	BaudBase      int32
	CloseDelay    uint16
	IoType        int8
	_             [1]int8
	Hub6          int32
	ClosingWait   uint16
	ClosingWait2  uint16
	IomemBase     uintptr
	IomemRegShift uint16
	PortHigh      uint32
	IomapBase     uintptr
}

// baudCodes maps the rates termios can express directly onto their Bxxx code
var baudCodes = map[int]uint32{
	0:       unix.B0,
	50:      unix.B50,
	75:      unix.B75,
	110:     unix.B110,
	134:     unix.B134,
	150:     unix.B150,
	200:     unix.B200,
	300:     unix.B300,
	600:     unix.B600,
	1200:    unix.B1200,
	1800:    unix.B1800,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	576000:  unix.B576000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1152000: unix.B1152000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
	2500000: unix.B2500000,
	3000000: unix.B3000000,
	3500000: unix.B3500000,
	4000000: unix.B4000000,
}

var baudRates = func() map[uint32]int {
	m := make(map[uint32]int, len(baudCodes))
	for rate, code := range baudCodes {
		m[code] = rate
	}
	return m
}()

// baudCode returns the termios code for rate. Rates without a code of their
// own are programmed as B38400 with a custom divisor.
func baudCode(rate int) (uint32, bool) {
	if code, ok := baudCodes[rate]; ok {
		return code, true
	}
	return unix.B38400, false
}

// customDivisor rounds baudBase/rate to the nearest integer
func customDivisor(baudBase, rate int) int {
	return (baudBase + rate/2) / rate
}

func (s *settings) baudRate(h *handle) (int, error) {
	if h == nil {
		return s.baud, nil
	}

	t, err := s.current(h)
	if err != nil {
		return 0, err
	}
	code := t.Cflag & (unix.CBAUD | unix.CBAUDEX)
	if code != unix.B38400 {
		rate, ok := baudRates[code]
		if !ok {
			return 0, fmt.Errorf("%w: code %#x", ErrUnknownBaudRate, code)
		}
		return rate, nil
	}

	ss, err := getSerial(h.fd)
	if err != nil || ss.Flags&asyncSpdMask != asyncSpdCust {
		return 38400, nil
	}
	if ss.CustomDivisor == 0 {
		return 0, fmt.Errorf("%w: zero custom divisor", ErrUnknownBaudRate)
	}
	return int(ss.BaudBase / ss.CustomDivisor), nil
}

func (s *settings) setBaudRate(h *handle, rate int) error {
	if h == nil {
		code, _ := baudCode(rate)
		setSpeed(&s.termios, code)
		s.baud = rate
		return nil
	}

	t, err := getTermios(h.fd)
	if err != nil {
		return osError("tcgetattr", err)
	}
	prev := *t
	code, _ := baudCode(rate)
	setSpeed(t, code)
	if err := setTermios(h.fd, t); err != nil {
		return osError("tcsetattr", err)
	}

	if code == unix.B38400 {
		if err := applyDivisor(h.fd, rate); err != nil {
			_ = setTermios(h.fd, &prev)
			return err
		}
	}

	s.termios = *t
	s.baud = rate
	return nil
}

func setSpeed(t *unix.Termios, code uint32) {
	t.Cflag = t.Cflag&^(unix.CBAUD|unix.CBAUDEX) | code
	t.Ispeed = code
	t.Ospeed = code
}

// applyDivisor programs (or clears) the custom divisor aliased onto B38400.
// Devices without serial_struct support keep plain 38400.
func applyDivisor(fd, rate int) error {
	ss, err := getSerial(fd)
	if err != nil {
		return nil
	}

	if rate == 38400 {
		if ss.Flags&asyncSpdMask == 0 {
			return nil
		}
		ss.Flags &^= asyncSpdMask
	} else {
		if ss.BaudBase <= 0 {
			return fmt.Errorf("%w: %d (device reports no base clock)", ErrInvalidBaudRate, rate)
		}
		div := customDivisor(int(ss.BaudBase), rate)
		if div < 1 {
			return fmt.Errorf("%w: %d exceeds base clock %d", ErrInvalidBaudRate, rate, ss.BaudBase)
		}
		ss.Flags = ss.Flags&^asyncSpdMask | asyncSpdCust
		ss.CustomDivisor = int32(div)
	}

	if err := setSerial(fd, ss); err != nil {
		return osError("TIOCSSERIAL", err)
	}
	return nil
}
