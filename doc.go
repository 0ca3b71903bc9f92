// Package comport provides a small, synchronous serial (COM) port library
// for Linux and Windows with a buffered receive layer built for
// request/response device protocols.
//
// All I/O is non-blocking. Receive returns whatever the driver has queued
// and the BufferedPort waits poll the device once per millisecond until
// their condition holds or the wait timeout runs out.
//
// # Basic Usage
//
// Create a port with the default configuration (57600 baud, 8 data bits,
// 2 stop bits, no parity) and open it:
//
//	port, err := comport.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := port.Open("/dev/ttyUSB0"); err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	err = port.Transmit([]byte("ATI\r"))
//	data, err := port.Receive()
//
// # Configuration
//
// Link parameters can be given as functional options or changed at any
// time through the setters. While the port is open a setter pushes the
// new value to the device and keeps the previous value if the device
// refuses it:
//
//	port, err := comport.New(
//	    comport.WithBaudRate(115200),
//	    comport.WithStopBits(comport.StopBits1),
//	    comport.WithParity(comport.ParityEven),
//	)
//	err = port.SetBaudRate(250000) // custom divisor on Linux
//
// # Buffered Waits
//
// BufferedPort accumulates received bytes and waits for either a byte count
// or an expected prefix:
//
//	bp, _ := comport.NewBuffered(comport.WithWaitTimeout(500 * time.Millisecond))
//	_ = bp.Open("/dev/ttyUSB0")
//	defer bp.Close()
//
//	_ = bp.Transmit([]byte("PING\n"))
//	switch err := bp.BufferWaitPattern([]byte("PONG")); {
//	case err == nil:
//	    // reply matched
//	case errors.Is(err, comport.ErrPatternMismatch):
//	    // device answered something else
//	case errors.Is(err, comport.ErrTimeout):
//	    // no complete answer in time
//	}
//
// # Error Handling
//
// Every failure is reported with a sentinel error to be matched with
// errors.Is: ErrPortClosed, ErrOSRejected (the errno is wrapped as well),
// ErrUnsupported, ErrShortWrite and the wait outcomes ErrTimeout,
// ErrPatternMismatch and ErrClock.
//
// # Concurrency
//
// Ports are not safe for concurrent use. Share one between goroutines only
// behind your own lock.
package comport
