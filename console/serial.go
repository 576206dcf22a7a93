package console

import (
	"io"

	"github.com/cockroachdb/errors"
)

// Port is the I/O base address of a 16550 UART
type Port uint16

const (
	COM1 Port = 0x3f8
	COM2 Port = 0x2f8
	COM3 Port = 0x3e8
	COM4 Port = 0x2e8
)

var portMapping = map[Port]string{
	COM1: "COM1",
	COM2: "COM2",
	COM3: "COM3",
	COM4: "COM4",
}

func (p Port) String() string {
	if name, ok := portMapping[p]; ok {
		return name
	}
	return FormatHex(uint32(p))
}

// ParsePort maps a name such as "COM1" to its Port
func ParsePort(name string) (Port, error) {
	for port, portName := range portMapping {
		if portName == name {
			return port, nil
		}
	}
	return 0, errors.Newf("unknown serial port %q", name)
}

// UARTClock is the base rate the divisor latch divides down from
const UARTClock = 115200

// ErrBadBaudRate is returned by Init for rates the divisor latch cannot produce exactly
var ErrBadBaudRate = errors.New("serial: unsupported baud rate")

// Serial emulates a UART whose transmit side is connected to an io.Writer. Nothing is
// transmitted until Init succeeds. Serial also implements io.Writer so it can carry
// structured logs.
type Serial struct {
	formatter
	port    Port
	out     io.Writer
	divisor uint16
	ready   bool
	dropped int
	err     error
}

// NewSerial creates an uninitialized serial line on port that transmits into out
func NewSerial(port Port, out io.Writer) *Serial {
	s := &Serial{port: port, out: out}
	s.formatter = formatter{out: s.writeString}
	return s
}

// Init programs the divisor latch for baud. It must succeed before anything is transmitted.
func (s *Serial) Init(baud int) error {
	if baud <= 0 || baud > UARTClock || UARTClock%baud != 0 {
		return errors.Wrapf(ErrBadBaudRate, "%s: %d", s.port, baud)
	}

	s.divisor = uint16(UARTClock / baud)
	s.ready = true
	return nil
}

// Port returns the UART base address
func (s *Serial) Port() Port { return s.port }

// Ready reports whether Init has succeeded
func (s *Serial) Ready() bool { return s.ready }

// Divisor returns the programmed divisor latch value, or 0 before Init
func (s *Serial) Divisor() uint16 { return s.divisor }

// Baud returns the programmed baud rate, or 0 before Init
func (s *Serial) Baud() int {
	if s.divisor == 0 {
		return 0
	}
	return UARTClock / int(s.divisor)
}

// Dropped is the number of bytes discarded because the line was not ready
func (s *Serial) Dropped() int { return s.dropped }

// Err returns the first error reported by the underlying writer, if any
func (s *Serial) Err() error { return s.err }

// Output transmits data as-is
func (s *Serial) Output(data []byte) {
	_, _ = s.Write(data)
}

func (s *Serial) Write(p []byte) (int, error) {
	if !s.ready {
		s.dropped += len(p)
		return len(p), nil
	}
	if s.err != nil {
		return 0, s.err
	}

	n, err := s.out.Write(p)
	if err != nil {
		s.err = errors.Wrapf(err, "serial %s", s.port)
		return n, s.err
	}
	return n, nil
}

func (s *Serial) writeString(str string) {
	_, _ = s.Write([]byte(str))
}
