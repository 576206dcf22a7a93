package boot

import (
	"github.com/OmichronAgain/novos/console"
	"github.com/OmichronAgain/novos/memutils"
	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/OmichronAgain/novos/memutils/frame"
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

// Config holds everything the boot sequence needs to bring the machine up
type Config struct {
	// HeapBase is the address of the first byte of the heap region. It must not be 0.
	HeapBase uint32
	// HeapSize is the size of the heap region in bytes, headers included
	HeapSize int
	// BaudRate is programmed into the serial line's divisor latch. It must divide 115200.
	BaudRate int
	// Port is the serial line diagnostics and logs are written to
	Port console.Port
	// Iterations is how many times the banner is transmitted before Run returns. Zero or
	// less runs until the context is canceled.
	Iterations int
	// Banner is the line transmitted over serial in the main loop
	Banner string
	// UseMmap backs the heap region with an anonymous memory mapping instead of the Go heap
	UseMmap bool
	// LogLevel is the minimum level of the structured log: debug, info, warn or error
	LogLevel string
	// DumpJSON writes a json map of the heap to the serial line after the heap exercise
	DumpJSON bool
}

// DefaultConfig returns the configuration of a stock boot: a 1MiB heap at 1MiB, COM1 at
// 38400 baud, and one banner per screen cell
func DefaultConfig() Config {
	return Config{
		HeapBase:   0x100000,
		HeapSize:   0x100000,
		BaudRate:   38400,
		Port:       console.COM1,
		Iterations: console.Width * console.Height,
		Banner:     "all work no play makes jack a dull boy",
		LogLevel:   "info",
	}
}

// Validate checks the configuration for values the boot sequence cannot work with
func (c Config) Validate() error {
	if arena.Addr(c.HeapBase) == arena.Null {
		return errors.New("boot: heap base must not be null")
	}
	if c.HeapSize <= 0 {
		return errors.Newf("boot: heap size must be positive, got %d", c.HeapSize)
	}
	if err := memutils.CheckRegion(uint64(c.HeapSize), 2*frame.Size, "boot: heap size"); err != nil {
		return err
	}
	if _, err := memutils.CheckedAdd(uint64(c.HeapBase), uint64(c.HeapSize)-1, "boot: heap limit"); err != nil {
		return err
	}
	if c.BaudRate <= 0 || console.UARTClock%c.BaudRate != 0 {
		return errors.Wrapf(console.ErrBadBaudRate, "boot: %d", c.BaudRate)
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level parses LogLevel
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, errors.Wrapf(err, "boot: log level %q", c.LogLevel)
	}
	return level, nil
}
