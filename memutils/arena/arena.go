package arena

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// Addr is an address in the emulated 32-bit physical address space
type Addr uint32

// Null is the address that never refers to memory
const Null Addr = 0

func (a Addr) String() string {
	return fmt.Sprintf("0x%08x", uint32(a))
}

var (
	// ErrOutOfBounds is returned when an access falls outside the arena
	ErrOutOfBounds = errors.New("arena: access out of bounds")
	// ErrNullBase is returned when an arena would contain the Null address
	ErrNullBase = errors.New("arena: base address must not be null")
	// ErrTooLarge is returned when an arena would extend past the 32-bit address space
	ErrTooLarge = errors.New("arena: region extends past the 32-bit address space")
)

// Arena is a contiguous run of bytes starting at a fixed address
type Arena struct {
	base    Addr
	data    []byte
	release func() error
}

// New allocates a zeroed arena of size bytes starting at base
func New(base Addr, size int) (*Arena, error) {
	if size < 0 {
		return nil, errors.Newf("arena: negative size %d", size)
	}
	return FromBytes(base, make([]byte, size))
}

// FromBytes wraps an existing buffer. The arena aliases data; it does not copy it.
func FromBytes(base Addr, data []byte) (*Arena, error) {
	if err := checkPlacement(base, len(data)); err != nil {
		return nil, err
	}

	return &Arena{base: base, data: data}, nil
}

func checkPlacement(base Addr, size int) error {
	if base == Null {
		return ErrNullBase
	}
	if uint64(base)+uint64(size) > math.MaxUint32+1 {
		return errors.Wrapf(ErrTooLarge, "base %s size %d", base, size)
	}
	return nil
}

// Base is the address of the first byte in the arena
func (a *Arena) Base() Addr { return a.base }

// Len is the number of bytes in the arena
func (a *Arena) Len() int { return len(a.data) }

// Limit is one past the address of the last byte in the arena, widened so it cannot wrap
func (a *Arena) Limit() uint64 { return uint64(a.base) + uint64(len(a.data)) }

// Contains reports whether [addr, addr+n) lies entirely inside the arena
func (a *Arena) Contains(addr Addr, n uint32) bool {
	return addr >= a.base && uint64(addr)+uint64(n) <= a.Limit()
}

// Slice returns the n bytes at addr. The returned slice aliases the arena.
func (a *Arena) Slice(addr Addr, n uint32) ([]byte, error) {
	if !a.Contains(addr, n) {
		return nil, errors.Wrapf(ErrOutOfBounds, "%d bytes at %s (arena %s-0x%08x)", n, addr, a.base, a.Limit())
	}
	off := int(addr - a.base)
	return a.data[off : off+int(n) : off+int(n)], nil
}

// Uint8 reads the byte at addr
func (a *Arena) Uint8(addr Addr) (uint8, error) {
	b, err := a.Slice(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads the little-endian uint16 at addr
func (a *Arena) Uint16(addr Addr) (uint16, error) {
	b, err := a.Slice(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32 reads the little-endian uint32 at addr
func (a *Arena) Uint32(addr Addr) (uint32, error) {
	b, err := a.Slice(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// PutUint8 writes v at addr
func (a *Arena) PutUint8(addr Addr, v uint8) error {
	b, err := a.Slice(addr, 1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

// PutUint16 writes v at addr in little-endian order
func (a *Arena) PutUint16(addr Addr, v uint16) error {
	b, err := a.Slice(addr, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, v)
	return nil
}

// PutUint32 writes v at addr in little-endian order
func (a *Arena) PutUint32(addr Addr, v uint32) error {
	b, err := a.Slice(addr, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

// Close releases any mapping backing the arena. The arena must not be used afterward.
// Closing a heap-backed arena, or closing twice, is a no-op.
func (a *Arena) Close() error {
	if a.release == nil {
		return nil
	}
	release := a.release
	a.release = nil
	a.data = nil
	return release()
}
