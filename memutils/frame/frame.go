// Package frame encodes the header that sits at the start of every heap block.
//
// A frame is exactly Size bytes with no padding:
//
//	offset 0  next            uint32 (arena.Null marks the end frame)
//	offset 4  is_free         uint8  (0 or 1)
//	offset 5  signature_start uint16 (SignatureStart)
//	offset 7  signature_end   uint16 (SignatureEnd)
//
// Fields are read and written individually so that updating a link or a flag
// never rewrites the signatures; a header that was stomped on stays stomped
// on until someone checks it.
package frame

import (
	"encoding/binary"

	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/cockroachdb/errors"
)

const (
	// Size is the encoded size of a frame header in bytes
	Size = 9

	// SignatureStart is written to every frame when it is created
	SignatureStart uint16 = 0x4a6b
	// SignatureEnd is written to every frame when it is created. It differs from SignatureStart
	// so a run of identical stray bytes cannot satisfy both.
	SignatureEnd uint16 = 0x0079

	offsetNext           = 0
	offsetFree           = 4
	offsetSignatureStart = 5
	offsetSignatureEnd   = 7
)

// ErrBadSignature is returned by Check when either signature does not match
var ErrBadSignature = errors.New("frame: signature mismatch")

// Frame is the decoded form of a block header
type Frame struct {
	Next           arena.Addr
	Free           bool
	SignatureStart uint16
	SignatureEnd   uint16
}

// New returns a frame with valid signatures
func New(next arena.Addr, free bool) Frame {
	return Frame{
		Next:           next,
		Free:           free,
		SignatureStart: SignatureStart,
		SignatureEnd:   SignatureEnd,
	}
}

// IsEnd reports whether this is the end-of-chain frame
func (f Frame) IsEnd() bool {
	return f.Next == arena.Null
}

// Check returns ErrBadSignature if either signature is wrong
func (f Frame) Check() error {
	if f.SignatureStart != SignatureStart || f.SignatureEnd != SignatureEnd {
		return errors.Wrapf(ErrBadSignature, "start 0x%04x end 0x%04x", f.SignatureStart, f.SignatureEnd)
	}
	return nil
}

// Encode writes f into the first Size bytes of b
func (f Frame) Encode(b []byte) {
	_ = b[Size-1]
	binary.LittleEndian.PutUint32(b[offsetNext:], uint32(f.Next))
	b[offsetFree] = encodeFree(f.Free)
	binary.LittleEndian.PutUint16(b[offsetSignatureStart:], f.SignatureStart)
	binary.LittleEndian.PutUint16(b[offsetSignatureEnd:], f.SignatureEnd)
}

// Read decodes the frame at addr one field at a time
func Read(mem *arena.Arena, addr arena.Addr) (Frame, error) {
	next, err := mem.Uint32(addr + offsetNext)
	if err != nil {
		return Frame{}, err
	}
	free, err := mem.Uint8(addr + offsetFree)
	if err != nil {
		return Frame{}, err
	}
	signatureStart, err := mem.Uint16(addr + offsetSignatureStart)
	if err != nil {
		return Frame{}, err
	}
	signatureEnd, err := mem.Uint16(addr + offsetSignatureEnd)
	if err != nil {
		return Frame{}, err
	}

	return Frame{
		Next:           arena.Addr(next),
		Free:           free != 0,
		SignatureStart: signatureStart,
		SignatureEnd:   signatureEnd,
	}, nil
}

// Write encodes a whole frame, signatures included, at addr
func Write(mem *arena.Arena, addr arena.Addr, f Frame) error {
	b, err := mem.Slice(addr, Size)
	if err != nil {
		return err
	}
	f.Encode(b)
	return nil
}

// SetNext rewrites only the link of the frame at addr
func SetNext(mem *arena.Arena, addr arena.Addr, next arena.Addr) error {
	return mem.PutUint32(addr+offsetNext, uint32(next))
}

// SetFree rewrites only the free flag of the frame at addr
func SetFree(mem *arena.Arena, addr arena.Addr, free bool) error {
	return mem.PutUint8(addr+offsetFree, encodeFree(free))
}

func encodeFree(free bool) uint8 {
	if free {
		return 1
	}
	return 0
}
