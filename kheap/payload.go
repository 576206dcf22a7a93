package kheap

import (
	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/OmichronAgain/novos/memutils/frame"
	"github.com/cockroachdb/errors"
)

// Payload returns the bytes of the live allocation at ptr. The slice aliases the heap's arena
// and is exactly as long as the block's payload, which may be longer than the size requested.
// Unlike Free, a bad pointer is reported as ErrInvalidPointer rather than treated as
// corruption.
func (h *Heap) Payload(ptr arena.Addr) ([]byte, error) {
	if !h.Initialized() || ptr == arena.Null || uint32(ptr) < frame.Size {
		return nil, errors.Wrapf(ErrInvalidPointer, "%s", ptr)
	}

	addr := ptr - frame.Size
	if addr < h.head || addr >= h.end {
		return nil, errors.Wrapf(ErrInvalidPointer, "%s is outside the heap", ptr)
	}

	f, err := frame.Read(h.mem, addr)
	if err != nil {
		return nil, errors.Mark(err, ErrInvalidPointer)
	}
	if err := f.Check(); err != nil {
		return nil, errors.Mark(err, ErrInvalidPointer)
	}
	if f.Free {
		return nil, errors.Wrapf(ErrInvalidPointer, "%s is free", ptr)
	}

	f, err = h.frameAt(addr)
	if err != nil {
		return nil, errors.Mark(err, ErrInvalidPointer)
	}

	return h.payload(addr, f), nil
}
