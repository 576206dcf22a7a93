package kheap

import (
	"context"

	"github.com/OmichronAgain/novos/memutils"
	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/OmichronAgain/novos/memutils/frame"
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

// Free marks the block owning ptr free and merges it with the block directly after it if
// that block is free too. Freeing arena.Null or a block that is already free does nothing.
//
// A pointer whose frame cannot be read, whose signatures are wrong, or that names the end
// frame means the heap is corrupt: Free reports it to the sink, calls the abort function and
// does not return.
func (h *Heap) Free(ptr arena.Addr) {
	if ptr == arena.Null {
		return
	}

	addr, f := h.checkedFrame(ptr)
	if f.Free {
		return
	}
	h.debugValidate(ptr)

	memutils.DebugFill(h.payload(addr, f), memutils.FreeFillPattern)
	h.mustSucceed(addr, frame.SetFree(h.mem, addr, true))
	if h.tracker != nil {
		h.tracker.Delete(ptr)
	}

	next := h.mustFrame(f.Next)
	merged := false
	if !next.IsEnd() && next.Free {
		h.mustSucceed(addr, frame.SetNext(h.mem, addr, next.Next))
		merged = true
	}

	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "    Freed block",
		slog.String("ptr", ptr.String()),
		slog.Bool("merged", merged),
	)
}

// checkedFrame recovers and validates the frame owning ptr, taking the corruption path if
// it is not a live block frame inside this heap's region
func (h *Heap) checkedFrame(ptr arena.Addr) (arena.Addr, frame.Frame) {
	if uint32(ptr) < frame.Size {
		h.corrupted(ptr, nil, errors.Wrapf(ErrInvalidPointer, "%s is below the first frame", ptr))
	}

	addr := ptr - frame.Size
	f, err := frame.Read(h.mem, addr)
	if err != nil {
		h.corrupted(ptr, nil, err)
	}
	if err := f.Check(); err != nil {
		h.corrupted(ptr, &f, err)
	}
	if f.IsEnd() || addr < h.head || addr >= h.end {
		h.corrupted(ptr, &f, errors.Wrapf(ErrInvalidPointer, "%s is not a block in this heap", ptr))
	}

	// the link is checked after the signatures so a stomped header reports its signature
	f = h.mustFrame(addr)
	return addr, f
}
