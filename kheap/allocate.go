package kheap

import (
	"context"

	"github.com/OmichronAgain/novos/memutils"
	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/OmichronAgain/novos/memutils/frame"
	"golang.org/x/exp/slog"
)

// Allocator is the narrow interface the rest of the kernel allocates through
type Allocator interface {
	// Allocate returns the address of size usable bytes, or arena.Null if no free block is
	// large enough
	Allocate(size uint32) arena.Addr
	// Free returns memory obtained from Allocate. Freeing arena.Null or an already-free
	// block does nothing.
	Free(ptr arena.Addr)
}

// Allocate finds the first free block that can hold size bytes and returns the address just
// past its frame. A block with room for size bytes plus a second frame is split, leaving the
// remainder free; a block that fits size bytes but not another frame is handed out whole.
// Returns arena.Null when nothing fits or the heap was never initialized.
func (h *Heap) Allocate(size uint32) arena.Addr {
	h.debugValidate(h.head + frame.Size)

	ptr := h.allocate(size)
	if ptr == arena.Null && h.flags&CreateConsolidateOnFailure != 0 && h.consolidate() > 0 {
		ptr = h.allocate(size)
	}

	if ptr == arena.Null {
		h.logger.LogAttrs(context.Background(), slog.LevelDebug, "    Allocation failed", slog.Int("size", int(size)))
	}

	return ptr
}

func (h *Heap) allocate(size uint32) arena.Addr {
	need := uint64(size) + frame.Size

	current := h.head
	for current != arena.Null {
		f := h.mustFrame(current)
		if f.IsEnd() {
			// the end frame: nothing past here
			return arena.Null
		}

		if !f.Free {
			current = f.Next
			continue
		}

		blockSize := uint64(f.Next - current)
		if blockSize > need+frame.Size {
			return h.split(current, f, size)
		} else if blockSize >= need {
			return h.take(current, f, size, false)
		}

		current = f.Next
	}

	return arena.Null
}

// split carves size bytes off the front of the free block at addr and leaves the rest as a
// new free block
func (h *Heap) split(addr arena.Addr, f frame.Frame, size uint32) arena.Addr {
	remainder := addr + frame.Size + arena.Addr(size)

	h.mustSucceed(addr, frame.Write(h.mem, remainder, frame.New(f.Next, true)))
	h.mustSucceed(addr, frame.SetNext(h.mem, addr, remainder))
	f.Next = remainder

	return h.take(addr, f, size, true)
}

func (h *Heap) take(addr arena.Addr, f frame.Frame, size uint32, split bool) arena.Addr {
	h.mustSucceed(addr, frame.SetFree(h.mem, addr, false))

	ptr := addr + frame.Size
	memutils.DebugFill(h.payload(addr, f), memutils.AllocFillPattern)
	if h.tracker != nil {
		h.tracker.Put(ptr, size)
	}

	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "    Allocated block",
		slog.String("ptr", ptr.String()),
		slog.Int("size", int(size)),
		slog.Int("blockSize", int(f.Next-addr)),
		slog.Bool("split", split),
	)

	return ptr
}
