package kheap

import (
	"context"

	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slog"
)

// allocationTracker remembers the size each live allocation asked for. Blocks can be larger
// than requested (a block too small to split is handed out whole) and the frame chain only
// knows block sizes.
type allocationTracker struct {
	requested *swiss.Map[arena.Addr, uint32]
}

func newAllocationTracker() *allocationTracker {
	return &allocationTracker{
		requested: swiss.NewMap[arena.Addr, uint32](42),
	}
}

func (t *allocationTracker) Put(ptr arena.Addr, size uint32) {
	t.requested.Put(ptr, size)
}

func (t *allocationTracker) Delete(ptr arena.Addr) {
	t.requested.Delete(ptr)
}

func (t *allocationTracker) Get(ptr arena.Addr) (uint32, bool) {
	return t.requested.Get(ptr)
}

func (t *allocationTracker) Count() int {
	return t.requested.Count()
}

// RequestedSize returns the size passed to Allocate for the live allocation at ptr. It
// returns false if the heap was not created with CreateTrackAllocations or ptr is not live.
func (h *Heap) RequestedSize(ptr arena.Addr) (uint32, bool) {
	if h.tracker == nil {
		return 0, false
	}
	return h.tracker.Get(ptr)
}

// Destroy logs every allocation that is still live and returns ErrUnreleasedMemory if there
// were any. The region itself belongs to the caller and is left untouched.
func (h *Heap) Destroy() error {
	if h.IsEmpty() {
		return nil
	}

	var live int
	err := h.VisitAllBlocks(func(block BlockDescriptor) error {
		if block.Free {
			return nil
		}

		live++
		h.logUnreleasedMemory(block)
		return nil
	})
	if err != nil {
		h.logger.LogAttrs(context.Background(),
			slog.LevelError,
			"[UNRELEASED MEMORY] error while iterating unreleased memory",
			slog.Any("error", err))
	}

	return errors.Wrapf(ErrUnreleasedMemory, "%d allocations live", live)
}

func (h *Heap) logUnreleasedMemory(block BlockDescriptor) {
	attrs := []slog.Attr{
		slog.Int("offset", int(block.Address-h.head)),
		slog.Int("size", int(block.PayloadSize)),
		slog.String("ptr", block.Pointer().String()),
	}
	if requested, ok := h.RequestedSize(block.Pointer()); ok {
		attrs = append(attrs, slog.Int("requested", int(requested)))
	}

	h.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed allocation", attrs...)
}
