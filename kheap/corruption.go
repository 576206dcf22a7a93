package kheap

import (
	"context"

	"github.com/OmichronAgain/novos/memutils"
	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/OmichronAgain/novos/memutils/frame"
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

// corrupted reports that the heap can no longer be trusted and never returns. The sink gets
// the offending pointer, the signatures observed in its frame when it could be read, and the
// block map.
func (h *Heap) corrupted(ptr arena.Addr, observed *frame.Frame, cause error) {
	h.sink.Print("HEAP CORRUPTION at ")
	h.sink.PrintlnHex(uint32(ptr))
	if observed != nil {
		h.sink.Print("   signature ")
		h.sink.PrintlnHex(uint32(observed.SignatureStart))
		h.sink.Print("   sig end   ")
		h.sink.PrintlnHex(uint32(observed.SignatureEnd))
	} else {
		h.sink.Println("   frame unreadable")
	}
	h.Dump(h.sink)

	h.logger.LogAttrs(context.Background(), slog.LevelError, "heap corruption detected",
		slog.String("pointer", ptr.String()),
		slog.Any("error", cause),
	)

	h.abort()

	panic(errors.Mark(errors.Wrapf(cause, "abort returned after corruption at %s", ptr), ErrHeapCorrupted))
}

// debugValidate checks the whole chain in debug builds, reporting any inconsistency through the
// corruption path against ptr
func (h *Heap) debugValidate(ptr arena.Addr) {
	memutils.DebugValidate(h, func(err error) {
		h.corrupted(ptr, nil, err)
	})
}
