package kheap

import (
	"context"

	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/OmichronAgain/novos/memutils/frame"
	"golang.org/x/exp/slog"
)

// Consolidate merges every run of adjacent free blocks into a single block. Afterward no two
// neighboring blocks are both free, until the next Allocate or Free.
func (h *Heap) Consolidate() {
	h.debugValidate(h.head + frame.Size)

	merged := h.consolidate()

	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "Consolidated heap", slog.Int("merged", merged))
}

func (h *Heap) consolidate() int {
	var merged int

	current := h.head
	for current != arena.Null {
		f := h.mustFrame(current)
		if f.IsEnd() {
			break
		}

		if !f.Free {
			current = f.Next
			continue
		}

		next := h.mustFrame(f.Next)
		if next.IsEnd() || !next.Free {
			current = f.Next
			continue
		}

		// absorb the neighbor and look at the same block again
		h.mustSucceed(current, frame.SetNext(h.mem, current, next.Next))
		merged++
	}

	return merged
}
