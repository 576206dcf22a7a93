package kheap

import (
	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/OmichronAgain/novos/memutils/frame"
	"github.com/pkg/errors"
)

// Validate performs consistency checks over the whole chain: every frame is readable, carries
// both signatures, and links forward far enough to hold its own header; the chain ends at
// the end frame placed by Init; and, when allocations are tracked, every tracked pointer is
// an occupied block. An uninitialized heap is valid.
func (h *Heap) Validate() error {
	if !h.Initialized() {
		return nil
	}

	var allocCount int
	current := h.head
	for {
		f, err := frame.Read(h.mem, current)
		if err != nil {
			return errors.Wrapf(err, "frame at %s", current)
		}
		if err := f.Check(); err != nil {
			return errors.Wrapf(err, "frame at %s", current)
		}

		if f.IsEnd() {
			if current != h.end {
				return errors.Errorf("chain ends at %s, but the end frame is at %s", current, h.end)
			}
			if f.Free {
				return errors.Errorf("end frame at %s is marked free", current)
			}
			break
		}

		if current == h.end {
			return errors.Errorf("end frame at %s links to %s", current, f.Next)
		}
		if uint64(f.Next) < uint64(current)+frame.Size {
			return errors.Errorf("frame at %s links to %s, which leaves no room for its header", current, f.Next)
		}
		if f.Next > h.end {
			return errors.Errorf("frame at %s links to %s, past the end frame at %s", current, f.Next, h.end)
		}

		if !f.Free {
			allocCount++
			if err := h.validateTracked(current + frame.Size); err != nil {
				return err
			}
		}

		current = f.Next
	}

	if h.tracker != nil && h.tracker.Count() != allocCount {
		return errors.Errorf("the heap has %d occupied blocks, but %d allocations are tracked", allocCount, h.tracker.Count())
	}

	return nil
}

func (h *Heap) validateTracked(ptr arena.Addr) error {
	if h.tracker == nil {
		return nil
	}

	requested, ok := h.tracker.Get(ptr)
	if !ok {
		return errors.Errorf("occupied block at %s is not tracked", ptr)
	}

	payload := h.payloadSize(ptr)
	if requested > payload {
		return errors.Errorf("allocation at %s requested %d bytes, but its block only holds %d", ptr, requested, payload)
	}

	return nil
}

func (h *Heap) payloadSize(ptr arena.Addr) uint32 {
	f, err := frame.Read(h.mem, ptr-frame.Size)
	if err != nil || f.IsEnd() {
		return 0
	}
	return uint32(f.Next-ptr)
}
