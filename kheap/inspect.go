package kheap

import (
	"context"
	"iter"

	"github.com/OmichronAgain/novos/console"
	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/OmichronAgain/novos/memutils/frame"
	"golang.org/x/exp/slog"
)

// BlockDescriptor describes one block of the heap
type BlockDescriptor struct {
	// Address is the address of the block's frame
	Address arena.Addr
	// Size is the size of the block including its frame
	Size uint32
	// PayloadSize is the size of the block excluding its frame
	PayloadSize uint32
	// Next is the address of the following frame
	Next arena.Addr
	// Free is true if the block is available for allocation
	Free bool
}

// Pointer is the address Allocate returned (or would return) for this block
func (d BlockDescriptor) Pointer() arena.Addr {
	return d.Address + frame.Size
}

// walk calls fn for every block from the head until fn returns false or the end frame is
// reached, and returns the address of the end frame. It stops with an error at the first
// frame that cannot be read or links somewhere impossible.
func (h *Heap) walk(fn func(BlockDescriptor) bool) (arena.Addr, error) {
	current := h.head
	for current != arena.Null {
		f, err := h.frameAt(current)
		if err != nil {
			return arena.Null, err
		}
		if f.IsEnd() {
			return current, nil
		}

		size := uint32(f.Next - current)
		if !fn(BlockDescriptor{
			Address:     current,
			Size:        size,
			PayloadSize: size - frame.Size,
			Next:        f.Next,
			Free:        f.Free,
		}) {
			return arena.Null, nil
		}

		current = f.Next
	}

	return arena.Null, nil
}

// Describe returns a sequence of descriptors, one per block in address order, excluding the
// end frame. The sequence reads the chain lazily and can be ranged over any number of times;
// each pass reflects the heap as it is then. A broken chain ends the sequence early.
func (h *Heap) Describe() iter.Seq[BlockDescriptor] {
	return func(yield func(BlockDescriptor) bool) {
		_, err := h.walk(yield)
		if err != nil {
			h.logger.LogAttrs(context.Background(), slog.LevelError, "heap walk stopped", slog.Any("error", err))
		}
	}
}

// VisitAllBlocks calls handleBlock once for each block in address order. It returns the first
// error from handleBlock, or an error describing where the chain is broken.
func (h *Heap) VisitAllBlocks(handleBlock func(block BlockDescriptor) error) error {
	var visitErr error
	_, err := h.walk(func(block BlockDescriptor) bool {
		visitErr = handleBlock(block)
		return visitErr == nil
	})
	if visitErr != nil {
		return visitErr
	}
	return err
}

// Dump writes the memory map to sink, one stanza per block followed by the end frame's address
func (h *Heap) Dump(sink console.Sink) {
	sink.Println("=== MMAP START ===")
	end, err := h.walk(func(block BlockDescriptor) bool {
		sink.Print("block at     ")
		sink.PrintlnHex(uint32(block.Address))
		sink.Print("   size w/h  ")
		sink.PrintDec(block.Size)
		sink.Print("/")
		sink.PrintlnHex(block.Size)
		sink.Print("   size wo/h ")
		sink.PrintDec(block.PayloadSize)
		sink.Print("/")
		sink.PrintlnHex(block.PayloadSize)
		sink.Print("   next      ")
		sink.PrintlnHex(uint32(block.Next))
		sink.Print("   is free?  ")
		if block.Free {
			sink.PrintlnDec(1)
		} else {
			sink.PrintlnDec(0)
		}
		return true
	})

	if err != nil {
		sink.Print("chain broken: ")
		sink.Println(err.Error())
	} else if end != arena.Null {
		sink.Print("end block found at ")
		sink.PrintlnHex(uint32(end))
	}
	sink.Println("=== MMAP END ===")
}
