// Package kheap is the kernel heap: a first-fit free-list allocator that keeps all of its
// bookkeeping inside the region it manages.
//
// The region is carved into blocks, each starting with a frame header (see package frame)
// that links to the next block's header. The last frame in the region is a zero-payload end
// frame that is never allocated. A block's size is the distance from its frame to the next
// one, so splitting a block means writing a new frame inside it and merging two blocks means
// unlinking the second frame.
//
// Freeing only merges a block with the free block directly after it. Consolidate sweeps the
// whole chain and merges every run of free blocks.
//
// A Heap is not safe for concurrent use. Callers that share one across goroutines must hold
// a single mutex around every method.
package kheap

import (
	"context"
	"io"

	"github.com/OmichronAgain/novos/console"
	"github.com/OmichronAgain/novos/memutils"
	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/OmichronAgain/novos/memutils/frame"
	"golang.org/x/exp/slog"
)

// Heap manages one region of an arena. Create it with New and give it its region with Init.
type Heap struct {
	logger *slog.Logger
	mem    *arena.Arena
	sink   console.Sink
	abort  func()
	flags  CreateFlags

	head    arena.Addr
	end     arena.Addr
	size    uint32
	tracker *allocationTracker
}

var _ Allocator = &Heap{}

// New creates a heap over mem. The heap owns no memory until Init is called.
//
// logger - structured log for operational events, may be nil
//
// mem - the arena the heap's region will live in
//
// options - optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, mem *arena.Arena, options CreateOptions) *Heap {
	if mem == nil {
		panic("attempted to create a heap without an arena")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h := &Heap{
		logger: logger,
		mem:    mem,
		sink:   options.Sink,
		abort:  options.Abort,
		flags:  options.Flags,
	}

	if h.sink == nil {
		h.sink = console.Discard
	}
	if h.abort == nil {
		h.abort = func() { panic(ErrHeapCorrupted) }
	}
	if options.Flags&CreateTrackAllocations != 0 {
		h.tracker = newAllocationTracker()
	}

	return h
}

// Init places the head frame at start and the end frame at start+size-frame.Size. It
// succeeds at most once per heap: later calls are ignored so outstanding allocations are
// never orphaned. A null start, a region too small for two frames, or a region outside the
// arena leaves the heap uninitialized, and every Allocate returns arena.Null.
func (h *Heap) Init(start arena.Addr, size uint32) {
	if h.head != arena.Null {
		h.logger.LogAttrs(context.Background(), slog.LevelWarn, "heap already initialized, ignoring region",
			slog.String("start", start.String()),
			slog.Int("size", int(size)),
		)
		return
	}

	if start == arena.Null || !h.mem.Contains(start, size) {
		h.logger.LogAttrs(context.Background(), slog.LevelDebug, "heap region rejected",
			slog.String("start", start.String()),
			slog.Int("size", int(size)),
		)
		return
	}

	if err := memutils.CheckRegion(size, 2*frame.Size, "heap region size"); err != nil {
		h.logger.LogAttrs(context.Background(), slog.LevelDebug, "heap region rejected", slog.Any("error", err))
		return
	}

	end := start + arena.Addr(size-frame.Size)
	// Both writes are inside the checked region
	_ = frame.Write(h.mem, start, frame.New(end, true))
	_ = frame.Write(h.mem, end, frame.New(arena.Null, false))

	h.head = start
	h.end = end
	h.size = size

	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "Heap initialized",
		slog.String("start", start.String()),
		slog.String("end", end.String()),
		slog.Int("size", int(size)),
	)
}

// Initialized reports whether Init has succeeded
func (h *Heap) Initialized() bool {
	return h.head != arena.Null
}

// Start is the address of the head frame, or arena.Null before Init
func (h *Heap) Start() arena.Addr { return h.head }

// End is the address of the end frame, or arena.Null before Init
func (h *Heap) End() arena.Addr { return h.end }

// Size is the size in bytes of the managed region, headers included
func (h *Heap) Size() int { return int(h.size) }

// Flags returns the flags the heap was created with
func (h *Heap) Flags() CreateFlags { return h.flags }

// frameAt reads the frame at addr and verifies that, unless it is the end frame, it links
// forward to a frame no further than the end frame with room for its own header. Only the
// frame placed by Init may end the chain.
func (h *Heap) frameAt(addr arena.Addr) (frame.Frame, error) {
	f, err := frame.Read(h.mem, addr)
	if err != nil {
		return f, err
	}
	if f.IsEnd() {
		if addr != h.end {
			return f, brokenLinkError(addr, f.Next)
		}
		return f, nil
	}

	if uint64(f.Next) < uint64(addr)+frame.Size || f.Next > h.end {
		return f, brokenLinkError(addr, f.Next)
	}

	return f, nil
}

// mustFrame is frameAt for paths that cannot continue on a broken chain
func (h *Heap) mustFrame(addr arena.Addr) frame.Frame {
	f, err := h.frameAt(addr)
	if err != nil {
		h.corrupted(addr+frame.Size, nil, err)
	}
	return f
}

// mustSucceed routes an arena write failure to the corruption path
func (h *Heap) mustSucceed(addr arena.Addr, err error) {
	if err != nil {
		h.corrupted(addr+frame.Size, nil, err)
	}
}

// payload returns the payload bytes of the block whose frame is at addr
func (h *Heap) payload(addr arena.Addr, f frame.Frame) []byte {
	b, err := h.mem.Slice(addr+frame.Size, uint32(f.Next-addr)-frame.Size)
	if err != nil {
		return nil
	}
	return b
}
