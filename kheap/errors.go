package kheap

import (
	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/cockroachdb/errors"
)

var (
	// ErrHeapCorrupted is the panic value once heap corruption has been detected and the abort
	// function has been called
	ErrHeapCorrupted = errors.New("kheap: heap corruption detected")
	// ErrInvalidPointer indicates a pointer that is not the start of a live allocation's payload
	ErrInvalidPointer = errors.New("kheap: pointer does not refer to a live allocation")
	// ErrUnreleasedMemory is returned by Destroy while allocations are still live
	ErrUnreleasedMemory = errors.New("kheap: some allocations were not freed before the heap was destroyed")
)

// ErrBrokenChain indicates a frame whose link does not point forward to another frame in the region
var ErrBrokenChain = errors.New("kheap: broken frame chain")

func brokenLinkError(addr, next arena.Addr) error {
	return errors.Wrapf(ErrBrokenChain, "frame at %s links to %s", addr, next)
}
