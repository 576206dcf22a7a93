package kheap

import (
	"math/bits"
	"strings"

	"github.com/OmichronAgain/novos/console"
)

// CreateFlags indicate specific heap behaviors to activate or deactivate
type CreateFlags int32

const (
	// CreateTrackAllocations records the size requested for every live allocation so that it can be
	// reported by RequestedSize, the detailed map, and Destroy's unreleased memory log. The record
	// is kept outside the managed region.
	CreateTrackAllocations CreateFlags = 1 << iota
	// CreateConsolidateOnFailure runs a consolidation sweep when an allocation fails and retries it
	// once if the sweep merged anything.
	CreateConsolidateOnFailure
)

var createFlagsMapping = map[CreateFlags]string{
	CreateTrackAllocations:     "CreateTrackAllocations",
	CreateConsolidateOnFailure: "CreateConsolidateOnFailure",
}

func (f CreateFlags) String() string {
	if f == 0 {
		return "None"
	}

	var names []string
	for remaining := uint32(f); remaining != 0; {
		bit := CreateFlags(1 << bits.TrailingZeros32(remaining))
		remaining &^= uint32(bit)

		name, ok := createFlagsMapping[bit]
		if !ok {
			name = console.FormatHex(uint32(bit))
		}
		names = append(names, name)
	}

	return strings.Join(names, "|")
}

// CreateOptions contains optional settings when creating a heap. It is valid to leave all
// the fields blank.
type CreateOptions struct {
	// Flags indicates specific heap behaviors to activate or deactivate
	Flags CreateFlags

	// Sink receives the corruption report and Dump output when no other sink is given.
	// Defaults to console.Discard.
	Sink console.Sink

	// Abort is called exactly once when the heap detects corruption. It must not return:
	// the heap panics with ErrHeapCorrupted if it does. Defaults to panicking with
	// ErrHeapCorrupted.
	Abort func()
}
